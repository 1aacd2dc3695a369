package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainaccount "github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/money"
	"github.com/pesabank/pesabank/pkg/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates the ledger writer backed by the given
// session. There is no update or delete path: ledger rows are immutable.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Append implements repository.TransactionRepository.
func (r *transactionRepository) Append(ctx context.Context, create dto.TransactionCreate) error {
	if !domainaccount.Kind(create.Kind).IsValid() {
		return fmt.Errorf("unknown transaction kind %q", create.Kind)
	}
	row := Transaction{
		ID:            create.ID,
		AccountID:     create.AccountID,
		ReferenceCode: create.ReferenceCode,
		Kind:          create.Kind,
		Amount:        create.Amount,
		Currency:      create.Currency,
		CreatedAt:     time.Now().UTC(),
	}
	return MapError(r.db.WithContext(ctx).Create(&row).Error)
}

// ListForUser implements repository.TransactionRepository. The account is
// resolved with an explicit join on the foreign key rather than relationship
// traversal, and rows come back newest first.
func (r *transactionRepository) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]dto.TransactionRead, error) {
	var rows []Transaction
	if err := r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.user_id = ?", userID).
		Order("transactions.created_at DESC, transactions.id DESC").
		Find(&rows).Error; err != nil {
		return nil, MapError(err)
	}

	result := make([]dto.TransactionRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapTransactionToDTO(&rows[i]))
	}
	return result, nil
}

func mapTransactionToDTO(row *Transaction) dto.TransactionRead {
	amount := money.NewFromData(row.Amount, row.Currency)
	return dto.TransactionRead{
		ID:            row.ID,
		AccountID:     row.AccountID,
		ReferenceCode: row.ReferenceCode,
		Amount:        amount.AmountFloat(),
		Currency:      amount.Currency().String(),
		Kind:          row.Kind,
		CreatedAt:     row.CreatedAt,
	}
}
