package repository

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	domainaccount "github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/money"
	"github.com/pesabank/pesabank/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates the account store backed by the given session.
// The UoW passes its transaction handle here so all operations share it.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// GetByNumber implements repository.AccountRepository.
func (r *accountRepository) GetByNumber(
	ctx context.Context,
	number string,
) (*domainaccount.Account, error) {
	var acct Account
	if err := r.db.WithContext(ctx).
		First(&acct, "account_number = ?", number).Error; err != nil {
		return nil, MapError(err)
	}
	return hydrateAccount(&acct)
}

// GetByUserID implements repository.AccountRepository.
func (r *accountRepository) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*domainaccount.Account, error) {
	var acct Account
	if err := r.db.WithContext(ctx).
		First(&acct, "user_id = ?", userID).Error; err != nil {
		return nil, MapError(err)
	}
	return hydrateAccount(&acct)
}

// Create implements repository.AccountRepository.
func (r *accountRepository) Create(ctx context.Context, create dto.AccountCreate) error {
	currency := create.Currency
	if currency == "" {
		currency = money.DefaultCurrency.String()
	}
	now := time.Now().UTC()
	acct := Account{
		ID:        create.ID,
		UserID:    create.UserID,
		Number:    create.Number,
		Balance:   0,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return MapError(r.db.WithContext(ctx).Create(&acct).Error)
}

// AdjustBalance implements repository.AccountRepository. The SELECT ... FOR
// UPDATE holds the row lock until the enclosing transaction ends, which is
// what serializes concurrent adjustments to the same account. A lock wait
// beyond the transaction's lock_timeout surfaces as account.ErrBusy.
func (r *accountRepository) AdjustBalance(
	ctx context.Context,
	id uuid.UUID,
	delta int64,
) (int64, error) {
	var acct Account
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&acct, "id = ?", id).Error; err != nil {
		return 0, MapError(err)
	}

	if (delta > 0 && acct.Balance > math.MaxInt64-delta) ||
		(delta < 0 && acct.Balance < math.MinInt64-delta) {
		return 0, money.ErrAmountOverflow
	}
	newBalance := acct.Balance + delta
	if newBalance < 0 {
		return 0, domainaccount.ErrInsufficientFunds
	}

	if err := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    newBalance,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return 0, MapError(err)
	}
	return newBalance, nil
}

func hydrateAccount(acct *Account) (*domainaccount.Account, error) {
	return domainaccount.New().
		WithID(acct.ID).
		WithUserID(acct.UserID).
		WithNumber(acct.Number).
		WithBalance(acct.Balance).
		WithCurrency(money.Code(acct.Currency)).
		WithCreatedAt(acct.CreatedAt).
		WithUpdatedAt(acct.UpdatedAt).
		Build()
}
