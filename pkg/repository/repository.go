// Package repository defines the data-access contracts consumed by the
// service layer. Implementations live in infra/repository and are always
// reached through a UnitOfWork so that every operation runs in a single
// database transaction.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/dto"
)

// ErrDuplicate is returned when an insert collides with a unique
// constraint. Callers that generate the colliding value (account numbers,
// reference codes) may retry with a fresh one.
var ErrDuplicate = errors.New("duplicate record")

// AccountRepository is the account store: the single source of truth for
// funds. Only the ledger service mutates balances, and only via
// AdjustBalance.
type AccountRepository interface {
	// GetByNumber resolves an account by its presentable account number.
	// Returns account.ErrAccountNotFound when absent.
	GetByNumber(ctx context.Context, number string) (*account.Account, error)

	// GetByUserID resolves the single account owned by the given user.
	// Returns account.ErrAccountNotFound when absent.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error)

	// Create inserts a new account row.
	Create(ctx context.Context, create dto.AccountCreate) error

	// AdjustBalance applies delta (positive or negative) to the stored
	// balance under an exclusive row lock held for the rest of the caller's
	// unit of work. It fails with account.ErrInsufficientFunds when the
	// result would fall below zero, account.ErrAccountNotFound when the row
	// is gone, and account.ErrBusy when the lock wait times out.
	// Returns the new balance in the smallest currency unit.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

// TransactionRepository is the ledger writer. Rows are append-only: created
// once inside a unit of work, never mutated or deleted.
type TransactionRepository interface {
	// Append creates one immutable ledger entry. It fails only on storage
	// errors, which abort the enclosing unit of work.
	Append(ctx context.Context, create dto.TransactionCreate) error

	// ListForUser returns every ledger entry on the user's account, newest
	// first. Pagination is the caller's concern.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.TransactionRead, error)
}

// UserRepository provides user data access.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, create dto.UserCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error
}
