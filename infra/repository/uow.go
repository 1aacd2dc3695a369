package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pesabank/pesabank/pkg/repository"
	"gorm.io/gorm"
)

// ErrNoActiveTransaction is returned when a repository is requested outside Do.
var ErrNoActiveTransaction = errors.New("no active transaction; repositories are only available inside Do")

// UoW provides the transaction boundary and repository access in one
// abstraction. Repositories handed out inside Do are bound to the same
// *gorm.DB transaction, so every balance adjustment and ledger append in one
// operation commits or aborts together.
type UoW struct {
	db          *gorm.DB
	tx          *gorm.DB
	lockTimeout time.Duration
}

// NewUoW creates a UoW for the given *gorm.DB. lockTimeout bounds how long a
// statement may wait on a row lock before the operation fails with
// account.ErrBusy.
func NewUoW(db *gorm.DB, lockTimeout time.Duration) *UoW {
	return &UoW{db: db, lockTimeout: lockTimeout}
}

// Do runs fn in one database transaction, providing a UoW bound to it.
// Rollback on error is guaranteed by gorm's Transaction helper on every exit
// path, including panics, so no operation can leave a partial effect behind.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.lockTimeout > 0 {
			// SET LOCAL scopes the timeout to this transaction only.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return MapError(err)
			}
		}
		return fn(&UoW{db: u.db, tx: tx, lockTimeout: u.lockTimeout})
	})
}

// AccountRepository returns the account store bound to the current transaction.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	if u.tx == nil {
		return nil, ErrNoActiveTransaction
	}
	return NewAccountRepository(u.tx), nil
}

// TransactionRepository returns the ledger writer bound to the current transaction.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	if u.tx == nil {
		return nil, ErrNoActiveTransaction
	}
	return NewTransactionRepository(u.tx), nil
}

// UserRepository returns the user repository bound to the current transaction.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	if u.tx == nil {
		return nil, ErrNoActiveTransaction
	}
	return NewUserRepository(u.tx), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
