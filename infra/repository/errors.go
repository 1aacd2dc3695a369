package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/repository"
	"gorm.io/gorm"
)

// Postgres error codes the engine cares about.
const (
	pgLockNotAvailable = "55P03" // lock_timeout exceeded while waiting for a row lock
	pgUniqueViolation  = "23505"
)

// MapError converts GORM and Postgres driver errors into the domain
// taxonomy, keeping database concerns out of the service layer. Unmapped
// errors pass through unchanged so the unit of work aborts with the cause.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.ErrAccountNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable:
			return account.ErrBusy
		case pgUniqueViolation:
			return repository.ErrDuplicate
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	return err
}

// MapUserError is MapError with not-found translated to the user domain.
func MapUserError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user.ErrUserNotFound
	}
	return MapError(err)
}
