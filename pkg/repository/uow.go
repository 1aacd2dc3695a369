package repository

import (
	"context"
)

// UnitOfWork is the atomic scope within which balance adjustments and ledger
// appends either all commit or all abort.
//
// Repository accessors are part of UnitOfWork so that every repository
// obtained inside Do is bound to the same database transaction; using a
// repository from outside the callback would silently break atomicity.
type UnitOfWork interface {
	// Do executes fn inside one transaction boundary. The uow passed to fn
	// hands out repositories bound to that transaction. If fn returns an
	// error the transaction rolls back and no partial effect is observable;
	// otherwise it commits. Context cancellation before commit aborts.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// AccountRepository returns the account store bound to the current session.
	AccountRepository() (AccountRepository, error)

	// TransactionRepository returns the ledger writer bound to the current session.
	TransactionRepository() (TransactionRepository, error)

	// UserRepository returns the user repository bound to the current session.
	UserRepository() (UserRepository, error)
}
