// Package user handles signup and profile management. Signup is the only
// place accounts are created: every user gets exactly one account, opened
// with a zero balance in the same transaction that registers the user.
package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/repository"
)

// numberAttempts bounds retries when a generated account number collides
// with an existing one.
const numberAttempts = 3

type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates the user service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{
		uow:    uow,
		logger: logger.With("service", "user"),
	}
}

// SignupResult is what a successful registration returns.
type SignupResult struct {
	User    dto.UserRead
	Account dto.AccountRead
}

// Signup registers a user and opens their account in one transaction. The
// account number is generated here; on the rare collision a fresh number is
// tried before giving up.
func (s *Service) Signup(
	ctx context.Context,
	create dto.UserCreate,
	pin string,
) (*SignupResult, error) {
	log := s.logger.With("op", "signup", "email", create.Email)

	u, err := user.NewUser(
		create.FirstName,
		create.LastName,
		create.Email,
		create.PhoneNumber,
		pin,
	)
	if err != nil {
		return nil, err
	}

	// A unique violation aborts the whole transaction, so a number
	// collision retries signup from the top with a fresh account.
	var acct *account.Account
	for attempt := 0; ; attempt++ {
		acct, err = account.New().WithUserID(u.ID).Build()
		if err != nil {
			return nil, err
		}
		err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			users, err := uow.UserRepository()
			if err != nil {
				return err
			}
			accounts, err := uow.AccountRepository()
			if err != nil {
				return err
			}

			if err := users.Create(ctx, dto.UserCreate{
				ID:          u.ID,
				FirstName:   u.FirstName,
				LastName:    u.LastName,
				Email:       u.Email,
				PhoneNumber: u.PhoneNumber,
				HashedPIN:   u.HashedPIN,
			}); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return user.ErrEmailAlreadyRegistered
				}
				return err
			}

			return accounts.Create(ctx, dto.AccountCreate{
				ID:       acct.ID,
				UserID:   u.ID,
				Number:   acct.Number,
				Currency: acct.Balance.Currency().String(),
			})
		})
		if err == nil {
			break
		}
		// the email duplicate is already mapped above, so a surviving
		// ErrDuplicate can only be the account number
		if errors.Is(err, repository.ErrDuplicate) && attempt+1 < numberAttempts {
			log.Warn("account number collision, retrying", "attempt", attempt+1)
			continue
		}
		log.Warn("signup failed", "error", err)
		return nil, err
	}

	log.Info("user registered", "userID", u.ID, "accountNumber", acct.Number)
	return &SignupResult{
		User: dto.UserRead{
			ID:          u.ID,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
			CreatedAt:   u.CreatedAt,
		},
		Account: dto.AccountRead{
			ID:        acct.ID,
			UserID:    u.ID,
			Number:    acct.Number,
			Balance:   0,
			Currency:  acct.Balance.Currency().String(),
			CreatedAt: acct.CreatedAt,
		},
	}, nil
}

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error) {
	var u *user.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.UserRead{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}, nil
}

// Update changes the given profile fields and returns the fresh profile.
func (s *Service) Update(
	ctx context.Context,
	id uuid.UUID,
	update dto.UserUpdate,
) (*dto.UserRead, error) {
	log := s.logger.With("op", "update", "userID", id)

	var u *user.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if err := users.Update(ctx, id, update); err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	if err != nil {
		log.Warn("profile update failed", "error", err)
		return nil, err
	}

	log.Info("profile updated")
	return &dto.UserRead{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}, nil
}
