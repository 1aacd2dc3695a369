// Package ledger implements the money-movement engine: deposits, transfers,
// and the transaction log. All balance mutation in the system goes through
// this service, inside one unit of work per operation, with row locks taken
// in a deterministic order so concurrent transfers cannot deadlock or lose
// updates.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/eventbus"
	"github.com/pesabank/pesabank/pkg/money"
	"github.com/pesabank/pesabank/pkg/refcode"
	"github.com/pesabank/pesabank/pkg/repository"
)

// DepositResult is returned by a committed deposit.
type DepositResult struct {
	AccountNumber string
	ReferenceCode string
	NewBalance    money.Money
}

// TransferResult is returned by a committed transfer. Both legs share the
// reference code.
type TransferResult struct {
	ReferenceCode      string
	SenderNewBalance   money.Money
	ReceiverNewBalance money.Money
}

// Service orchestrates deposits and transfers atomically across the account
// store and the ledger writer, and emits TransactionRecorded events after
// commit. It owns the lifecycle of Transaction rows and the balance field of
// Account; nothing else in the system mutates either.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	refs   *refcode.Allocator
	logger *slog.Logger
}

// New creates the ledger service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	refs *refcode.Allocator,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		bus:    bus,
		refs:   refs,
		logger: logger.With("service", "ledger"),
	}
}

// Deposit adds funds to the caller's account and records one deposit entry,
// both inside a single unit of work. The TransactionRecorded event is
// published only after the commit succeeds.
func (s *Service) Deposit(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Money,
) (*DepositResult, error) {
	log := s.logger.With("op", "deposit", "userID", userID)
	if !amount.IsPositive() {
		return nil, account.ErrInvalidAmount
	}
	if userID == uuid.Nil {
		return nil, account.ErrAccountNotFound
	}

	var (
		result *DepositResult
		evt    account.TransactionRecordedEvent
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		txns, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		acct, err := accounts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if !amount.IsSameCurrency(acct.Balance) {
			return money.ErrCurrencyMismatch
		}
		owner, err := users.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return account.ErrAccountNotFound
			}
			return err
		}

		ref := s.refs.Next()
		newBalance, err := accounts.AdjustBalance(ctx, acct.ID, amount.Amount())
		if err != nil {
			return err
		}
		if err := txns.Append(ctx, dto.TransactionCreate{
			ID:            uuid.New(),
			AccountID:     acct.ID,
			ReferenceCode: ref,
			Amount:        amount.Amount(),
			Currency:      amount.Currency().String(),
			Kind:          account.KindDeposit.String(),
		}); err != nil {
			return err
		}

		balance := money.NewFromData(newBalance, amount.Currency().String())
		result = &DepositResult{
			AccountNumber: acct.Number,
			ReferenceCode: ref,
			NewBalance:    balance,
		}
		evt = s.recordedEvent(owner, amount, balance, account.KindDeposit, ref)
		return nil
	})
	if err != nil {
		log.Warn("deposit aborted", "error", err)
		return nil, err
	}

	s.publish(ctx, evt)
	log.Info("deposit committed",
		"reference", result.ReferenceCode,
		"newBalance", result.NewBalance.String(),
	)
	return result, nil
}

// Transfer moves funds from the sender's account to the account identified by
// receiverNumber. Both balance changes and both ledger legs commit together
// or not at all; row locks are taken in ascending account-ID order so two
// opposite transfers between the same pair of accounts cannot deadlock.
func (s *Service) Transfer(
	ctx context.Context,
	senderUserID uuid.UUID,
	receiverNumber string,
	amount money.Money,
) (*TransferResult, error) {
	log := s.logger.With("op", "transfer", "senderUserID", senderUserID)
	if !amount.IsPositive() {
		return nil, account.ErrInvalidAmount
	}
	if senderUserID == uuid.Nil {
		return nil, account.ErrSenderAccountNotFound
	}

	var (
		result *TransferResult
		events []account.TransactionRecordedEvent
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		txns, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		// Validation phase: resolve both parties before any lock is taken.
		sender, err := accounts.GetByUserID(ctx, senderUserID)
		if err != nil {
			return senderNotFound(err)
		}
		receiver, err := accounts.GetByNumber(ctx, receiverNumber)
		if err != nil {
			return receiverNotFound(err)
		}
		if sender.ID == receiver.ID {
			return account.ErrSelfTransferNotAllowed
		}
		if !amount.IsSameCurrency(sender.Balance) ||
			!sender.Balance.IsSameCurrency(receiver.Balance) {
			return money.ErrCurrencyMismatch
		}
		senderOwner, err := users.Get(ctx, sender.UserID)
		if err != nil {
			return senderNotFound(err)
		}
		receiverOwner, err := users.Get(ctx, receiver.UserID)
		if err != nil {
			return receiverNotFound(err)
		}

		ref := s.refs.Next()

		// Locked/Applied phase: adjust in ascending account-ID order. The
		// debit may run second; if it fails the whole unit of work aborts,
		// so the credit is never observable on its own.
		balances := make(map[uuid.UUID]int64, 2)
		for _, adj := range lockOrder(sender.ID, receiver.ID, amount.Amount()) {
			newBalance, err := accounts.AdjustBalance(ctx, adj.accountID, adj.delta)
			if err != nil {
				return err
			}
			balances[adj.accountID] = newBalance
		}

		currency := amount.Currency().String()
		for _, leg := range []dto.TransactionCreate{
			{
				ID:            uuid.New(),
				AccountID:     sender.ID,
				ReferenceCode: ref,
				Amount:        amount.Amount(),
				Currency:      currency,
				Kind:          account.KindDebit.String(),
			},
			{
				ID:            uuid.New(),
				AccountID:     receiver.ID,
				ReferenceCode: ref,
				Amount:        amount.Amount(),
				Currency:      currency,
				Kind:          account.KindCredit.String(),
			},
		} {
			if err := txns.Append(ctx, leg); err != nil {
				return err
			}
		}

		senderBalance := money.NewFromData(balances[sender.ID], currency)
		receiverBalance := money.NewFromData(balances[receiver.ID], currency)
		result = &TransferResult{
			ReferenceCode:      ref,
			SenderNewBalance:   senderBalance,
			ReceiverNewBalance: receiverBalance,
		}
		events = []account.TransactionRecordedEvent{
			s.recordedEvent(senderOwner, amount, senderBalance, account.KindDebit, ref),
			s.recordedEvent(receiverOwner, amount, receiverBalance, account.KindCredit, ref),
		}
		return nil
	})
	if err != nil {
		log.Warn("transfer aborted", "error", err)
		return nil, err
	}

	for _, evt := range events {
		s.publish(ctx, evt)
	}
	log.Info("transfer committed",
		"reference", result.ReferenceCode,
		"senderNewBalance", result.SenderNewBalance.String(),
	)
	return result, nil
}

// ListTransactions returns the caller's ledger entries, newest first.
func (s *Service) ListTransactions(
	ctx context.Context,
	userID uuid.UUID,
) ([]dto.TransactionRead, error) {
	if userID == uuid.Nil {
		return nil, account.ErrAccountNotFound
	}
	var list []dto.TransactionRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txns, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		list, err = txns.ListForUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Balance returns the caller's account, including its current balance.
func (s *Service) Balance(
	ctx context.Context,
	userID uuid.UUID,
) (*account.Account, error) {
	if userID == uuid.Nil {
		return nil, account.ErrAccountNotFound
	}
	var acct *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err = accounts.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

type adjustment struct {
	accountID uuid.UUID
	delta     int64
}

// lockOrder returns the sender debit and receiver credit sorted by ascending
// account ID. AdjustBalance takes the row lock, so applying adjustments in
// this order yields a total lock order independent of transfer direction.
func lockOrder(senderID, receiverID uuid.UUID, amount int64) [2]adjustment {
	debit := adjustment{accountID: senderID, delta: -amount}
	credit := adjustment{accountID: receiverID, delta: amount}
	if bytes.Compare(senderID[:], receiverID[:]) < 0 {
		return [2]adjustment{debit, credit}
	}
	return [2]adjustment{credit, debit}
}

func (s *Service) recordedEvent(
	owner *user.User,
	amount, newBalance money.Money,
	kind account.Kind,
	ref string,
) account.TransactionRecordedEvent {
	return account.TransactionRecordedEvent{
		EventID:          uuid.New(),
		AccountEmail:     owner.Email,
		AccountOwnerName: owner.FullName(),
		Amount:           amount,
		NewBalance:       newBalance,
		Kind:             kind,
		ReferenceCode:    ref,
		OccurredAt:       time.Now().UTC(),
	}
}

// publish emits an event after commit. Failures are logged and dropped: the
// financial state is already durable and must not be affected.
func (s *Service) publish(ctx context.Context, evt account.TransactionRecordedEvent) {
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish event",
			"eventType", evt.EventType(),
			"reference", evt.ReferenceCode,
			"error", err,
		)
	}
}

func senderNotFound(err error) error {
	if errors.Is(err, account.ErrAccountNotFound) || errors.Is(err, user.ErrUserNotFound) {
		return account.ErrSenderAccountNotFound
	}
	return err
}

func receiverNotFound(err error) error {
	if errors.Is(err, account.ErrAccountNotFound) || errors.Is(err, user.ErrUserNotFound) {
		return account.ErrReceiverAccountNotFound
	}
	return err
}
