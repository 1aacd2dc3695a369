package account

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/money"
)

var (
	// ErrInvalidAmount is returned when an operation amount is not strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when a debit would take the balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSenderAccountNotFound is returned when the sender of a transfer has no account.
	ErrSenderAccountNotFound = errors.New("sender account not found")

	// ErrReceiverAccountNotFound is returned when the receiver account number resolves to nothing.
	ErrReceiverAccountNotFound = errors.New("receiver account not found")

	// ErrSelfTransferNotAllowed is returned when sender and receiver are the same account.
	ErrSelfTransferNotAllowed = errors.New("cannot transfer to the same account")

	// ErrBusy is returned when a row lock could not be acquired within the configured
	// wait. The operation had no effect and the caller may retry.
	ErrBusy = errors.New("account is busy, try again")
)

// Account represents a user's single financial account. It is the unit the
// ledger engine locks and mutates; its balance is never negative at any
// observable point.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Number    string // presentable account number, unique and immutable
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Account instances,
// mostly for hydration from storage and for test setup.
type Builder struct {
	id        uuid.UUID
	userID    uuid.UUID
	number    string
	balance   int64
	currency  money.Code
	createdAt time.Time
	updatedAt time.Time
}

// New creates a Builder with a fresh UUID and the default currency.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		currency:  money.DefaultCurrency,
		createdAt: time.Now(),
	}
}

// WithID sets the account identity.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owning user. Mandatory.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithNumber sets the presentable account number. If unset, Build generates one.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithBalance sets the balance in the smallest currency unit. Only for
// hydration from storage or test setup.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

// WithCurrency sets the account currency. Defaults to money.DefaultCurrency.
func (b *Builder) WithCurrency(c money.Code) *Builder {
	b.currency = c
	return b
}

// WithCreatedAt sets the creation timestamp for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp for hydration.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	if b.balance < 0 {
		return nil, ErrInsufficientFunds
	}
	bal, err := money.NewFromSmallestUnit(b.balance, b.currency)
	if err != nil {
		return nil, err
	}
	number := b.number
	if number == "" {
		number, err = NewNumber()
		if err != nil {
			return nil, err
		}
	}
	return &Account{
		ID:        b.id,
		UserID:    b.userID,
		Number:    number,
		Balance:   bal,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// numberDigits is the length of generated account numbers.
const numberDigits = 10

// NewNumber generates a random 10-digit account number. Uniqueness is
// enforced by the storage layer; callers retry on collision.
func NewNumber() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < numberDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	digits := n.String()
	for len(digits) < numberDigits {
		digits = "0" + digits
	}
	return digits, nil
}
