package repository

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user record in the database.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	FirstName   string    `gorm:"not null;size:100"`
	LastName    string    `gorm:"size:100"`
	Email       string    `gorm:"uniqueIndex;not null;size:255"`
	PhoneNumber string    `gorm:"size:32"`
	HashedPIN   string    `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Account *Account
}

// Account represents an account record in the database. Every user owns
// exactly one; the unique index on UserID enforces it.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Number    string    `gorm:"column:account_number;uniqueIndex;not null;size:20"`
	Balance   int64     `gorm:"not null;default:0;check:balance >= 0"`
	Currency  string    `gorm:"type:varchar(3);not null;default:'USD'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Transactions []Transaction
}

// Transaction represents one immutable ledger entry. The composite unique
// index on (reference_code, kind) allows exactly two rows per transfer
// reference and exactly one per deposit reference.
type Transaction struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ReferenceCode string    `gorm:"uniqueIndex:idx_transactions_reference_kind;not null;size:40"`
	Kind          string    `gorm:"uniqueIndex:idx_transactions_reference_kind;type:varchar(10);not null"`
	Amount        int64     `gorm:"not null;check:amount > 0"`
	Currency      string    `gorm:"type:varchar(3);not null;default:'USD'"`
	CreatedAt     time.Time
}
