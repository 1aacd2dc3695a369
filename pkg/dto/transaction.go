package dto

import (
	"time"

	"github.com/google/uuid"
)

// TransactionRead is a read-optimized view of one ledger entry, used for
// transaction history responses.
type TransactionRead struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	ReferenceCode string    `json:"reference_code"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Kind          string    `json:"kind"`
	CreatedAt     time.Time `json:"timestamp"`
}

// TransactionCreate carries the data for one ledger append. Amount is in the
// smallest currency unit; Kind is deposit, debit or credit.
type TransactionCreate struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	ReferenceCode string
	Amount        int64
	Currency      string
	Kind          string
}
