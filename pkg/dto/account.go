package dto

import (
	"time"

	"github.com/google/uuid"
)

// AccountRead is a read-optimized view of an account.
type AccountRead struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Number    string    `json:"account_number"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountCreate carries the data for creating an account. Accounts always
// start with a zero balance; funds only move through the ledger engine.
type AccountCreate struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Number   string
	Currency string
}
