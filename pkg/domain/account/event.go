package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/money"
)

// TransactionRecordedEvent is published on the event bus strictly after a
// financial unit of work commits, one event per affected account. Delivery is
// fire-and-forget: a lost event never rolls back or re-runs the money
// movement.
type TransactionRecordedEvent struct {
	EventID          uuid.UUID
	AccountEmail     string
	AccountOwnerName string
	Amount           money.Money
	NewBalance       money.Money
	Kind             Kind
	ReferenceCode    string
	OccurredAt       time.Time
}

// EventType returns the bus routing key for the event.
func (e TransactionRecordedEvent) EventType() string { return "TransactionRecordedEvent" }
