// Package eventbus defines the outbound event contract. The ledger service
// publishes events strictly after its unit of work commits; consumers such as
// the notification dispatcher run decoupled and best-effort.
package eventbus

import "context"

// Event is implemented by all domain events.
type Event interface {
	EventType() string
}

// HandlerFunc consumes one event. Handler errors are the handler's problem;
// they never propagate back into the financial operation that emitted the
// event.
type HandlerFunc func(ctx context.Context, event Event)

// Bus publishes domain events to registered handlers.
type Bus interface {
	// Publish hands the event to the bus. The contract ends at "event
	// enqueued": delivery is at-most-once-attempted.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler for the given event type.
	Subscribe(eventType string, handler HandlerFunc)
}
