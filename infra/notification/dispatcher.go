package notification

import (
	"context"
	"log/slog"

	"github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/eventbus"
)

// Dispatcher consumes TransactionRecorded events and emails the affected
// account owner. Delivery is best-effort: failures are logged and dropped,
// never retried by re-running the financial operation.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher around the given mailer.
func NewDispatcher(mailer Mailer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		logger: logger.With("worker", "notification"),
	}
}

// Register subscribes the dispatcher on the bus.
func (d *Dispatcher) Register(bus eventbus.Bus) {
	bus.Subscribe(account.TransactionRecordedEvent{}.EventType(), d.handleTransactionRecorded)
}

func (d *Dispatcher) handleTransactionRecorded(ctx context.Context, e eventbus.Event) {
	evt, ok := e.(account.TransactionRecordedEvent)
	if !ok {
		d.logger.Error("unexpected event payload", "eventType", e.EventType())
		return
	}
	if evt.AccountEmail == "" {
		d.logger.Warn("no email on account, skipping notification", "reference", evt.ReferenceCode)
		return
	}

	subject := subjectFor(evt.Kind.String())
	body := buildBody(
		evt.AccountOwnerName,
		evt.Kind.String(),
		evt.Amount.String(),
		evt.NewBalance.String(),
		evt.ReferenceCode,
	)
	if err := d.mailer.Send(ctx, evt.AccountEmail, subject, body); err != nil {
		d.logger.Error("failed to send notification email",
			"to", evt.AccountEmail,
			"reference", evt.ReferenceCode,
			"error", err,
		)
	}
}
