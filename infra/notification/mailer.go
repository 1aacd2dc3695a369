// Package notification delivers transaction emails. It sits strictly behind
// the event bus: the ledger engine's contract ends at "event published", and
// nothing here can affect committed financial state.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/pesabank/pesabank/pkg/config"
	"github.com/wneessen/go-mail"
)

// Mailer sends one email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds the SMTP client from config.
func NewSMTPMailer(cfg *config.Notification) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(cfg.SendTimeout),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.FromAddress}, nil
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return m.client.DialAndSendWithContext(ctx, msg)
}

// NopMailer discards mail. Used when notifications are disabled and in tests.
type NopMailer struct{}

// Send implements Mailer.
func (NopMailer) Send(context.Context, string, string, string) error { return nil }

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = NopMailer{}
)

// subjectFor maps a ledger entry kind to an email subject line.
func subjectFor(kind string) string {
	switch kind {
	case "deposit":
		return "Deposit confirmation"
	case "debit":
		return "Transfer sent"
	case "credit":
		return "Transfer received"
	}
	return "Transaction notice"
}

// buildBody formats the plain-text notification email.
func buildBody(ownerName, kind, amount, newBalance, reference string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", ownerName)
	switch kind {
	case "deposit":
		fmt.Fprintf(&b, "Your deposit of %s has been credited to your account.\n", amount)
	case "debit":
		fmt.Fprintf(&b, "Your transfer of %s has been sent.\n", amount)
	case "credit":
		fmt.Fprintf(&b, "You have received a transfer of %s.\n", amount)
	default:
		fmt.Fprintf(&b, "A transaction of %s was recorded on your account.\n", amount)
	}
	fmt.Fprintf(&b, "New balance: %s\n", newBalance)
	fmt.Fprintf(&b, "Reference: %s\n", reference)
	b.WriteString("\nThank you for banking with us.\n")
	return b.String()
}
