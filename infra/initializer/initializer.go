// Package initializer wires infrastructure: logging, database, unit of
// work, event bus and the notification worker.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/pesabank/pesabank/infra"
	infra_eventbus "github.com/pesabank/pesabank/infra/eventbus"
	"github.com/pesabank/pesabank/infra/notification"
	infra_repository "github.com/pesabank/pesabank/infra/repository"
	"github.com/pesabank/pesabank/pkg/app"
	"github.com/pesabank/pesabank/pkg/config"
)

// InitializeDependencies builds every infrastructure dependency the
// application needs, in dependency order.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	deps := &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	if err := infra.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	deps.Uow = infra_repository.NewUoW(db, cfg.Ledger.LockTimeout)

	bus := infra_eventbus.NewWithMemory(logger)
	deps.EventBus = bus

	mailer, err := buildMailer(cfg.Notification, logger)
	if err != nil {
		return nil, err
	}
	notification.NewDispatcher(mailer, logger).Register(bus)

	return deps, nil
}

func buildMailer(
	cfg *config.Notification,
	logger *slog.Logger,
) (notification.Mailer, error) {
	if !cfg.Enabled {
		logger.Info("Email notifications disabled, using no-op mailer")
		return notification.NopMailer{}, nil
	}
	mailer, err := notification.NewSMTPMailer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build SMTP mailer: %w", err)
	}
	logger.Info("Email notifications enabled", "smtp_host", cfg.SMTPHost)
	return mailer, nil
}
