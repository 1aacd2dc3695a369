package infra

import (
	"errors"
	"time"

	"github.com/pesabank/pesabank/infra/repository"
	"github.com/pesabank/pesabank/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the Postgres connection pool. In development the
// gorm logger echoes SQL; elsewhere it stays silent.
func NewDBConnection(cfg *config.DB, appEnv string) (*gorm.DB, error) {
	if cfg == nil || cfg.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	conn, err := gorm.Open(postgres.Open(cfg.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return conn, nil
}

// AutoMigrate creates or updates the users, accounts and transactions
// tables, including the unique (reference_code, kind) ledger index.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&repository.User{},
		&repository.Account{},
		&repository.Transaction{},
	)
}
