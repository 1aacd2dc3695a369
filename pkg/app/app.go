// Package app assembles the service layer from its infrastructure
// dependencies.
package app

import (
	"log/slog"

	"github.com/pesabank/pesabank/pkg/config"
	"github.com/pesabank/pesabank/pkg/eventbus"
	"github.com/pesabank/pesabank/pkg/refcode"
	"github.com/pesabank/pesabank/pkg/repository"
	"github.com/pesabank/pesabank/pkg/service/auth"
	"github.com/pesabank/pesabank/pkg/service/ledger"
	"github.com/pesabank/pesabank/pkg/service/user"
)

// Deps are the infrastructure pieces the services are built on.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

// App holds the wired services the HTTP layer serves.
type App struct {
	Deps   *Deps
	Config *config.App

	AuthService   *auth.Service
	UserService   *user.Service
	LedgerService *ledger.Service
}

// New wires the services.
func New(deps *Deps, cfg *config.App) *App {
	refs := refcode.New(cfg.Ledger.RefPrefix)
	return &App{
		Deps:          deps,
		Config:        cfg,
		AuthService:   auth.New(deps.Uow, cfg.Auth.Jwt, deps.Logger),
		UserService:   user.New(deps.Uow, deps.Logger),
		LedgerService: ledger.New(deps.Uow, deps.EventBus, refs, deps.Logger),
	}
}
