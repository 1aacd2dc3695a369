// Package account exposes the money-movement endpoints: deposit, transfer,
// balance and transaction history. All routes require a valid JWT; the
// acting account is always the authenticated user's own.
package account

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/config"
	"github.com/pesabank/pesabank/pkg/middleware"
	"github.com/pesabank/pesabank/pkg/money"
	authsvc "github.com/pesabank/pesabank/pkg/service/auth"
	"github.com/pesabank/pesabank/pkg/service/ledger"
	"github.com/pesabank/pesabank/webapi/common"
)

// Routes registers the banking routes.
func Routes(
	app *fiber.App,
	ledgerSvc *ledger.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	jwtGuard := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/deposit", jwtGuard, Deposit(ledgerSvc, authSvc))
	app.Post("/transfer", jwtGuard, Transfer(ledgerSvc, authSvc))
	app.Get("/balance", jwtGuard, GetBalance(ledgerSvc, authSvc))
	app.Get("/my-transactions", jwtGuard, GetTransactions(ledgerSvc, authSvc))
}

// Deposit adds funds to the authenticated user's account.
func Deposit(ledgerSvc *ledger.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount, money.Code(input.Currency))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		res, err := ledgerSvc.Deposit(c.Context(), userID, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Deposit failed", err)
		}
		return common.SuccessResponseJSON(
			c, fiber.StatusOK, "Deposit successful", fiber.Map{
				"account_number": res.AccountNumber,
				"reference_code": res.ReferenceCode,
				"new_balance":    res.NewBalance.AmountFloat(),
				"currency":       res.NewBalance.Currency().String(),
			})
	}
}

// Transfer moves funds from the authenticated user's account to the
// receiver's account number.
func Transfer(ledgerSvc *ledger.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount, money.Code(input.Currency))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		res, err := ledgerSvc.Transfer(c.Context(), userID, input.ToAccountNumber, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}
		return common.SuccessResponseJSON(
			c, fiber.StatusOK, "Transfer successful", fiber.Map{
				"reference_code": res.ReferenceCode,
				"new_balance":    res.SenderNewBalance.AmountFloat(),
				"currency":       res.SenderNewBalance.Currency().String(),
			})
	}
}

// GetBalance returns the authenticated user's account number and balance.
func GetBalance(ledgerSvc *ledger.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		acct, err := ledgerSvc.Balance(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load balance", err)
		}
		return common.SuccessResponseJSON(
			c, fiber.StatusOK, "Balance", fiber.Map{
				"account_number": acct.Number,
				"balance":        acct.Balance.AmountFloat(),
				"currency":       acct.Balance.Currency().String(),
			})
	}
}

// GetTransactions lists the authenticated user's ledger entries, newest
// first.
func GetTransactions(ledgerSvc *ledger.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		list, err := ledgerSvc.ListTransactions(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", list)
	}
}

func currentUserID(c *fiber.Ctx, authSvc *authsvc.Service) (uuid.UUID, error) {
	token, _ := c.Locals("user").(*jwt.Token)
	return authSvc.CurrentUserID(token)
}
