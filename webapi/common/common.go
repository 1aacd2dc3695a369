// Package common holds the response envelope, RFC 9457 problem details and
// request binding helpers shared by the HTTP handlers.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pesabank/pesabank/pkg/domain/account"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/money"
	"github.com/pesabank/pesabank/pkg/repository"
)

// Response is the standard envelope for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ProblemDetailsJSON writes an RFC 9457 problem response. The status is
// derived from err's place in the domain taxonomy unless an explicit status
// is passed as the final argument.
func ProblemDetailsJSON(
	c *fiber.Ctx,
	title string,
	err error,
	detailAndStatus ...any,
) error {
	status := ErrorToStatusCode(err)
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, extra := range detailAndStatus {
		switch v := extra.(type) {
		case string:
			pd.Detail = v
		case int:
			pd.Status = v
			status = v
		default:
			pd.Errors = v
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, account.ErrSenderAccountNotFound),
		errors.Is(err, account.ErrReceiverAccountNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, account.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, account.ErrSelfTransferNotAllowed),
		errors.Is(err, money.ErrInvalidCurrencyCode),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrAmountOverflow):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, account.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, user.ErrEmailAlreadyRegistered),
		errors.Is(err, repository.ErrDuplicate):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body into T and validates the struct
// tags. On failure the error response is already written and the returned
// pointer is nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(
			c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := validator.New().Struct(input); err != nil {
		return nil, ProblemDetailsJSON(
			c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}
