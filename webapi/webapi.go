// Package webapi wires the HTTP surface: Fiber app, middleware and route
// registration for the auth, user and account endpoints.
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pesabank/pesabank/pkg/app"
	accountweb "github.com/pesabank/pesabank/webapi/account"
	authweb "github.com/pesabank/pesabank/webapi/auth"
	"github.com/pesabank/pesabank/webapi/common"
	userweb "github.com/pesabank/pesabank/webapi/user"
)

// SetupApp initializes Fiber with middleware and all routes.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "PesaBank API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return common.ProblemDetailsJSON(
					c, fiberErr.Message, err, fiberErr.Code)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// The client IP keys the rate limiter; honor proxy headers when present.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("PesaBank API is running")
	})

	authweb.Routes(fiberApp, a.AuthService)
	userweb.Routes(fiberApp, a.UserService, a.AuthService, a.Config)
	accountweb.Routes(fiberApp, a.LedgerService, a.AuthService, a.Config)

	return fiberApp
}
