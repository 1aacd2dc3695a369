// Package auth exposes the login endpoint.
package auth

import (
	"github.com/gofiber/fiber/v2"
	authsvc "github.com/pesabank/pesabank/pkg/service/auth"
	"github.com/pesabank/pesabank/webapi/common"
)

// Routes registers the authentication routes.
func Routes(app *fiber.App, authSvc *authsvc.Service) {
	app.Post("/login", Login(authSvc))
}

// Login authenticates with email and PIN and returns a JWT.
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if input == nil {
			return err
		}
		u, err := authSvc.Login(c.Context(), input.Email, input.PIN)
		if err != nil {
			return common.ProblemDetailsJSON(
				c, "Invalid email or PIN", err, "Email or PIN is incorrect")
		}
		token, err := authSvc.GenerateToken(u)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(
			c, fiber.StatusOK, "Success login", fiber.Map{"token": token})
	}
}
