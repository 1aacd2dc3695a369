// Package user exposes signup and profile endpoints.
package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/config"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/middleware"
	authsvc "github.com/pesabank/pesabank/pkg/service/auth"
	usersvc "github.com/pesabank/pesabank/pkg/service/user"
	"github.com/pesabank/pesabank/webapi/common"
)

// Routes registers signup and the JWT-protected profile routes.
func Routes(
	app *fiber.App,
	userSvc *usersvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	app.Post("/signup", Signup(userSvc))
	app.Get("/me", middleware.JwtProtected(cfg.Auth.Jwt), GetProfile(userSvc, authSvc))
	app.Put("/me", middleware.JwtProtected(cfg.Auth.Jwt), UpdateProfile(userSvc, authSvc))
}

// Signup registers a user and opens their account.
func Signup(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SignupRequest](c)
		if input == nil {
			return err
		}
		res, err := userSvc.Signup(c.Context(), dto.UserCreate{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Email:       input.Email,
			PhoneNumber: input.PhoneNumber,
		}, input.PIN)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Signup failed", err)
		}
		return common.SuccessResponseJSON(
			c, fiber.StatusCreated, "Account created", fiber.Map{
				"user":    res.User,
				"account": res.Account,
			})
	}
}

// GetProfile returns the authenticated user's profile.
func GetProfile(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		u, err := userSvc.Get(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Profile", u)
	}
}

// UpdateProfile changes profile fields and returns the fresh profile.
func UpdateProfile(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[UpdateProfileRequest](c)
		if input == nil {
			return err
		}
		u, err := userSvc.Update(c.Context(), userID, dto.UserUpdate{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			PhoneNumber: input.PhoneNumber,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Profile updated", u)
	}
}

func currentUserID(c *fiber.Ctx, authSvc *authsvc.Service) (uuid.UUID, error) {
	token, _ := c.Locals("user").(*jwt.Token)
	return authSvc.CurrentUserID(token)
}
