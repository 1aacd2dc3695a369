// Package auth authenticates users by email and PIN and issues the JWT
// access tokens the HTTP layer checks on protected routes.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/config"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps PIN verification constant-time for unknown emails.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

// New creates the auth service.
func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		cfg:    cfg,
		logger: logger.With("service", "auth"),
	}
}

// Login verifies the email and PIN pair. Unknown emails and wrong PINs both
// come back as user.ErrInvalidCredentials so the response never reveals
// which half was wrong.
func (s *Service) Login(
	ctx context.Context,
	email, pin string,
) (*dto.UserRead, error) {
	log := s.logger.With("op", "login")

	var u *user.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		// burn a bcrypt round anyway so lookups and mismatches take the
		// same time
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(pin))
		log.Warn("login failed", "error", err)
		return nil, user.ErrInvalidCredentials
	}
	if !u.CheckPIN(pin) {
		log.Warn("login failed", "userID", u.ID)
		return nil, user.ErrInvalidCredentials
	}

	log.Info("login successful", "userID", u.ID)
	return &dto.UserRead{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}, nil
}

// GenerateToken signs an HS256 JWT whose subject is the user's ID.
func (s *Service) GenerateToken(u *dto.UserRead) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.Expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("token signing failed", "userID", u.ID, "error", err)
		return "", err
	}
	return signed, nil
}

// CurrentUserID extracts the authenticated user's ID from a verified token.
// Anything short of a well-formed UUID subject is rejected as invalid
// credentials; signature and expiry checks already happened in middleware.
func (s *Service) CurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	if token == nil {
		return uuid.Nil, user.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, user.ErrInvalidCredentials
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, user.ErrInvalidCredentials
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		s.logger.Warn("malformed token subject", "error", err)
		return uuid.Nil, user.ErrInvalidCredentials
	}
	return userID, nil
}
