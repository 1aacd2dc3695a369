// Package user holds the user aggregate. A user owns exactly one account,
// created with them at signup and destroyed with them; the account has no
// independent lifecycle.
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the repository.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyRegistered is returned when signup reuses an existing email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login email or PIN do not match.
	ErrInvalidCredentials = errors.New("invalid email or PIN")
)

// User represents a registered customer.
type User struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	HashedPIN   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser creates a User with a bcrypt-hashed PIN and current timestamps.
func NewUser(firstName, lastName, email, phoneNumber, pin string) (*User, error) {
	if firstName == "" {
		return nil, errors.New("first name cannot be empty")
	}
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	if len(pin) < 4 {
		return nil, errors.New("PIN must be at least 4 digits")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:          uuid.New(),
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phoneNumber,
		HashedPIN:   string(hashed),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewUserFromData creates a User from raw data (used for DB hydration).
func NewUserFromData(
	id uuid.UUID,
	firstName, lastName, email, phoneNumber, hashedPIN string,
	created, updated time.Time,
) *User {
	return &User{
		ID:          id,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phoneNumber,
		HashedPIN:   hashedPIN,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

// FullName returns the presentable owner name used in notifications.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CheckPIN compares a plaintext PIN against the stored hash.
func (u *User) CheckPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPIN), []byte(pin)) == nil
}
