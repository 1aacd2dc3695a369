package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserCreate represents the data needed to register a new user.
type UserCreate struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	HashedPIN   string
}

// UserUpdate represents the profile fields that can be changed after signup.
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// UserRead represents a read-optimized view of a user.
type UserRead struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}
