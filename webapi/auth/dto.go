package auth

// LoginRequest is the request body for authentication.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	PIN   string `json:"pin" validate:"required,min=4"`
}
