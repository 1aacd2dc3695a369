package user

// SignupRequest is the request body for registering a new user.
type SignupRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,e164"`
	PIN         string `json:"pin" validate:"required,min=4,max=32,numeric"`
}

// UpdateProfileRequest carries the profile fields that can change.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,e164"`
}
