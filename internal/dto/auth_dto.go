package dto

// LoginRequest carries the credentials for both roles. Either email or
// institutional code identifies the account; role narrows the lookup when
// provided, otherwise teachers are tried first.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Code     string `json:"code" validate:"omitempty,min=2"`
	Password string `json:"password" validate:"required,min=4"`
	Role     string `json:"role" validate:"omitempty,oneof=teacher student"`
}

// UserSummary is the public shape of an authenticated account.
type UserSummary struct {
	ID        uint   `json:"id"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Code      string `json:"code"`
}

// LoginResponse returns the session token and the resolved user.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset with the emailed token.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
