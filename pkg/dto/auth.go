package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Provider         string     `json:"provider"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

type SessionResponse struct {
	User       *UserResponse `json:"user"`
	ExpiresAt  *time.Time    `json:"expires_at,omitempty"`
	IsAdmin    bool          `json:"is_admin"`
	Loading    bool          `json:"loading"`
	Configured bool          `json:"configured"`
	Error      string        `json:"error,omitempty"`
}

// RedirectResponse tells the browser where to go next.
type RedirectResponse struct {
	Redirect string `json:"redirect"`
	IsAdmin  bool   `json:"is_admin"`
}

type SignUpResponse struct {
	Outcome string `json:"outcome"`
}
