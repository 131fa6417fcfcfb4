package models

import (
	"time"

	"github.com/google/uuid"
)

// Sign-in methods recorded on an identity
const (
	ProviderEmail = "email"
)

// Identity is an authenticated end-user as the auth provider knows it.
type Identity struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Provider         string     `json:"provider"`
	ProviderID       *string    `json:"-"`
	PasswordHash     *string    `json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (i *Identity) Confirmed() bool {
	return i.EmailConfirmedAt != nil
}

// Session ties an identity to a validity window.
type Session struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"user"`
}

// ExpiresWithin reports whether the access token expires before now+d.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !s.ExpiresAt.After(now.Add(d))
}
