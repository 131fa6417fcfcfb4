// Package provider is the auth provider SDK boundary. A Client is bound to one
// visitor and behaves like a browser-side auth SDK: it holds the visitor's
// current session and notifies subscribers of every change.
package provider

import (
	"context"
	"errors"

	"github.com/dimitrije/portfolio-api/internal/models"
)

type EventType string

const (
	EventSignedIn         EventType = "SIGNED_IN"
	EventSignedOut        EventType = "SIGNED_OUT"
	EventTokenRefreshed   EventType = "TOKEN_REFRESHED"
	EventUserUpdated      EventType = "USER_UPDATED"
	EventPasswordRecovery EventType = "PASSWORD_RECOVERY"
)

// Event is an auth state change. Seq increases by one with every event a
// client emits, so consumers can tell newer state from older.
type Event struct {
	Type    EventType
	Session *models.Session
	Seq     uint64
}

// Link types accepted by VerifyOTP
const (
	OTPSignup   = "signup"
	OTPRecovery = "recovery"
)

// Error codes reported in *Error
const (
	CodeInvalidCredentials  = "invalid_credentials"
	CodeEmailNotConfirmed   = "email_not_confirmed"
	CodeUserAlreadyExists   = "user_already_exists"
	CodeUserNotFound        = "user_not_found"
	CodeWeakPassword        = "weak_password"
	CodeProviderDisabled    = "provider_disabled"
	CodeRedirectNotAllowed  = "redirect_not_allowed"
	CodeBadOAuthState       = "bad_oauth_state"
	CodeOAuthExchange       = "oauth_exchange_failed"
	CodeOTPExpired          = "otp_expired"
	CodeSessionNotFound     = "session_not_found"
	CodeRefreshTokenInvalid = "refresh_token_not_found"
	CodeUnexpected          = "unexpected_failure"
)

// MinPasswordLength is enforced on sign-up and password change.
const MinPasswordLength = 6

var ErrNotConfigured = errors.New("auth provider is not configured")

// Error is a failure the provider reports to the user. Message is safe to show.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ErrorCode returns the provider code of err, or "" for other errors.
func ErrorCode(err error) string {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return ""
}

type AuthResponse struct {
	Identity *models.Identity
	Session  *models.Session
}

type Client interface {
	// GetSession returns the current session (nil when signed out) and the
	// sequence number of the last event reflected in it.
	GetSession(ctx context.Context) (*models.Session, uint64, error)
	OnAuthStateChange() *Subscription
	LatestSeq() uint64

	SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error)
	// SignInWithOAuth returns the provider consent URL the browser must visit.
	SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error)
	ExchangeCodeForSession(ctx context.Context, state, code string) (*AuthResponse, error)
	SignUp(ctx context.Context, email, password string) (*AuthResponse, error)
	VerifyOTP(ctx context.Context, token, otpType string) (*AuthResponse, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, password string) (*models.Identity, error)
	RefreshSession(ctx context.Context) (*models.Session, error)
}
