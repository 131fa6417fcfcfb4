package provider

import (
	"context"
	"time"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/oauth"
	"github.com/dimitrije/portfolio-api/internal/services"
	"github.com/google/uuid"
)

type IdentityStore interface {
	CreateWithPassword(ctx context.Context, email, password string, confirmed bool) (*models.Identity, error)
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.Identity, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	TouchLastSignIn(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, password string) error
}

type RefreshTokenStore interface {
	Store(ctx context.Context, identityID uuid.UUID, tokenHash string, expiresAt time.Time) error
	Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error)
	Revoke(ctx context.Context, tokenHash string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type EmailTokenStore interface {
	Issue(ctx context.Context, identityID uuid.UUID, purpose string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, token, purpose string) (uuid.UUID, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type TokenIssuer interface {
	GenerateTokenPair(identityID uuid.UUID, email string) (*services.TokenPair, error)
	RefreshExpiry() time.Duration
}

type Mailer interface {
	IsConfigured() bool
	SendConfirmation(to, link string) error
	SendPasswordReset(to, link string) error
}

var (
	_ IdentityStore     = (*services.IdentityService)(nil)
	_ RefreshTokenStore = (*services.TokenService)(nil)
	_ EmailTokenStore   = (*services.EmailTokenService)(nil)
	_ TokenIssuer       = (*services.JWTService)(nil)
	_ Mailer            = (*services.EmailService)(nil)
)
