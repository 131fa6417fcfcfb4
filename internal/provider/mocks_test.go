package provider

import (
	"context"
	"time"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/oauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockIdentities struct {
	mock.Mock
}

func (m *mockIdentities) identity(args mock.Arguments) (*models.Identity, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *mockIdentities) CreateWithPassword(ctx context.Context, email, password string, confirmed bool) (*models.Identity, error) {
	return m.identity(m.Called(ctx, email, password, confirmed))
}

func (m *mockIdentities) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	return m.identity(m.Called(ctx, email, password))
}

func (m *mockIdentities) GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return m.identity(m.Called(ctx, id))
}

func (m *mockIdentities) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return m.identity(m.Called(ctx, email))
}

func (m *mockIdentities) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.Identity, error) {
	return m.identity(m.Called(ctx, info))
}

func (m *mockIdentities) ConfirmEmail(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return m.identity(m.Called(ctx, id))
}

func (m *mockIdentities) TouchLastSignIn(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIdentities) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	return m.Called(ctx, id, password).Error(0)
}

type mockRefreshTokens struct {
	mock.Mock
}

func (m *mockRefreshTokens) Store(ctx context.Context, identityID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return m.Called(ctx, identityID, tokenHash, expiresAt).Error(0)
}

func (m *mockRefreshTokens) Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error) {
	args := m.Called(ctx, oldHash, newHash, expiresAt)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockRefreshTokens) Revoke(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockRefreshTokens) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockEmailTokens struct {
	mock.Mock
}

func (m *mockEmailTokens) Issue(ctx context.Context, identityID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, identityID, purpose, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockEmailTokens) Consume(ctx context.Context, token, purpose string) (uuid.UUID, error) {
	args := m.Called(ctx, token, purpose)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockEmailTokens) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockMailer struct {
	mock.Mock
	configured bool
}

func (m *mockMailer) IsConfigured() bool {
	return m.configured
}

func (m *mockMailer) SendConfirmation(to, link string) error {
	return m.Called(to, link).Error(0)
}

func (m *mockMailer) SendPasswordReset(to, link string) error {
	return m.Called(to, link).Error(0)
}

type mockOAuthProvider struct {
	mock.Mock
	name string
}

func (m *mockOAuthProvider) Name() string {
	return m.name
}

func (m *mockOAuthProvider) AuthCodeURL(state string) string {
	return "https://" + m.name + ".example.com/authorize?state=" + state
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}
