package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/oauth"
	"github.com/dimitrije/portfolio-api/internal/services"
)

// LocalClient is the Client of one visitor, backed by a shared Backend.
type LocalClient struct {
	backend *Backend

	mu      sync.Mutex
	session *models.Session
	seq     uint64
	events  *Broadcaster

	// refreshMu serializes rotations so a second refresh sees the token the
	// first one issued instead of the one it consumed.
	refreshMu sync.Mutex
}

var _ Client = (*LocalClient)(nil)

func (c *LocalClient) GetSession(ctx context.Context) (*models.Session, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySession(c.session), c.seq, nil
}

func (c *LocalClient) OnAuthStateChange() *Subscription {
	return c.events.Subscribe()
}

func (c *LocalClient) LatestSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// emit must be called with c.mu held.
func (c *LocalClient) emit(eventType EventType, session *models.Session) {
	c.session = session
	c.seq++
	c.events.Publish(Event{Type: eventType, Session: copySession(session), Seq: c.seq})
}

func (c *LocalClient) setSession(eventType EventType, session *models.Session) {
	c.mu.Lock()
	c.emit(eventType, session)
	c.mu.Unlock()
}

func (c *LocalClient) currentSession() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *LocalClient) issueSession(ctx context.Context, identity *models.Identity) (*models.Session, error) {
	b := c.backend

	pair, err := b.jwt.GenerateTokenPair(identity.ID, identity.Email)
	if err != nil {
		return nil, err
	}

	expiresAt := b.now().Add(b.jwt.RefreshExpiry())
	if err := b.refreshTokens.Store(ctx, identity.ID, services.HashToken(pair.RefreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if err := b.identities.TouchLastSignIn(ctx, identity.ID); err != nil {
		slog.Warn("failed to record sign-in time", "identity_id", identity.ID, "error", err)
	}

	return &models.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		IssuedAt:     pair.IssuedAt,
		ExpiresAt:    pair.ExpiresAt,
		Identity:     *identity,
	}, nil
}

func (c *LocalClient) SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	identity, err := c.backend.identities.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return nil, newError(CodeInvalidCredentials, "Invalid login credentials")
	case errors.Is(err, services.ErrEmailNotConfirmed):
		return nil, newError(CodeEmailNotConfirmed, "Email not confirmed")
	case err != nil:
		return nil, unexpected(err)
	}

	session, err := c.issueSession(ctx, identity)
	if err != nil {
		return nil, unexpected(err)
	}

	c.setSession(EventSignedIn, session)
	return &AuthResponse{Identity: identity, Session: session}, nil
}

func (c *LocalClient) SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error) {
	p, ok := c.backend.providers[provider]
	if !ok {
		return "", newError(CodeProviderDisabled, "Unsupported provider: provider is not enabled")
	}
	if !c.backend.redirectAllowed(redirectTo) {
		return "", newError(CodeRedirectNotAllowed, "Redirect URL is not allowed")
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return "", unexpected(err)
	}
	c.backend.saveState(state, p.Name())

	return p.AuthCodeURL(state), nil
}

func (c *LocalClient) ExchangeCodeForSession(ctx context.Context, state, code string) (*AuthResponse, error) {
	name, ok := c.backend.takeState(state)
	if !ok {
		return nil, newError(CodeBadOAuthState, "OAuth state is invalid or has expired")
	}
	p, ok := c.backend.providers[name]
	if !ok {
		return nil, newError(CodeProviderDisabled, "Unsupported provider: provider is not enabled")
	}

	info, err := p.ExchangeCode(ctx, code)
	if err != nil {
		slog.Warn("oauth code exchange failed", "provider", name, "error", err)
		return nil, newError(CodeOAuthExchange, "Unable to exchange external code")
	}

	identity, err := c.backend.identities.FindOrCreateFromOAuth(ctx, info)
	if err != nil {
		return nil, unexpected(err)
	}

	session, err := c.issueSession(ctx, identity)
	if err != nil {
		return nil, unexpected(err)
	}

	c.setSession(EventSignedIn, session)
	return &AuthResponse{Identity: identity, Session: session}, nil
}

// SignUp registers an email identity. Without auto-confirm the response has
// no session and a confirmation link is mailed instead.
func (c *LocalClient) SignUp(ctx context.Context, email, password string) (*AuthResponse, error) {
	b := c.backend

	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword, fmt.Sprintf("Password should be at least %d characters", MinPasswordLength))
	}

	identity, err := b.identities.CreateWithPassword(ctx, email, password, b.autoConfirm)
	if errors.Is(err, services.ErrEmailTaken) {
		return nil, newError(CodeUserAlreadyExists, "User already registered")
	}
	if err != nil {
		return nil, unexpected(err)
	}

	if !b.autoConfirm {
		token, err := b.emailTokens.Issue(ctx, identity.ID, services.PurposeSignup, signupLinkTTL)
		if err != nil {
			return nil, unexpected(err)
		}
		link := linkWithToken(b.siteURL+"/auth/callback", token, OTPSignup)
		if err := b.mailer.SendConfirmation(identity.Email, link); err != nil {
			slog.Error("failed to send confirmation email", "identity_id", identity.ID, "error", err)
			return nil, newError(CodeUnexpected, "Error sending confirmation email")
		}
		return &AuthResponse{Identity: identity}, nil
	}

	session, err := c.issueSession(ctx, identity)
	if err != nil {
		return nil, unexpected(err)
	}

	c.setSession(EventSignedIn, session)
	return &AuthResponse{Identity: identity, Session: session}, nil
}

// VerifyOTP redeems a signup or recovery email link and signs the visitor in.
func (c *LocalClient) VerifyOTP(ctx context.Context, token, otpType string) (*AuthResponse, error) {
	b := c.backend

	var purpose string
	var eventType EventType
	switch otpType {
	case OTPSignup:
		purpose, eventType = services.PurposeSignup, EventSignedIn
	case OTPRecovery:
		purpose, eventType = services.PurposeRecovery, EventPasswordRecovery
	default:
		return nil, newError(CodeOTPExpired, "Email link is invalid or has expired")
	}

	identityID, err := b.emailTokens.Consume(ctx, token, purpose)
	if errors.Is(err, services.ErrEmailTokenInvalid) {
		return nil, newError(CodeOTPExpired, "Email link is invalid or has expired")
	}
	if err != nil {
		return nil, unexpected(err)
	}

	var identity *models.Identity
	if purpose == services.PurposeSignup {
		identity, err = b.identities.ConfirmEmail(ctx, identityID)
	} else {
		identity, err = b.identities.GetByID(ctx, identityID)
	}
	if err != nil {
		return nil, unexpected(err)
	}

	session, err := c.issueSession(ctx, identity)
	if err != nil {
		return nil, unexpected(err)
	}

	c.setSession(eventType, session)
	return &AuthResponse{Identity: identity, Session: session}, nil
}

// SignOut drops the local session and revokes its refresh token. SIGNED_OUT
// is emitted even when nobody was signed in.
func (c *LocalClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.emit(EventSignedOut, nil)
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	if err := c.backend.refreshTokens.Revoke(ctx, services.HashToken(session.RefreshToken)); err != nil {
		return unexpected(err)
	}
	return nil
}

// ResetPasswordForEmail mails a recovery link. Unknown addresses are
// reported as user_not_found so callers can decide what to reveal.
func (c *LocalClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	b := c.backend

	if !b.redirectAllowed(redirectTo) {
		return newError(CodeRedirectNotAllowed, "Redirect URL is not allowed")
	}

	identity, err := b.identities.GetByEmail(ctx, email)
	if errors.Is(err, services.ErrIdentityNotFound) {
		return newError(CodeUserNotFound, "User not found")
	}
	if err != nil {
		return unexpected(err)
	}

	token, err := b.emailTokens.Issue(ctx, identity.ID, services.PurposeRecovery, recoveryLinkTTL)
	if err != nil {
		return unexpected(err)
	}

	if err := b.mailer.SendPasswordReset(identity.Email, linkWithToken(redirectTo, token, OTPRecovery)); err != nil {
		slog.Error("failed to send recovery email", "identity_id", identity.ID, "error", err)
		return newError(CodeUnexpected, "Error sending recovery email")
	}
	return nil
}

func (c *LocalClient) UpdatePassword(ctx context.Context, password string) (*models.Identity, error) {
	session := c.currentSession()
	if session == nil {
		return nil, newError(CodeSessionNotFound, "Auth session missing!")
	}
	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword, fmt.Sprintf("Password should be at least %d characters", MinPasswordLength))
	}

	b := c.backend
	if err := b.identities.UpdatePassword(ctx, session.Identity.ID, password); err != nil {
		return nil, unexpected(err)
	}
	identity, err := b.identities.GetByID(ctx, session.Identity.ID)
	if err != nil {
		return nil, unexpected(err)
	}

	c.mu.Lock()
	if c.session != nil && c.session.Identity.ID == identity.ID {
		updated := *c.session
		updated.Identity = *identity
		c.emit(EventUserUpdated, &updated)
	}
	c.mu.Unlock()

	return identity, nil
}

// RefreshSession rotates the refresh token and issues a new access token.
// A rejected refresh token signs the visitor out. Concurrent calls run one
// after another.
func (c *LocalClient) RefreshSession(ctx context.Context) (*models.Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	session := c.currentSession()
	if session == nil {
		return nil, newError(CodeSessionNotFound, "Auth session missing!")
	}

	b := c.backend
	pair, err := b.jwt.GenerateTokenPair(session.Identity.ID, session.Identity.Email)
	if err != nil {
		return nil, unexpected(err)
	}

	_, err = b.refreshTokens.Rotate(ctx,
		services.HashToken(session.RefreshToken),
		services.HashToken(pair.RefreshToken),
		b.now().Add(b.jwt.RefreshExpiry()))
	if errors.Is(err, services.ErrRefreshTokenInvalid) {
		c.mu.Lock()
		if c.session == session {
			c.emit(EventSignedOut, nil)
		}
		c.mu.Unlock()
		return nil, newError(CodeRefreshTokenInvalid, "Invalid Refresh Token")
	}
	if err != nil {
		return nil, unexpected(err)
	}

	refreshed := &models.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		IssuedAt:     pair.IssuedAt,
		ExpiresAt:    pair.ExpiresAt,
		Identity:     session.Identity,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		// signed out or replaced while rotating
		return copySession(c.session), nil
	}
	c.emit(EventTokenRefreshed, refreshed)
	return copySession(refreshed), nil
}

func unexpected(err error) *Error {
	slog.Error("auth provider failure", "error", err)
	return newError(CodeUnexpected, "An unexpected error occurred")
}

func linkWithToken(base, token, otpType string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("type", otpType)
	return base + "?" + q.Encode()
}

func copySession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
