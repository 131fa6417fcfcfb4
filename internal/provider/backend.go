package provider

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/portfolio-api/internal/oauth"
)

const (
	oauthStateTTL   = 10 * time.Minute
	signupLinkTTL   = 24 * time.Hour
	recoveryLinkTTL = time.Hour
)

type oauthState struct {
	provider  string
	expiresAt time.Time
}

// Backend holds everything visitor clients share: the identity directory,
// token stores, mailer, OAuth providers and pending OAuth states.
type Backend struct {
	identities    IdentityStore
	refreshTokens RefreshTokenStore
	emailTokens   EmailTokenStore
	jwt           TokenIssuer
	mailer        Mailer
	providers     map[string]oauth.Provider

	siteURL     string
	autoConfirm bool

	states sync.Map
	now    func() time.Time
}

type BackendConfig struct {
	SiteURL string
	// AutoConfirm skips email confirmation on sign-up.
	AutoConfirm bool
}

func NewBackend(
	cfg BackendConfig,
	identities IdentityStore,
	refreshTokens RefreshTokenStore,
	emailTokens EmailTokenStore,
	jwt TokenIssuer,
	mailer Mailer,
	providers map[string]oauth.Provider,
) *Backend {
	return &Backend{
		identities:    identities,
		refreshTokens: refreshTokens,
		emailTokens:   emailTokens,
		jwt:           jwt,
		mailer:        mailer,
		providers:     providers,
		siteURL:       strings.TrimRight(cfg.SiteURL, "/"),
		autoConfirm:   cfg.AutoConfirm || !mailer.IsConfigured(),
		now:           time.Now,
	}
}

// NewClient returns a signed-out client for one visitor.
func (b *Backend) NewClient() *LocalClient {
	return &LocalClient{
		backend: b,
		events:  NewBroadcaster(),
	}
}

// AutoConfirm reports whether sign-ups get a session without confirming their email.
func (b *Backend) AutoConfirm() bool {
	return b.autoConfirm
}

// redirectAllowed keeps email and OAuth links on this site.
func (b *Backend) redirectAllowed(redirectTo string) bool {
	return redirectTo == b.siteURL || strings.HasPrefix(redirectTo, b.siteURL+"/")
}

func (b *Backend) saveState(state, provider string) {
	b.states.Store(state, oauthState{provider: provider, expiresAt: b.now().Add(oauthStateTTL)})
}

// takeState consumes state. A state is usable once.
func (b *Backend) takeState(state string) (string, bool) {
	v, ok := b.states.LoadAndDelete(state)
	if !ok {
		return "", false
	}
	s := v.(oauthState)
	if b.now().After(s.expiresAt) {
		return "", false
	}
	return s.provider, true
}

func (b *Backend) cleanup(ctx context.Context) {
	now := b.now()
	b.states.Range(func(key, value any) bool {
		if now.After(value.(oauthState).expiresAt) {
			b.states.Delete(key)
		}
		return true
	})

	if n, err := b.refreshTokens.CleanupExpired(ctx); err != nil {
		slog.Warn("refresh token cleanup failed", "error", err)
	} else if n > 0 {
		slog.Debug("removed expired refresh tokens", "count", n)
	}
	if _, err := b.emailTokens.CleanupExpired(ctx); err != nil {
		slog.Warn("email token cleanup failed", "error", err)
	}
}

// Run removes expired OAuth states and tokens every interval until ctx is done.
func (b *Backend) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.cleanup(ctx)
		}
	}
}
