package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/dimitrije/portfolio-api/internal/config"
)

// UserInfo is what an external provider tells us about the person signing in.
type UserInfo struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	Provider  string
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
}

// Providers returns the providers that have a client id configured, keyed by name.
func Providers(cfg *config.Config) map[string]Provider {
	providers := make(map[string]Provider)
	if cfg.GitHub.ClientID != "" {
		providers["github"] = NewGitHubProvider(cfg.GitHub)
	}
	if cfg.GitLab.ClientID != "" {
		providers["gitlab"] = NewGitLabProvider(cfg.GitLab)
	}
	if cfg.Google.ClientID != "" {
		providers["google"] = NewGoogleProvider(cfg.Google)
	}
	return providers
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
