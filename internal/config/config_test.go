package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SITE_URL", "https://portfolio.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://portfolio.example.com", cfg.SiteURL)
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10000, cfg.MaxVisitors)
	assert.Equal(t, "https://portfolio.example.com/auth/callback", cfg.CallbackURL())
	assert.Equal(t, "https://portfolio.example.com/auth/reset-password", cfg.ResetPasswordURL())
	assert.Equal(t, "https://portfolio.example.com/auth/callback", cfg.GitHub.RedirectURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "soon")
	t.Setenv("AUTH_AUTOCONFIRM", "maybe")
	t.Setenv("RATE_LIMIT_AUTH_BURST", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.False(t, cfg.AutoConfirm)
	assert.Equal(t, 5, cfg.RateLimit.AuthBurst)
}

func TestConfig_ProviderConfigured(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    bool
		missing []string
	}{
		{"both set", Config{DatabaseURL: "postgres://x", JWTSecret: "s"}, true, nil},
		{"no endpoint", Config{JWTSecret: "s"}, false, []string{"DATABASE_URL"}},
		{"no key", Config{DatabaseURL: "postgres://x"}, false, []string{"JWT_SECRET"}},
		{"neither", Config{}, false, []string{"DATABASE_URL", "JWT_SECRET"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ProviderConfigured())
			assert.Equal(t, tt.missing, tt.cfg.MissingProvider())
		})
	}
}
