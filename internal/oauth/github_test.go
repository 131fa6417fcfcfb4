package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/portfolio-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestGitHubProvider(t *testing.T, api http.HandlerFunc) *GitHubProvider {
	t.Helper()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer"}`))
	}))
	t.Cleanup(tokenServer.Close)

	apiServer := httptest.NewServer(api)
	t.Cleanup(apiServer.Close)

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  tokenServer.URL + "/authorize",
				TokenURL: tokenServer.URL + "/token",
			},
		},
		apiBase: apiServer.URL,
	}
}

func TestGitHubProvider_AuthCodeURL(t *testing.T) {
	provider := NewGitHubProvider(config.OAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost/auth/callback",
	})

	url := provider.AuthCodeURL("test-state")

	assert.Contains(t, url, "github.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "redirect_uri=http")
}

func TestGitHubProvider_ExchangeCode_Success(t *testing.T) {
	provider := newTestGitHubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 12345, "login": "testuser", "name": "Test User", "email": "test@example.com"}`))
	})

	info, err := provider.ExchangeCode(context.Background(), "code")

	require.NoError(t, err)
	assert.Equal(t, "12345", info.ID)
	assert.Equal(t, "test@example.com", info.Email)
	assert.Equal(t, "Test User", info.Name)
	assert.Equal(t, "github", info.Provider)
}

func TestGitHubProvider_ExchangeCode_EmailFallbackAndLoginName(t *testing.T) {
	provider := newTestGitHubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(`{"id": 7, "login": "octo", "name": "", "email": ""}`))
		case "/user/emails":
			_, _ = w.Write([]byte(`[
				{"email": "secondary@example.com", "primary": false, "verified": true},
				{"email": "private@example.com", "primary": true, "verified": true}
			]`))
		}
	})

	info, err := provider.ExchangeCode(context.Background(), "code")

	require.NoError(t, err)
	assert.Equal(t, "private@example.com", info.Email)
	assert.Equal(t, "octo", info.Name)
}

func TestGitHubProvider_ExchangeCode_NoVerifiedEmail(t *testing.T) {
	provider := newTestGitHubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(`{"id": 7, "login": "octo"}`))
		case "/user/emails":
			_, _ = w.Write([]byte(`[{"email": "x@example.com", "primary": true, "verified": false}]`))
		}
	})

	_, err := provider.ExchangeCode(context.Background(), "code")

	assert.Error(t, err)
}

func TestGitHubProvider_ExchangeCode_APIError(t *testing.T) {
	provider := newTestGitHubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := provider.ExchangeCode(context.Background(), "code")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
