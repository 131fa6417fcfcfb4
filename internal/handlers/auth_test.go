package handlers

import (
	"net/http"
	"testing"

	"github.com/dimitrije/portfolio-api/internal/auth"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/provider"
	"github.com/dimitrije/portfolio-api/internal/testutil"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func existingProfile(profiles *testutil.MockProfileService, identity models.Identity, role string) {
	profiles.On("FindByID", mock.Anything, identity.ID).
		Return(&models.Profile{ID: identity.ID, Email: identity.Email, Role: role}, nil)
	profiles.On("GetRole", mock.Anything, identity.ID).Return(role, nil)
}

func TestAuthHandler_Session(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})
		browser := srv.browser(t)

		rec := browser.GET("/auth/session")
		testutil.AssertStatus(t, rec, http.StatusOK)

		var session dto.SessionResponse
		decode(t, rec).into(t, &session)
		assert.Nil(t, session.User)
		assert.False(t, session.Loading)
		assert.True(t, session.Configured)
		assert.NotEmpty(t, browser.Cookie("portfolio_visitor"))
	})

	t.Run("signed in admin", func(t *testing.T) {
		client := testutil.NewFakeClient()
		s := testutil.Session("admin@example.com")
		client.SetSession(s)
		profiles := &testutil.MockProfileService{}
		profiles.On("GetRole", mock.Anything, s.Identity.ID).Return(models.RoleAdmin, nil)

		srv := newTestServer(t, testDeps{client: client, profiles: profiles})
		rec := srv.browser(t).GET("/auth/session")
		testutil.AssertStatus(t, rec, http.StatusOK)

		var session dto.SessionResponse
		decode(t, rec).into(t, &session)
		require.NotNil(t, session.User)
		assert.Equal(t, "admin@example.com", session.User.Email)
		assert.True(t, session.IsAdmin)
		assert.NotNil(t, session.ExpiresAt)
	})

	t.Run("unconfigured", func(t *testing.T) {
		srv := newTestServer(t, testDeps{})
		rec := srv.browser(t).GET("/auth/session")
		testutil.AssertStatus(t, rec, http.StatusOK)

		var session dto.SessionResponse
		decode(t, rec).into(t, &session)
		assert.False(t, session.Configured)
		assert.False(t, session.Loading)
		assert.Equal(t, testConfigErr, session.Error)
	})
}

func TestAuthHandler_SignIn_Validation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
		want string
	}{
		{"bad email", dto.SignInRequest{Email: "not-an-email", Password: "secret1"}, msgInvalidEmail},
		{"short password", dto.SignInRequest{Email: "ada@example.com", Password: "123"}, msgPasswordTooShort},
		{"not json", "plain", msgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})
			rec := srv.browser(t).POST("/auth/signin", tt.body)
			testutil.AssertStatus(t, rec, http.StatusBadRequest)
			assert.Equal(t, tt.want, decode(t, rec).Error)
		})
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		redirect string
	}{
		{"admin goes to dashboard", models.RoleAdmin, auth.AdminHomePath},
		{"guest goes home", models.RoleGuest, auth.HomePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.Session("ada@example.com")
			client := testutil.NewFakeClient()
			client.SignInResp = &provider.AuthResponse{Identity: &s.Identity, Session: s}
			profiles := &testutil.MockProfileService{}
			existingProfile(profiles, s.Identity, tt.role)

			srv := newTestServer(t, testDeps{client: client, profiles: profiles})
			browser := srv.browser(t)

			rec := browser.POST("/auth/signin", dto.SignInRequest{Email: "ada@example.com", Password: "secret1"})
			testutil.AssertStatus(t, rec, http.StatusOK)

			env := decode(t, rec)
			var redirect dto.RedirectResponse
			env.into(t, &redirect)
			assert.Equal(t, tt.redirect, redirect.Redirect)
			assert.Equal(t, tt.role == models.RoleAdmin, redirect.IsAdmin)
			assert.Equal(t, []dto.Notification{{Kind: "success", Message: auth.MsgSignedIn}}, env.Notifications)

			// the toast is shown once
			assert.Empty(t, decode(t, browser.GET("/auth/session")).Notifications)
		})
	}
}

func TestAuthHandler_SignIn_Failure(t *testing.T) {
	client := testutil.NewFakeClient()
	client.SignInErr = &provider.Error{Code: provider.CodeInvalidCredentials, Message: "Invalid login credentials"}

	srv := newTestServer(t, testDeps{client: client})
	browser := srv.browser(t)

	rec := browser.POST("/auth/signin", dto.SignInRequest{Email: "ada@example.com", Password: "wrong-password"})
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	env := decode(t, rec)
	assert.Equal(t, "Invalid login credentials", env.Error)
	assert.Equal(t, []dto.Notification{{Kind: "error", Message: "Invalid login credentials"}}, env.Notifications)

	var session dto.SessionResponse
	decode(t, browser.GET("/auth/session")).into(t, &session)
	assert.Equal(t, "Invalid login credentials", session.Error)
	assert.Nil(t, session.User)
}

func TestAuthHandler_Unconfigured(t *testing.T) {
	srv := newTestServer(t, testDeps{})
	browser := srv.browser(t)

	rec := browser.POST("/auth/signin", dto.SignInRequest{Email: "ada@example.com", Password: "secret1"})
	testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
	assert.Equal(t, testConfigErr, decode(t, rec).Error)

	rec = browser.POST("/auth/forgot-password", dto.ForgotPasswordRequest{Email: "ada@example.com"})
	testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)

	rec = browser.GET("/auth/oauth/github")
	testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
}

func TestAuthHandler_SignUp(t *testing.T) {
	t.Run("passwords must match", func(t *testing.T) {
		srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})
		rec := srv.browser(t).POST("/auth/signup", dto.SignUpRequest{
			Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret2",
		})
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, msgPasswordMismatch, decode(t, rec).Error)
	})

	t.Run("verification required", func(t *testing.T) {
		identity := testutil.Session("ada@example.com").Identity
		identity.EmailConfirmedAt = nil
		client := testutil.NewFakeClient()
		client.SignUpResp = &provider.AuthResponse{Identity: &identity}
		profiles := &testutil.MockProfileService{}
		profiles.On("Create", mock.Anything, identity.ID, "ada@example.com", models.RoleGuest).Return(true, nil)

		srv := newTestServer(t, testDeps{client: client, profiles: profiles})
		rec := srv.browser(t).POST("/auth/signup", dto.SignUpRequest{
			Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1",
		})
		testutil.AssertStatus(t, rec, http.StatusOK)

		env := decode(t, rec)
		var resp dto.SignUpResponse
		env.into(t, &resp)
		assert.Equal(t, string(auth.OutcomeVerificationSent), resp.Outcome)
		assert.Equal(t, []dto.Notification{{Kind: "success", Message: auth.MsgVerificationSent}}, env.Notifications)
		profiles.AssertExpectations(t)
	})

	t.Run("already registered", func(t *testing.T) {
		client := testutil.NewFakeClient()
		client.SignUpErr = &provider.Error{Code: provider.CodeUserAlreadyExists, Message: "User already registered"}

		srv := newTestServer(t, testDeps{client: client})
		rec := srv.browser(t).POST("/auth/signup", dto.SignUpRequest{
			Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1",
		})
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, "User already registered", decode(t, rec).Error)
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		client := testutil.NewFakeClient()
		srv := newTestServer(t, testDeps{client: client})

		rec := srv.browser(t).POST("/auth/forgot-password", dto.ForgotPasswordRequest{Email: "ada@example.com"})
		testutil.AssertStatus(t, rec, http.StatusOK)
		assert.Equal(t, []dto.Notification{{Kind: "success", Message: auth.MsgResetSent}}, decode(t, rec).Notifications)
		assert.Equal(t, "http://localhost:8080/auth/reset-password", client.ResetTo)
	})

	t.Run("delivery failed reads as sent", func(t *testing.T) {
		client := testutil.NewFakeClient()
		client.ResetErr = &provider.Error{Code: provider.CodeUnexpected, Message: "Error sending recovery email"}
		srv := newTestServer(t, testDeps{client: client})

		rec := srv.browser(t).POST("/auth/forgot-password", dto.ForgotPasswordRequest{Email: "ada@example.com"})
		testutil.AssertStatus(t, rec, http.StatusOK)
		assert.Equal(t, []dto.Notification{{Kind: "success", Message: auth.MsgResetSent}}, decode(t, rec).Notifications)
	})

	t.Run("redirect rejected", func(t *testing.T) {
		client := testutil.NewFakeClient()
		client.ResetErr = &provider.Error{Code: provider.CodeRedirectNotAllowed, Message: "Redirect URL is not allowed"}
		srv := newTestServer(t, testDeps{client: client})

		rec := srv.browser(t).POST("/auth/forgot-password", dto.ForgotPasswordRequest{Email: "ada@example.com"})
		testutil.AssertStatus(t, rec, http.StatusBadGateway)
		assert.Equal(t, "Redirect URL is not allowed", decode(t, rec).Error)
	})
}

func TestAuthHandler_SignOut(t *testing.T) {
	s := testutil.Session("ada@example.com")
	client := testutil.NewFakeClient()
	client.SetSession(s)
	profiles := &testutil.MockProfileService{}
	profiles.On("GetRole", mock.Anything, s.Identity.ID).Return(models.RoleGuest, nil)

	srv := newTestServer(t, testDeps{client: client, profiles: profiles})
	browser := srv.browser(t)

	var before dto.SessionResponse
	decode(t, browser.GET("/auth/session")).into(t, &before)
	require.NotNil(t, before.User)

	rec := browser.POST("/auth/signout", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var redirect dto.RedirectResponse
	decode(t, rec).into(t, &redirect)
	assert.Equal(t, auth.HomePath, redirect.Redirect)

	var after dto.SessionResponse
	decode(t, browser.GET("/auth/session")).into(t, &after)
	assert.Nil(t, after.User)
	assert.False(t, after.IsAdmin)
}

func TestAuthHandler_OAuth(t *testing.T) {
	t.Run("redirects to consent page", func(t *testing.T) {
		client := testutil.NewFakeClient()
		client.OAuthURL = "https://github.com/login/oauth/authorize?state=abc"
		srv := newTestServer(t, testDeps{client: client})

		rec := srv.browser(t).GET("/auth/oauth/github")
		testutil.AssertStatus(t, rec, http.StatusFound)
		assert.Equal(t, client.OAuthURL, rec.Header().Get("Location"))
		assert.Equal(t, "http://localhost:8080/auth/callback", client.OAuthTo)
	})

	t.Run("empty url", func(t *testing.T) {
		srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})

		rec := srv.browser(t).GET("/auth/oauth/github")
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, auth.MsgOAuthStartFailed, decode(t, rec).Error)
	})
}

func TestAuthHandler_Callback(t *testing.T) {
	t.Run("error description", func(t *testing.T) {
		srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})
		browser := srv.browser(t)

		rec := browser.GET("/auth/callback?error_description=Email+link+is+invalid+or+has+expired")
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, "Email link is invalid or has expired", decode(t, rec).Error)

		var session dto.SessionResponse
		decode(t, browser.GET("/auth/session")).into(t, &session)
		assert.Equal(t, "Email link is invalid or has expired", session.Error)
	})

	t.Run("oauth code", func(t *testing.T) {
		s := testutil.Session("ada@example.com")
		client := testutil.NewFakeClient()
		client.SignInResp = &provider.AuthResponse{Identity: &s.Identity, Session: s}
		profiles := &testutil.MockProfileService{}
		existingProfile(profiles, s.Identity, models.RoleAdmin)

		srv := newTestServer(t, testDeps{client: client, profiles: profiles})
		rec := srv.browser(t).GET("/auth/callback?state=abc&code=xyz")
		testutil.AssertStatus(t, rec, http.StatusFound)
		assert.Equal(t, auth.AdminHomePath, rec.Header().Get("Location"))
	})

	t.Run("signup confirmation", func(t *testing.T) {
		s := testutil.Session("ada@example.com")
		client := testutil.NewFakeClient()
		client.VerifyResp = &provider.AuthResponse{Identity: &s.Identity, Session: s}
		profiles := &testutil.MockProfileService{}
		existingProfile(profiles, s.Identity, models.RoleGuest)

		srv := newTestServer(t, testDeps{client: client, profiles: profiles})
		rec := srv.browser(t).GET("/auth/callback?token=confirm-me")
		testutil.AssertStatus(t, rec, http.StatusFound)
		assert.Equal(t, auth.HomePath, rec.Header().Get("Location"))
	})

	t.Run("recovery token goes to reset page", func(t *testing.T) {
		srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})
		rec := srv.browser(t).GET("/auth/callback?token=abc&type=recovery")
		testutil.AssertStatus(t, rec, http.StatusFound)
		assert.Equal(t, "/auth/reset-password?token=abc", rec.Header().Get("Location"))
	})

	t.Run("nothing to redeem", func(t *testing.T) {
		srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})
		rec := srv.browser(t).GET("/auth/callback")
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, msgSessionMissing, decode(t, rec).Error)
	})
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		srv := newTestServer(t, testDeps{client: testutil.NewFakeClient()})
		rec := srv.browser(t).POST("/auth/reset-password", dto.ResetPasswordRequest{
			Password: "newsecret", ConfirmPassword: "newsecret",
		})
		testutil.AssertStatus(t, rec, http.StatusUnauthorized)
		assert.Equal(t, msgSessionMissing, decode(t, rec).Error)
	})

	t.Run("recovery link then new password", func(t *testing.T) {
		s := testutil.Session("ada@example.com")
		client := testutil.NewFakeClient()
		client.VerifyResp = &provider.AuthResponse{Identity: &s.Identity, Session: s}
		profiles := &testutil.MockProfileService{}
		profiles.On("GetRole", mock.Anything, s.Identity.ID).Return(models.RoleGuest, nil)

		srv := newTestServer(t, testDeps{client: client, profiles: profiles})
		browser := srv.browser(t)

		rec := browser.GET("/auth/reset-password?token=recover-me")
		testutil.AssertStatus(t, rec, http.StatusOK)
		var session dto.SessionResponse
		decode(t, rec).into(t, &session)
		require.NotNil(t, session.User)
		assert.Equal(t, "ada@example.com", session.User.Email)

		rec = browser.POST("/auth/reset-password", dto.ResetPasswordRequest{
			Password: "short", ConfirmPassword: "short",
		})
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, msgPasswordTooShort, decode(t, rec).Error)

		rec = browser.POST("/auth/reset-password", dto.ResetPasswordRequest{
			Password: "newsecret", ConfirmPassword: "newsecret",
		})
		testutil.AssertStatus(t, rec, http.StatusOK)
		env := decode(t, rec)
		var redirect dto.RedirectResponse
		env.into(t, &redirect)
		assert.Equal(t, auth.SignInPath, redirect.Redirect)
		assert.Equal(t, []dto.Notification{{Kind: "success", Message: auth.MsgPasswordReset}}, env.Notifications)
	})

	t.Run("expired recovery link", func(t *testing.T) {
		client := testutil.NewFakeClient()
		client.VerifyErr = &provider.Error{Code: provider.CodeOTPExpired, Message: "Token has expired or is invalid"}
		srv := newTestServer(t, testDeps{client: client})

		rec := srv.browser(t).GET("/auth/reset-password?token=stale")
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, "Token has expired or is invalid", decode(t, rec).Error)
	})
}
