package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/portfolio-api/internal/auth"
	"github.com/dimitrije/portfolio-api/internal/middleware"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/provider"
	"github.com/dimitrije/portfolio-api/internal/security"
	"github.com/dimitrije/portfolio-api/internal/testutil"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testConfigErr = "Authentication is not configured. Missing DATABASE_URL, JWT_SECRET."

type envelope struct {
	Data          json.RawMessage    `json:"data"`
	Error         string             `json:"error"`
	Notifications []dto.Notification `json:"notifications"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (e envelope) into(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

type testDeps struct {
	client   *testutil.FakeClient
	profiles *testutil.MockProfileService
	projects *testutil.MockProjectService
	messages *testutil.MockMessageService
}

type testServer struct {
	handler  http.Handler
	registry *auth.Registry
	recorder *testutil.SpyRecorder
}

// newTestServer mounts every route the way main does. A nil client leaves
// the provider unconfigured.
func newTestServer(t *testing.T, deps testDeps) *testServer {
	t.Helper()
	if deps.profiles == nil {
		deps.profiles = &testutil.MockProfileService{}
	}
	if deps.projects == nil {
		deps.projects = &testutil.MockProjectService{}
	}
	if deps.messages == nil {
		deps.messages = &testutil.MockMessageService{}
	}

	var factory auth.ClientFactory
	if deps.client != nil {
		client := deps.client
		factory = func() provider.Client { return client }
	}
	recorder := &testutil.SpyRecorder{}
	registry := auth.NewRegistry(auth.RegistryConfig{
		Operations: auth.OperationsConfig{
			CallbackURL: "http://localhost:8080/auth/callback",
			ResetURL:    "http://localhost:8080/auth/reset-password",
		},
		ConfigError: testConfigErr,
		IdleTimeout: time.Hour,
	}, factory, deps.profiles, recorder)
	t.Cleanup(registry.Close)

	sanitizer := security.NewSanitizer()
	authHandler := NewAuthHandler(time.Second)
	projectHandler := NewProjectHandler(deps.projects, sanitizer)
	messageHandler := NewMessageHandler(deps.messages, sanitizer)
	profileHandler := NewProfileHandler(deps.profiles, sanitizer)
	dashboardHandler := NewDashboardHandler(deps.projects, deps.messages)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Visitor(registry, middleware.VisitorConfig{MaxAge: time.Hour}))

	authGroup := app.Group("/auth")
	authGroup.Get("/session", authHandler.Session)
	authGroup.Post("/signin", authHandler.SignIn)
	authGroup.Post("/signup", authHandler.SignUp)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/signout", authHandler.SignOut)
	authGroup.Get("/oauth/:provider", authHandler.OAuth)
	authGroup.Get("/callback", authHandler.Callback)
	authGroup.Get("/reset-password", authHandler.RecoveryLanding)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	api := app.Group("/api/v1")
	api.Get("/projects", projectHandler.List)
	api.Get("/projects/:id", projectHandler.Get)
	api.Post("/contact", messageHandler.Submit)

	profile := app.Group("/profile")
	profile.Use(middleware.RequireAuth(recorder, time.Second))
	profile.Get("/me", profileHandler.GetMe)
	profile.Patch("/me", profileHandler.UpdateMe)

	admin := app.Group("/admin")
	admin.Use(middleware.RequireAdmin(recorder, time.Second))
	admin.Get("/dashboard", dashboardHandler.Get)
	admin.Get("/projects", projectHandler.List)
	admin.Post("/projects", projectHandler.Create)
	admin.Get("/projects/:id", projectHandler.Get)
	admin.Patch("/projects/:id", projectHandler.Update)
	admin.Delete("/projects/:id", projectHandler.Delete)
	admin.Get("/messages", messageHandler.List)
	admin.Delete("/messages/:id", messageHandler.Delete)

	return &testServer{handler: app, registry: registry, recorder: recorder}
}

func (s *testServer) browser(t *testing.T) *testutil.HTTPTestClient {
	return testutil.NewHTTPTestClient(t, s.handler)
}

// signedInAs gives the fake provider a current session whose profile has role.
func signedInAs(deps *testDeps, email, role string) *models.Session {
	if deps.client == nil {
		deps.client = testutil.NewFakeClient()
	}
	if deps.profiles == nil {
		deps.profiles = &testutil.MockProfileService{}
	}
	s := testutil.Session(email)
	deps.client.SetSession(s)
	deps.profiles.On("GetRole", mock.Anything, s.Identity.ID).Return(role, nil)
	return s
}
