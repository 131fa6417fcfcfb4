package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dimitrije/portfolio-api/internal/auth"
	"github.com/dimitrije/portfolio-api/internal/config"
	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/handlers"
	"github.com/dimitrije/portfolio-api/internal/logger"
	"github.com/dimitrije/portfolio-api/internal/metrics"
	portfoliomw "github.com/dimitrije/portfolio-api/internal/middleware"
	"github.com/dimitrije/portfolio-api/internal/oauth"
	"github.com/dimitrije/portfolio-api/internal/provider"
	"github.com/dimitrije/portfolio-api/internal/security"
	"github.com/dimitrije/portfolio-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// guardWait bounds how long a request waits for a fresh visitor's first session check.
const guardWait = 3 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *database.DB
	if cfg.DatabaseURL != "" {
		db, err = database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	profileService := services.NewProfileService(db)
	projectService := services.NewProjectService(db)
	messageService := services.NewMessageService(db)

	// Without both provider settings every visitor store starts in the
	// configuration error state and the guard answers 503.
	var clients auth.ClientFactory
	configErr := ""
	if cfg.ProviderConfigured() {
		jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
		emailService := services.NewEmailService(cfg.SMTP)
		backend := provider.NewBackend(
			provider.BackendConfig{SiteURL: cfg.SiteURL, AutoConfirm: cfg.AutoConfirm},
			services.NewIdentityService(db),
			services.NewTokenService(db),
			services.NewEmailTokenService(db),
			jwtService,
			emailService,
			oauth.Providers(cfg),
		)
		go backend.Run(ctx, time.Hour)

		if backend.AutoConfirm() {
			slog.Warn("email confirmation disabled, sign-ups are confirmed immediately")
		}
		clients = func() provider.Client { return backend.NewClient() }
	} else {
		configErr = fmt.Sprintf("Authentication is not configured. Missing %s.", strings.Join(cfg.MissingProvider(), ", "))
		slog.Error("auth provider not configured", "missing", cfg.MissingProvider())
	}

	registry := auth.NewRegistry(auth.RegistryConfig{
		Operations: auth.OperationsConfig{
			CallbackURL: cfg.CallbackURL(),
			ResetURL:    cfg.ResetPasswordURL(),
		},
		ConfigError: configErr,
		IdleTimeout: cfg.VisitorIdleTimeout,
		MaxVisitors: cfg.MaxVisitors,
	}, clients, profileService, collector)
	defer registry.Close()
	go registry.Run(ctx, 5*time.Minute)

	authLimiter := portfoliomw.NewRateLimiter("auth", cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)
	contactLimiter := portfoliomw.NewRateLimiter("contact", cfg.RateLimit.ContactPerMinute, cfg.RateLimit.ContactBurst)
	go authLimiter.Run(ctx, 10*time.Minute)
	go contactLimiter.Run(ctx, 10*time.Minute)

	sanitizer := security.NewSanitizer()
	authHandler := handlers.NewAuthHandler(guardWait)
	projectHandler := handlers.NewProjectHandler(projectService, sanitizer)
	messageHandler := handlers.NewMessageHandler(messageService, sanitizer)
	profileHandler := handlers.NewProfileHandler(profileService, sanitizer)
	dashboardHandler := handlers.NewDashboardHandler(projectService, messageService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.SiteURL},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(portfoliomw.SecurityHeaders())
	app.Use(portfoliomw.Visitor(registry, portfoliomw.VisitorConfig{
		Secure:        cfg.IsProduction(),
		MaxAge:        cfg.VisitorIdleTimeout,
		RefreshWithin: 5 * time.Minute,
	}))

	metricsHandler := metrics.Handler(reg)
	app.Get("/metrics", func(c *drift.Context) {
		metricsHandler.ServeHTTP(c.Response, c.Request)
	})

	authRoutes := app.Group("/auth")
	authRoutes.Get("/session", authHandler.Session)
	authRoutes.Post("/signout", authHandler.SignOut)
	authRoutes.Get("/oauth/:provider", authHandler.OAuth)
	authRoutes.Get("/callback", authHandler.Callback)
	authRoutes.Get("/reset-password", authHandler.RecoveryLanding)

	authForms := app.Group("/auth")
	authForms.Use(authLimiter.Middleware())
	authForms.Post("/signin", authHandler.SignIn)
	authForms.Post("/signup", authHandler.SignUp)
	authForms.Post("/forgot-password", authHandler.ForgotPassword)
	authForms.Post("/reset-password", authHandler.ResetPassword)

	api := app.Group("/api/v1")
	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	if db != nil {
		api.Get("/projects", projectHandler.List)
		api.Get("/projects/:id", projectHandler.Get)

		contact := api.Group("")
		contact.Use(contactLimiter.Middleware())
		contact.Post("/contact", messageHandler.Submit)
	} else {
		slog.Warn("DATABASE_URL not set, project and contact routes disabled")
	}

	profile := app.Group("/profile")
	profile.Use(portfoliomw.RequireAuth(collector, guardWait))
	profile.Get("/me", profileHandler.GetMe)
	profile.Patch("/me", profileHandler.UpdateMe)

	admin := app.Group("/admin")
	admin.Use(portfoliomw.RequireAdmin(collector, guardWait))
	admin.Get("/dashboard", dashboardHandler.Get)
	admin.Get("/projects", projectHandler.List)
	admin.Post("/projects", projectHandler.Create)
	admin.Get("/projects/:id", projectHandler.Get)
	admin.Patch("/projects/:id", projectHandler.Update)
	admin.Delete("/projects/:id", projectHandler.Delete)
	admin.Get("/messages", messageHandler.List)
	admin.Delete("/messages/:id", messageHandler.Delete)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
