package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	SiteURL  string
	LogLevel string

	// DatabaseURL and JWTSecret together make up the auth provider configuration.
	// Either one missing puts every visitor store into the unconfigured state.
	DatabaseURL string
	JWTSecret   string

	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	AutoConfirm        bool
	VisitorIdleTimeout time.Duration
	MaxVisitors        int

	GitHub OAuthConfig
	GitLab OAuthConfig
	Google OAuthConfig

	SMTP SMTPConfig

	RateLimit RateLimitConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type RateLimitConfig struct {
	AuthPerMinute    float64
	AuthBurst        int
	ContactPerMinute float64
	ContactBurst     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	siteURL := strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/")

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		SiteURL:  siteURL,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", time.Hour),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),

		AutoConfirm:        getBool("AUTH_AUTOCONFIRM", false),
		VisitorIdleTimeout: getDuration("VISITOR_IDLE_TIMEOUT", 2*time.Hour),
		MaxVisitors:        getInt("VISITOR_MAX", 10000),

		GitHub: oauthFromEnv("GITHUB", siteURL),
		GitLab: oauthFromEnv("GITLAB", siteURL),
		Google: oauthFromEnv("GOOGLE", siteURL),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},

		RateLimit: RateLimitConfig{
			AuthPerMinute:    getFloat("RATE_LIMIT_AUTH_PER_MINUTE", 10),
			AuthBurst:        getInt("RATE_LIMIT_AUTH_BURST", 5),
			ContactPerMinute: getFloat("RATE_LIMIT_CONTACT_PER_MINUTE", 3),
			ContactBurst:     getInt("RATE_LIMIT_CONTACT_BURST", 3),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProviderConfigured reports whether both the service endpoint and the service key are set.
func (c *Config) ProviderConfigured() bool {
	return len(c.MissingProvider()) == 0
}

// MissingProvider lists the provider variables that are not set.
func (c *Config) MissingProvider() []string {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	return missing
}

// CallbackURL is where OAuth providers and confirmation emails send the browser back to.
func (c *Config) CallbackURL() string {
	return c.SiteURL + "/auth/callback"
}

// ResetPasswordURL is the landing page linked from password recovery emails.
func (c *Config) ResetPasswordURL() string {
	return c.SiteURL + "/auth/reset-password"
}

func oauthFromEnv(prefix, siteURL string) OAuthConfig {
	return OAuthConfig{
		ClientID:     getEnv(prefix+"_CLIENT_ID", ""),
		ClientSecret: getEnv(prefix+"_CLIENT_SECRET", ""),
		RedirectURL:  getEnv(prefix+"_REDIRECT_URL", siteURL+"/auth/callback"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}
