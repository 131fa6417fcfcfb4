package services

import (
	"net/smtp"
	"testing"

	"github.com/dimitrije/portfolio-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "user@example.com",
		Password: "password",
		From:     "noreply@example.com",
	}
}

func TestEmailService_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.SMTPConfig)
		want   bool
	}{
		{"complete", func(*config.SMTPConfig) {}, true},
		{"missing host", func(c *config.SMTPConfig) { c.Host = "" }, false},
		{"missing username", func(c *config.SMTPConfig) { c.Username = "" }, false},
		{"missing password", func(c *config.SMTPConfig) { c.Password = "" }, false},
		{"missing from", func(c *config.SMTPConfig) { c.From = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSMTPConfig()
			tt.mutate(&cfg)
			assert.Equal(t, tt.want, NewEmailService(cfg).IsConfigured())
		})
	}
}

func TestEmailService_Send_NotConfiguredIsNoop(t *testing.T) {
	svc := NewEmailService(config.SMTPConfig{})
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send should not be called")
		return nil
	}

	assert.NoError(t, svc.SendConfirmation("ada@example.com", "http://x"))
}

func TestEmailService_SendPasswordReset(t *testing.T) {
	svc := NewEmailService(testSMTPConfig())

	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := svc.SendPasswordReset("ada@example.com", "http://localhost/auth/reset-password?token=abc")

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Reset your password")
	assert.Contains(t, gotMsg, "token=abc")
}
