package services

import (
	"fmt"
	"net/smtp"

	"github.com/dimitrije/portfolio-api/internal/config"
)

type EmailService struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, send: smtp.SendMail}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendConfirmation(to, link string) error {
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Confirm your signup</h2>
			<p>Follow this link to confirm your email address:</p>
			<p><a href="%s">Confirm your email</a></p>
		</body>
		</html>
	`, link)

	return s.Send(to, "Confirm your signup", body)
}

func (s *EmailService) SendPasswordReset(to, link string) error {
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Reset your password</h2>
			<p>Someone asked to reset the password for this account. If it was you, follow this link:</p>
			<p><a href="%s">Reset password</a></p>
			<p>If you did not ask for this you can ignore this email.</p>
		</body>
		</html>
	`, link)

	return s.Send(to, "Reset your password", body)
}
