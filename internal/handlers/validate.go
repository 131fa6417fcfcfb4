package handlers

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/dimitrije/portfolio-api/internal/provider"
)

// Form validation messages
const (
	msgInvalidEmail     = "Invalid email address"
	msgPasswordTooShort = "Password must be at least 6 characters"
	msgPasswordMismatch = "Passwords do not match"
	msgInvalidBody      = "invalid request body"
)

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validPassword(s string) bool {
	return len(s) >= provider.MinPasswordLength
}

// validOptionalURL accepts "" or an absolute http(s) URL.
func validOptionalURL(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// splitList turns "React, Go,,TypeScript" into [React Go TypeScript].
func splitList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}
