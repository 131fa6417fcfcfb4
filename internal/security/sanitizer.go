// Package security cleans user-supplied text before it is stored.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer interface {
	// PlainText strips all markup and returns trimmed text.
	PlainText(s string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() Sanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) PlainText(in string) string {
	if in == "" {
		return ""
	}
	// StrictPolicy escapes entities; stored text is not HTML
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
