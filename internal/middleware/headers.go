package middleware

import "github.com/m1z23r/drift/pkg/drift"

func SecurityHeaders() drift.HandlerFunc {
	return func(c *drift.Context) {
		h := c.Response.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
