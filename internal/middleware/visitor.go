package middleware

import (
	"net/http"
	"time"

	"github.com/dimitrije/portfolio-api/internal/auth"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	VisitorKey        = "visitor"
	VisitorCookieName = "portfolio_visitor"
)

type VisitorConfig struct {
	Secure bool
	// MaxAge of the visitor cookie. The server side forgets idle visitors sooner.
	MaxAge time.Duration
	// RefreshWithin refreshes sessions that expire within this window.
	RefreshWithin time.Duration
}

// visitorSlot holds the request's visitor, created on first use.
type visitorSlot struct {
	registry *auth.Registry
	cfg      VisitorConfig
	visitor  *auth.Visitor
}

// Visitor attaches the caller's auth state to the request. A missing or
// evicted cookie gets a new visitor only once a handler asks for one, so
// cookieless traffic on public routes holds no server state.
func Visitor(registry *auth.Registry, cfg VisitorConfig) drift.HandlerFunc {
	return func(c *drift.Context) {
		slot := &visitorSlot{registry: registry, cfg: cfg}
		if cookie, err := c.Request.Cookie(VisitorCookieName); err == nil && cookie.Value != "" {
			if v, ok := registry.Get(cookie.Value); ok {
				slot.visitor = v
			}
		}

		if slot.visitor != nil && cfg.RefreshWithin > 0 {
			slot.visitor.Ops.KeepAlive(c.Request.Context(), time.Now(), cfg.RefreshWithin)
		}

		c.Set(VisitorKey, slot)
		c.Next()
	}
}

func slotOf(c *drift.Context) *visitorSlot {
	if v, ok := c.Get(VisitorKey); ok {
		if slot, ok := v.(*visitorSlot); ok {
			return slot
		}
	}
	return nil
}

// GetVisitor returns the request's visitor, creating it and issuing its
// cookie when the caller has none yet. It must run before the response is written.
func GetVisitor(c *drift.Context) *auth.Visitor {
	slot := slotOf(c)
	if slot == nil {
		return nil
	}
	if slot.visitor == nil {
		slot.visitor = slot.registry.Create()
		http.SetCookie(c.Response, &http.Cookie{
			Name:     VisitorCookieName,
			Value:    slot.visitor.ID,
			Path:     "/",
			MaxAge:   int(slot.cfg.MaxAge.Seconds()),
			HttpOnly: true,
			Secure:   slot.cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return slot.visitor
}

// PeekVisitor returns the request's visitor without creating one.
func PeekVisitor(c *drift.Context) *auth.Visitor {
	if slot := slotOf(c); slot != nil {
		return slot.visitor
	}
	return nil
}
