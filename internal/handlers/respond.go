package handlers

import (
	"github.com/dimitrije/portfolio-api/internal/auth"
	"github.com/dimitrije/portfolio-api/internal/middleware"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

func drainNotifications(c *drift.Context) []dto.Notification {
	out := []dto.Notification{}
	v := middleware.PeekVisitor(c)
	if v == nil {
		return out
	}
	for _, n := range v.Toasts.Drain() {
		out = append(out, dto.Notification{Kind: string(n.Kind), Message: n.Message})
	}
	return out
}

func respond(c *drift.Context, status int, data interface{}) {
	_ = c.JSON(status, dto.Response{Data: data, Notifications: drainNotifications(c)})
}

func respondError(c *drift.Context, status int, msg string) {
	_ = c.JSON(status, dto.Response{Error: msg, Notifications: drainNotifications(c)})
}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}

// notifier returns the visitor's toast queue.
func notifier(c *drift.Context) auth.Notifier {
	if v := middleware.GetVisitor(c); v != nil {
		return v.Toasts
	}
	return discard{}
}
