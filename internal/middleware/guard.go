package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/dimitrije/portfolio-api/internal/auth"
	"github.com/dimitrije/portfolio-api/internal/metrics"
	"github.com/m1z23r/drift/pkg/drift"
)

const msgStillLoading = "Checking your session, please retry."

// Guard protects routes behind a signed-in visitor, and an admin one when
// requireAdmin is set. It waits up to wait for the visitor's first session
// check before deciding.
func Guard(requireAdmin bool, recorder metrics.Recorder, wait time.Duration) drift.HandlerFunc {
	return func(c *drift.Context) {
		v := GetVisitor(c)
		if v == nil {
			c.InternalServerError("visitor not initialised")
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
		_ = v.Store.WaitReady(ctx)
		cancel()

		state := v.Store.State()
		verdict := auth.Evaluate(state, requireAdmin)
		recorder.GuardVerdict(verdict.String())

		switch verdict {
		case auth.Render:
			c.Next()
		case auth.ConfigError:
			_ = c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error":   state.Error,
				"verdict": verdict.String(),
			})
			c.Abort()
		case auth.Loading:
			c.Response.Header().Set("Retry-After", "1")
			_ = c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error":   msgStillLoading,
				"verdict": verdict.String(),
			})
			c.Abort()
		default:
			http.Redirect(c.Response, c.Request, verdict.Location(), http.StatusFound)
			c.Abort()
		}
	}
}

func RequireAuth(recorder metrics.Recorder, wait time.Duration) drift.HandlerFunc {
	return Guard(false, recorder, wait)
}

func RequireAdmin(recorder metrics.Recorder, wait time.Duration) drift.HandlerFunc {
	return Guard(true, recorder, wait)
}
