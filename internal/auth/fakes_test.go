package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/portfolio-api/internal/provider"
	"github.com/dimitrije/portfolio-api/internal/testutil"
)

const testConfigErr = "Authentication is not configured. Missing DATABASE_URL."

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// newTestStore starts a store over client and closes it when the test ends.
func newTestStore(t *testing.T, client provider.Client, profiles *testutil.MockProfileService, toasts *Toasts, recorder *testutil.SpyRecorder) *Store {
	t.Helper()
	store := NewStore(client, NewRoleResolver(profiles), NewProvisioner(profiles, toasts, recorder), recorder, testConfigErr)
	store.Start(context.Background())
	t.Cleanup(store.Close)
	return store
}
