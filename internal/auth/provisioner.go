package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dimitrije/portfolio-api/internal/metrics"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/google/uuid"
)

const msgProfileCreateFailed = "Failed to create user profile"

type ProfileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, id uuid.UUID, email, role string) (bool, error)
}

// Provisioner makes sure every identity that signs in has a profile.
type Provisioner struct {
	profiles ProfileStore
	notify   Notifier
	recorder metrics.Recorder
}

func NewProvisioner(profiles ProfileStore, notify Notifier, recorder metrics.Recorder) *Provisioner {
	return &Provisioner{profiles: profiles, notify: notify, recorder: recorder}
}

// Ensure creates a guest profile for identity if it has none. It reports
// whether a row was created. Failures are reported to the visitor and
// returned, but never undo the sign-in.
func (p *Provisioner) Ensure(ctx context.Context, identity *models.Identity) (bool, error) {
	existing, err := p.profiles.FindByID(ctx, identity.ID)
	if err != nil {
		slog.Error("profile lookup failed", "identity_id", identity.ID, "error", err)
		return false, fmt.Errorf("check profile: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	created, err := p.profiles.Create(ctx, identity.ID, identity.Email, models.RoleGuest)
	if err != nil {
		slog.Error("profile insert failed", "identity_id", identity.ID, "error", err)
		p.notify.Error(msgProfileCreateFailed)
		return false, fmt.Errorf("create profile: %w", err)
	}
	if created {
		slog.Info("created guest profile", "identity_id", identity.ID)
		p.recorder.ProfileProvisioned()
	}
	return created, nil
}
