package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/services"
	"github.com/google/uuid"
)

type RoleLookup interface {
	GetRole(ctx context.Context, id uuid.UUID) (string, error)
}

// RoleResolver decides whether an identity is an administrator. It fails
// closed: any lookup error, a missing profile included, means not admin.
type RoleResolver struct {
	profiles RoleLookup
}

func NewRoleResolver(profiles RoleLookup) *RoleResolver {
	return &RoleResolver{profiles: profiles}
}

func (r *RoleResolver) IsAdmin(ctx context.Context, id uuid.UUID) bool {
	role, err := r.profiles.GetRole(ctx, id)
	if errors.Is(err, services.ErrProfileNotFound) {
		slog.Warn("no profile for identity, treating as non-admin", "identity_id", id)
		return false
	}
	if err != nil {
		slog.Warn("role lookup failed, treating as non-admin", "identity_id", id, "error", err)
		return false
	}
	return role == models.RoleAdmin
}
