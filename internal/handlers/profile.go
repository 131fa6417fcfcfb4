package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dimitrije/portfolio-api/internal/middleware"
	"github.com/dimitrije/portfolio-api/internal/security"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	msgProfileUpdated    = "Profile updated successfully!"
	msgProfileUpdateFail = "Failed to update profile"
)

type ProfileHandler struct {
	profiles  ProfileServiceInterface
	sanitizer security.Sanitizer
}

func NewProfileHandler(profiles ProfileServiceInterface, sanitizer security.Sanitizer) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, sanitizer: sanitizer}
}

// GetMe and UpdateMe run behind the auth guard, so the visitor is signed in.
func (h *ProfileHandler) GetMe(c *drift.Context) {
	identity := middleware.GetVisitor(c).Store.State().Identity
	if identity == nil {
		respondError(c, http.StatusUnauthorized, msgSessionMissing)
		return
	}

	profile, err := h.profiles.FindByID(c.Request.Context(), identity.ID)
	if err != nil {
		slog.Error("load profile", "identity_id", identity.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile == nil {
		respondError(c, http.StatusNotFound, "profile not found")
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateMe(c *drift.Context) {
	identity := middleware.GetVisitor(c).Store.State().Identity
	if identity == nil {
		respondError(c, http.StatusUnauthorized, msgSessionMissing)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	first := h.sanitizer.PlainText(req.FirstName)
	last := h.sanitizer.PlainText(req.LastName)
	if first == "" {
		respondError(c, http.StatusBadRequest, "First name is required")
		return
	}
	if last == "" {
		respondError(c, http.StatusBadRequest, "Last name is required")
		return
	}

	profile, err := h.profiles.UpdateName(c.Request.Context(), identity.ID, &first, &last)
	if err != nil {
		slog.Error("update profile", "identity_id", identity.ID, "error", err)
		notifier(c).Error(msgProfileUpdateFail)
		respondError(c, http.StatusInternalServerError, msgProfileUpdateFail)
		return
	}

	notifier(c).Success(msgProfileUpdated)
	respond(c, http.StatusOK, profile)
}
