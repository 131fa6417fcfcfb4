package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type DashboardHandler struct {
	projects ProjectServiceInterface
	messages MessageServiceInterface
}

func NewDashboardHandler(projects ProjectServiceInterface, messages MessageServiceInterface) *DashboardHandler {
	return &DashboardHandler{projects: projects, messages: messages}
}

func (h *DashboardHandler) Get(c *drift.Context) {
	ctx := c.Request.Context()

	projects, err := h.projects.Count(ctx)
	if err != nil {
		slog.Error("count projects", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	messages, err := h.messages.Count(ctx)
	if err != nil {
		slog.Error("count messages", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	respond(c, http.StatusOK, dto.DashboardResponse{Projects: projects, Messages: messages})
}
