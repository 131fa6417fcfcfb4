package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/security"
	"github.com/dimitrije/portfolio-api/internal/services"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	msgProjectCreated  = "Project created successfully"
	msgProjectUpdated  = "Project updated successfully"
	msgProjectDeleted  = "Project deleted successfully"
	msgProjectSaveFail = "Failed to save project"
	msgProjectLoadFail = "Failed to load projects"
	msgProjectDelFail  = "Failed to delete project"
	msgProjectNotFound = "project not found"
	msgInvalidProject  = "invalid project id"
)

type ProjectHandler struct {
	projects  ProjectServiceInterface
	sanitizer security.Sanitizer
}

func NewProjectHandler(projects ProjectServiceInterface, sanitizer security.Sanitizer) *ProjectHandler {
	return &ProjectHandler{projects: projects, sanitizer: sanitizer}
}

// List is public. ?category= narrows the list.
func (h *ProjectHandler) List(c *drift.Context) {
	category := strings.TrimSpace(c.QueryParam("category"))

	projects, err := h.projects.List(c.Request.Context(), category)
	if err != nil {
		slog.Error("list projects", "error", err)
		notifier(c).Error(msgProjectLoadFail)
		respondError(c, http.StatusInternalServerError, msgProjectLoadFail)
		return
	}
	respond(c, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c *drift.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusBadRequest, msgInvalidProject)
		return
	}

	project, err := h.projects.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(c, http.StatusNotFound, msgProjectNotFound)
		return
	}
	if err != nil {
		slog.Error("get project", "project_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to load project")
		return
	}
	respond(c, http.StatusOK, project)
}

func (h *ProjectHandler) Create(c *drift.Context) {
	project, msg := h.bind(c)
	if project == nil {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	created, err := h.projects.Create(c.Request.Context(), project)
	if err != nil {
		slog.Error("create project", "error", err)
		notifier(c).Error(msgProjectSaveFail)
		respondError(c, http.StatusInternalServerError, msgProjectSaveFail)
		return
	}

	notifier(c).Success(msgProjectCreated)
	respond(c, http.StatusCreated, created)
}

func (h *ProjectHandler) Update(c *drift.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusBadRequest, msgInvalidProject)
		return
	}

	project, msg := h.bind(c)
	if project == nil {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.projects.Update(c.Request.Context(), id, project)
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(c, http.StatusNotFound, msgProjectNotFound)
		return
	}
	if err != nil {
		slog.Error("update project", "project_id", id, "error", err)
		notifier(c).Error(msgProjectSaveFail)
		respondError(c, http.StatusInternalServerError, msgProjectSaveFail)
		return
	}

	notifier(c).Success(msgProjectUpdated)
	respond(c, http.StatusOK, updated)
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusBadRequest, msgInvalidProject)
		return
	}

	err := h.projects.Delete(c.Request.Context(), id)
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(c, http.StatusNotFound, msgProjectNotFound)
		return
	}
	if err != nil {
		slog.Error("delete project", "project_id", id, "error", err)
		notifier(c).Error(msgProjectDelFail)
		respondError(c, http.StatusInternalServerError, msgProjectDelFail)
		return
	}

	notifier(c).Success(msgProjectDeleted)
	respond(c, http.StatusOK, nil)
}

// bind reads and validates the project form. On failure it returns nil and
// the message to show.
func (h *ProjectHandler) bind(c *drift.Context) (*models.Project, string) {
	var req dto.ProjectRequest
	if err := c.BindJSON(&req); err != nil {
		return nil, msgInvalidBody
	}

	p := &models.Project{
		Title:       h.sanitizer.PlainText(req.Title),
		Description: optional(h.sanitizer.PlainText(req.Description)),
		Category:    h.sanitizer.PlainText(req.Category),
		Year:        strings.TrimSpace(req.Year),
		Image:       optional(strings.TrimSpace(req.Image)),
		TechStack:   splitList(h.sanitizer.PlainText(req.TechStack)),
		GitHubURL:   optional(strings.TrimSpace(req.GitHubURL)),
		LiveURL:     optional(strings.TrimSpace(req.LiveURL)),
	}

	switch {
	case p.Title == "":
		return nil, "Title is required"
	case p.Category == "":
		return nil, "Category is required"
	case p.Year == "":
		return nil, "Year is required"
	case !validOptionalURL(strings.TrimSpace(req.Image)):
		return nil, "Image must be a valid URL"
	case !validOptionalURL(strings.TrimSpace(req.GitHubURL)):
		return nil, "GitHub URL must be a valid URL"
	case !validOptionalURL(strings.TrimSpace(req.LiveURL)):
		return nil, "Live URL must be a valid URL"
	}
	return p, ""
}
