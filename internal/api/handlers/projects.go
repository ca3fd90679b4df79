package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hugh/team-hub/internal/api/dto"
	"github.com/hugh/team-hub/internal/api/middleware"
	"github.com/hugh/team-hub/internal/api/validation"
	"github.com/hugh/team-hub/internal/database/models"
	"github.com/hugh/team-hub/internal/project"
)

type ProjectHandler struct {
	projects *project.Service
}

func NewProjectHandler(projects *project.Service) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type CreateProjectRequest struct {
	WorkspaceID uint   `json:"workspace_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r CreateProjectRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.WorkspaceID == 0 {
		errors["workspace_id"] = "Workspace ID is required"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if !validation.MaxLen(r.Name, 100) {
		errors["name"] = "Name must be at most 100 characters"
	}
	return errors
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProjectResponse struct {
	ID          uint   `json:"id"`
	WorkspaceID uint   `json:"workspace_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func projectToResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch err {
	case project.ErrProjectNotFound:
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Project not found"})
	case project.ErrForbidden:
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this project"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Project operation failed"})
	}
}

// List handles GET /api/projects?workspace_id=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	workspaceID := queryID(r, "workspace_id")

	projects, err := h.projects.List(r.Context(), userID, workspaceID)
	if err != nil {
		if err == project.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this workspace"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list projects"})
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = projectToResponse(&projects[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	created, err := h.projects.Create(r.Context(), userID, project.CreateInput{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if err == project.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to create projects in this workspace"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create project"})
		return
	}

	writeJSON(w, http.StatusCreated, projectToResponse(created))
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid project ID"})
		return
	}

	p, err := h.projects.Get(r.Context(), userID, projectID)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectToResponse(p))
}

// Update handles PATCH /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid project ID"})
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	p, err := h.projects.Update(r.Context(), userID, projectID, project.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectToResponse(p))
}

// Delete handles DELETE /api/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid project ID"})
		return
	}

	if err := h.projects.Delete(r.Context(), userID, projectID); err != nil {
		writeProjectError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
