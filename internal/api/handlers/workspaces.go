package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hugh/team-hub/internal/api/dto"
	"github.com/hugh/team-hub/internal/api/middleware"
	"github.com/hugh/team-hub/internal/api/validation"
	"github.com/hugh/team-hub/internal/database/models"
	"github.com/hugh/team-hub/internal/workspace"
)

type WorkspaceHandler struct {
	workspaces *workspace.Service
}

func NewWorkspaceHandler(workspaces *workspace.Service) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r CreateWorkspaceRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if !validation.MaxLen(r.Name, 100) {
		errors["name"] = "Name must be at most 100 characters"
	}
	if !validation.MaxLen(r.Description, 500) {
		errors["description"] = "Description must be at most 500 characters"
	}
	return errors
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

type WorkspaceResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     uint   `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
}

type WorkspaceDetailResponse struct {
	WorkspaceResponse
	Members []workspace.MemberDetail `json:"members"`
}

func workspaceToResponse(w *models.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		OwnerID:     w.OwnerID,
		CreatedAt:   w.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	workspaces, err := h.workspaces.List(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list workspaces"})
		return
	}

	response := make([]WorkspaceResponse, len(workspaces))
	for i := range workspaces {
		response[i] = workspaceToResponse(&workspaces[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/workspaces
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	created, err := h.workspaces.Create(r.Context(), userID, workspace.CreateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create workspace"})
		return
	}

	writeJSON(w, http.StatusCreated, workspaceToResponse(created))
}

// Get handles GET /api/workspaces/{id}
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	workspaceID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid workspace ID"})
		return
	}

	ws, members, err := h.workspaces.Get(r.Context(), userID, workspaceID)
	if err != nil {
		switch err {
		case workspace.ErrWorkspaceNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Workspace not found"})
		case workspace.ErrForbidden:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this workspace"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get workspace"})
		}
		return
	}

	writeJSON(w, http.StatusOK, WorkspaceDetailResponse{
		WorkspaceResponse: workspaceToResponse(ws),
		Members:           members,
	})
}

// Update handles PATCH /api/workspaces/{id}
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	workspaceID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid workspace ID"})
		return
	}

	var req UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	updated, err := h.workspaces.Update(r.Context(), userID, workspaceID, workspace.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch err {
		case workspace.ErrWorkspaceNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Workspace not found"})
		case workspace.ErrForbidden:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only workspace owner can update"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update workspace"})
		}
		return
	}

	writeJSON(w, http.StatusOK, workspaceToResponse(updated))
}

// Delete handles DELETE /api/workspaces/{id}
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	workspaceID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid workspace ID"})
		return
	}

	if err := h.workspaces.Delete(r.Context(), userID, workspaceID); err != nil {
		switch err {
		case workspace.ErrWorkspaceNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Workspace not found"})
		case workspace.ErrForbidden:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only workspace owner can delete"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete workspace"})
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /api/workspaces/{id}/members
func (h *WorkspaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	workspaceID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid workspace ID"})
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"user_id": "User ID is required"}})
		return
	}

	role := models.MemberRole(req.Role)
	if role == "" {
		role = models.MemberRoleMember
	}
	switch role {
	case models.MemberRoleAdmin, models.MemberRoleMember, models.MemberRoleViewer:
	default:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"role": "Invalid role"}})
		return
	}

	member, err := h.workspaces.AddMember(r.Context(), userID, workspaceID, req.UserID, role)
	if err != nil {
		switch err {
		case workspace.ErrWorkspaceNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Workspace not found"})
		case workspace.ErrForbidden:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only admins can add members"})
		case workspace.ErrUserNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		case workspace.ErrAlreadyMember:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "User is already a member"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to add member"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

// RemoveMember handles DELETE /api/workspaces/{id}/members/{userID}
func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	workspaceID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid workspace ID"})
		return
	}
	targetID, ok := urlID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if err := h.workspaces.RemoveMember(r.Context(), actorID, workspaceID, targetID); err != nil {
		switch err {
		case workspace.ErrWorkspaceNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Workspace not found"})
		case workspace.ErrForbidden:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to remove this member"})
		case workspace.ErrOwnerRemoval:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Cannot remove workspace owner"})
		case workspace.ErrMemberNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Member not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to remove member"})
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
