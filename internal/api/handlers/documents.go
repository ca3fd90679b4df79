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

type DocumentHandler struct {
	projects *project.Service
}

func NewDocumentHandler(projects *project.Service) *DocumentHandler {
	return &DocumentHandler{projects: projects}
}

type CreateDocumentRequest struct {
	ProjectID uint   `json:"project_id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
}

func (r CreateDocumentRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.ProjectID == 0 {
		errors["project_id"] = "Project ID is required"
	}
	if r.Title == "" {
		errors["title"] = "Title is required"
	} else if !validation.MaxLen(r.Title, 200) {
		errors["title"] = "Title must be at most 200 characters"
	}
	return errors
}

type UpdateDocumentRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type DocumentResponse struct {
	ID          uint   `json:"id"`
	ProjectID   uint   `json:"project_id"`
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	CreatedBy   uint   `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	CreatorName string `json:"creator_name,omitempty"`
}

func documentToResponse(d *models.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}
	if d.Creator != nil {
		resp.CreatorName = d.Creator.DisplayName
	}
	return resp
}

func writeDocumentError(w http.ResponseWriter, err error) {
	switch err {
	case project.ErrDocumentNotFound:
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Document not found"})
	case project.ErrForbidden:
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this document"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Document operation failed"})
	}
}

// List handles GET /api/documents?project_id=
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID := queryID(r, "project_id")
	if projectID == 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Project ID is required"})
		return
	}

	docs, err := h.projects.ListDocuments(r.Context(), userID, projectID)
	if err != nil {
		if err == project.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this project's documents"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list documents"})
		return
	}

	response := make([]DocumentResponse, len(docs))
	for i := range docs {
		response[i] = documentToResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/documents
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	doc, err := h.projects.CreateDocument(r.Context(), userID, project.DocumentCreateInput{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		if err == project.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to create documents in this project"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create document"})
		return
	}

	writeJSON(w, http.StatusCreated, documentToResponse(doc))
}

// Get handles GET /api/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	documentID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid document ID"})
		return
	}

	doc, err := h.projects.GetDocument(r.Context(), userID, documentID)
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// Update handles PATCH /api/documents/{id}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	documentID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid document ID"})
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	doc, err := h.projects.UpdateDocument(r.Context(), userID, documentID, project.DocumentUpdateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// Delete handles DELETE /api/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	documentID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid document ID"})
		return
	}

	if err := h.projects.DeleteDocument(r.Context(), userID, documentID); err != nil {
		writeDocumentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
