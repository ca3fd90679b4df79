package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hugh/team-hub/internal/api/dto"
	"github.com/hugh/team-hub/internal/api/middleware"
	"github.com/hugh/team-hub/internal/board"
	"github.com/hugh/team-hub/internal/database/models"
)

type CommentHandler struct {
	board *board.Service
}

func NewCommentHandler(b *board.Service) *CommentHandler {
	return &CommentHandler{board: b}
}

type CreateCommentRequest struct {
	TaskID  uint   `json:"task_id"`
	Content string `json:"content"`
}

func (r CreateCommentRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.TaskID == 0 {
		errors["task_id"] = "Task ID is required"
	}
	if r.Content == "" {
		errors["content"] = "Content is required"
	}
	return errors
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID        uint   `json:"id"`
	TaskID    uint   `json:"task_id"`
	UserID    uint   `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UserName  string `json:"user_name,omitempty"`
}

func commentToResponse(c *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.User != nil {
		resp.UserName = c.User.DisplayName
	}
	return resp
}

// List handles GET /api/comments?task_id=
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID := queryID(r, "task_id")
	if taskID == 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Task ID is required"})
		return
	}

	comments, err := h.board.ListComments(r.Context(), userID, taskID)
	if err != nil {
		if err == board.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this task's comments"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list comments"})
		return
	}

	response := make([]CommentResponse, len(comments))
	for i := range comments {
		response[i] = commentToResponse(&comments[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	comment, err := h.board.CreateComment(r.Context(), userID, req.TaskID, req.Content)
	if err != nil {
		if err == board.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to comment on this task"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create comment"})
		return
	}

	writeJSON(w, http.StatusCreated, commentToResponse(comment))
}

// Update handles PATCH /api/comments/{id}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	commentID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid comment ID"})
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Content is required"})
		return
	}

	comment, err := h.board.UpdateComment(r.Context(), userID, commentID, req.Content)
	if err != nil {
		switch err {
		case board.ErrCommentNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Comment not found"})
		case board.ErrForbidden:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only comment author can edit"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update comment"})
		}
		return
	}

	writeJSON(w, http.StatusOK, commentToResponse(comment))
}

// Delete handles DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	commentID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid comment ID"})
		return
	}

	if err := h.board.DeleteComment(r.Context(), userID, commentID); err != nil {
		switch err {
		case board.ErrCommentNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Comment not found"})
		case board.ErrForbidden:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only comment author can delete"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete comment"})
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
