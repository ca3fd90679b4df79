package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hugh/team-hub/internal/api/dto"
	"github.com/hugh/team-hub/internal/api/middleware"
	"github.com/hugh/team-hub/internal/api/validation"
	"github.com/hugh/team-hub/internal/board"
	"github.com/hugh/team-hub/internal/database/models"
)

type TaskHandler struct {
	board *board.Service
}

func NewTaskHandler(b *board.Service) *TaskHandler {
	return &TaskHandler{board: b}
}

type CreateTaskRequest struct {
	ProjectID   uint       `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	AssigneeID  *uint      `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.ProjectID == 0 {
		errors["project_id"] = "Project ID is required"
	}
	if r.Title == "" {
		errors["title"] = "Title is required"
	} else if !validation.MaxLen(r.Title, 200) {
		errors["title"] = "Title must be at most 200 characters"
	}
	if r.Status != "" && !models.TaskStatus(r.Status).Valid() {
		errors["status"] = "Invalid status"
	}
	if r.Priority != "" && !models.TaskPriority(r.Priority).Valid() {
		errors["priority"] = "Invalid priority"
	}
	return errors
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	AssigneeID  *uint      `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type RepositionTaskRequest struct {
	Status   string `json:"status"`
	Position int    `json:"position"`
}

type TaskResponse struct {
	ID           uint       `json:"id"`
	ProjectID    uint       `json:"project_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssigneeID   *uint      `json:"assignee_id,omitempty"`
	CreatedBy    uint       `json:"created_by"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Position     int        `json:"position"`
	CreatedAt    string     `json:"created_at"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	CreatorName  string     `json:"creator_name,omitempty"`
}

func taskToResponse(t *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		DueDate:     t.DueDate,
		Position:    t.Position,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.Assignee != nil {
		resp.AssigneeName = t.Assignee.DisplayName
	}
	if t.Creator != nil {
		resp.CreatorName = t.Creator.DisplayName
	}
	return resp
}

func writeTaskError(w http.ResponseWriter, err error) {
	switch err {
	case board.ErrTaskNotFound:
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Task not found"})
	case board.ErrForbidden:
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this task"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Task operation failed"})
	}
}

// List handles GET /api/tasks?project_id=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID := queryID(r, "project_id")

	tasks, err := h.board.ListTasks(r.Context(), userID, projectID)
	if err != nil {
		if err == board.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this project"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = taskToResponse(&tasks[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	task, err := h.board.CreateTask(r.Context(), userID, board.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		if err == board.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to create tasks in this project"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create task"})
		return
	}

	writeJSON(w, http.StatusCreated, taskToResponse(task))
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid task ID"})
		return
	}

	task, err := h.board.GetTask(r.Context(), userID, taskID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// Update handles PATCH /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid task ID"})
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	input := board.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		if !status.Valid() {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"status": "Invalid status"}})
			return
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		if !priority.Valid() {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"priority": "Invalid priority"}})
			return
		}
		input.Priority = &priority
	}

	task, err := h.board.UpdateTask(r.Context(), userID, taskID, input)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// Reposition handles PATCH /api/tasks/{id}/position (drag-and-drop). The
// supplied status and position are written as-is.
func (h *TaskHandler) Reposition(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid task ID"})
		return
	}

	var req RepositionTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if !models.TaskStatus(req.Status).Valid() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"status": "Invalid status"}})
		return
	}

	task, err := h.board.Reposition(r.Context(), userID, taskID, models.TaskStatus(req.Status), req.Position)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid task ID"})
		return
	}

	if err := h.board.DeleteTask(r.Context(), userID, taskID); err != nil {
		writeTaskError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
