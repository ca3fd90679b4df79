// Package board implements the task board: task CRUD with positional
// ordering inside a (project, status) lane, drag-and-drop repositioning, and
// the comments attached to tasks.
//
// Positions are append-only per lane: creation takes max+1, deletions leave
// gaps, and repositioning writes the caller's placement verbatim with no
// renumbering of siblings. Two tasks may end up sharing a position; the read
// path orders by position with id as the stable tie-break.
package board

import (
	"context"
	"errors"
	"time"

	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("not authorized")
)

type Service struct {
	db     *gorm.DB
	access *access.Resolver
}

func NewService(db *gorm.DB, resolver *access.Resolver) *Service {
	return &Service{db: db, access: resolver}
}

type CreateTaskInput struct {
	ProjectID   uint
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  *uint
	DueDate     *time.Time
}

// UpdateTaskInput fields are optional; nil means the field was not supplied
// and stays untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *uint
	DueDate     *time.Time
}

// CreateTask appends the task to its lane: position is one past the highest
// existing position among tasks with the same project and status, starting
// at 1 for an empty lane.
func (s *Service) CreateTask(ctx context.Context, userID uint, input CreateTaskInput) (*models.Task, error) {
	ok, err := s.access.CanAccessProject(ctx, userID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	var maxPosition int
	row := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("project_id = ? AND status = ?", input.ProjectID, status).
		Select("COALESCE(MAX(position), 0)").
		Row()
	if err := row.Scan(&maxPosition); err != nil {
		return nil, err
	}

	task := models.Task{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		CreatedBy:   userID,
		DueDate:     input.DueDate,
		Position:    maxPosition + 1,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the tasks of one project, or of every accessible project
// when projectID is zero, ordered by position with id breaking ties.
func (s *Service) ListTasks(ctx context.Context, userID uint, projectID uint) ([]models.Task, error) {
	query := s.db.WithContext(ctx).Model(&models.Task{}).
		Preload("Assignee").
		Preload("Creator")

	if projectID != 0 {
		ok, err := s.access.CanAccessProject(ctx, userID, projectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
		query = query.Where("project_id = ?", projectID)
	} else {
		workspaceIDs, err := s.access.AccessibleWorkspaceIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(workspaceIDs) == 0 {
			return []models.Task{}, nil
		}
		var projectIDs []uint
		if err := s.db.WithContext(ctx).Model(&models.Project{}).
			Where("workspace_id IN ?", workspaceIDs).
			Pluck("id", &projectIDs).Error; err != nil {
			return nil, err
		}
		if len(projectIDs) == 0 {
			return []models.Task{}, nil
		}
		query = query.Where("project_id IN ?", projectIDs)
	}

	var tasks []models.Task
	if err := query.Order("position, id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask checks existence before access so callers get 404 for a missing
// task and 403 for an existing but inaccessible one.
func (s *Service) GetTask(ctx context.Context, userID, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	ok, err := s.access.CanAccessProject(ctx, userID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return &task, nil
}

func (s *Service) UpdateTask(ctx context.Context, userID, taskID uint, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.AssigneeID != nil {
		updates["assignee_id"] = *input.AssigneeID
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return task, nil
}

// Reposition overwrites status and position with the caller-supplied values.
// There is no range validation and no shifting of siblings: the client owns
// the board layout and resends it after a drag. Duplicate positions are
// accepted.
func (s *Service) Reposition(ctx context.Context, userID, taskID uint, status models.TaskStatus, position int) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":   status,
		"position": position,
	}
	if err := s.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task and its comments in one transaction.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID uint) error {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, task.ID).Error
	})
}

// ListComments returns a task's comments oldest first. Any workspace member
// may read them.
func (s *Service) ListComments(ctx context.Context, userID, taskID uint) ([]models.Comment, error) {
	ok, err := s.access.CanAccessTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment lets any workspace member comment on an accessible task.
func (s *Service) CreateComment(ctx context.Context, userID, taskID uint, content string) (*models.Comment, error) {
	ok, err := s.access.CanAccessTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	comment := models.Comment{
		TaskID:  taskID,
		UserID:  userID,
		Content: content,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment is author-only: membership alone does not grant edit rights
// on someone else's comment.
func (s *Service) UpdateComment(ctx context.Context, userID, commentID uint, content string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(&comment).Update("content", content).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment is author-only.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID uint) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error
}
