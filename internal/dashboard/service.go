// Package dashboard aggregates task statistics over the set of workspaces a
// user can access. All counts within one call share a single time snapshot
// so "overdue" and "due soon" are internally consistent.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/database/models"
	"gorm.io/gorm"
)

var ErrForbidden = errors.New("not authorized")

const dueSoonWindow = 7 * 24 * time.Hour

type TaskStats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Review     int `json:"review"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}

type PriorityStats struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Urgent int `json:"urgent"`
}

type Activity struct {
	TaskID    uint              `json:"task_id"`
	TaskTitle string            `json:"task_title"`
	Status    models.TaskStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

type WorkspaceStats struct {
	WorkspaceID    uint          `json:"workspace_id"`
	WorkspaceName  string        `json:"workspace_name"`
	TotalProjects  int           `json:"total_projects"`
	TotalTasks     int           `json:"total_tasks"`
	TaskStats      TaskStats     `json:"task_stats"`
	PriorityStats  PriorityStats `json:"priority_stats"`
	RecentActivity []Activity    `json:"recent_activity"`
}

type Stats struct {
	TotalWorkspaces int              `json:"total_workspaces"`
	TotalProjects   int              `json:"total_projects"`
	TotalTasks      int              `json:"total_tasks"`
	MyTasks         int              `json:"my_tasks"`
	OverdueTasks    int              `json:"overdue_tasks"`
	TasksDueSoon    int              `json:"tasks_due_soon"`
	TaskStats       TaskStats        `json:"task_stats"`
	Workspaces      []WorkspaceStats `json:"workspaces"`
}

type Service struct {
	db     *gorm.DB
	access *access.Resolver
}

func NewService(db *gorm.DB, resolver *access.Resolver) *Service {
	return &Service{db: db, access: resolver}
}

// Stats computes the global dashboard for a user: totals across every
// accessible workspace plus a per-workspace breakdown with the 5 most
// recently created tasks each.
func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	workspaceIDs, err := s.access.AccessibleWorkspaceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var workspaces []models.Workspace
	if len(workspaceIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", workspaceIDs).Find(&workspaces).Error; err != nil {
			return nil, err
		}
	}

	projects, tasks, err := s.loadProjectsAndTasks(ctx, workspaceIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	stats := &Stats{
		TotalWorkspaces: len(workspaces),
		TotalProjects:   len(projects),
		TotalTasks:      len(tasks),
		TaskStats:       tallyTasks(tasks, now),
		Workspaces:      make([]WorkspaceStats, 0, len(workspaces)),
	}

	for _, t := range tasks {
		if t.AssigneeID != nil && *t.AssigneeID == userID {
			stats.MyTasks++
		}
		if t.DueDate == nil || t.Status == models.TaskStatusDone {
			continue
		}
		if t.DueDate.Before(now) {
			stats.OverdueTasks++
		} else if !t.DueDate.After(now.Add(dueSoonWindow)) {
			stats.TasksDueSoon++
		}
	}

	projectsByWorkspace := make(map[uint][]uint)
	for _, p := range projects {
		projectsByWorkspace[p.WorkspaceID] = append(projectsByWorkspace[p.WorkspaceID], p.ID)
	}

	for _, w := range workspaces {
		wsProjectIDs := projectsByWorkspace[w.ID]
		wsProjects := make(map[uint]bool, len(wsProjectIDs))
		for _, id := range wsProjectIDs {
			wsProjects[id] = true
		}

		var wsTasks []models.Task
		for _, t := range tasks {
			if wsProjects[t.ProjectID] {
				wsTasks = append(wsTasks, t)
			}
		}

		stats.Workspaces = append(stats.Workspaces, workspaceBreakdown(w, len(wsProjectIDs), wsTasks, now, 5))
	}

	return stats, nil
}

// ForWorkspace computes the same breakdown scoped to one workspace, with the
// 10 most recent tasks. Access is required; a missing workspace is reported
// the same way as a denied one.
func (s *Service) ForWorkspace(ctx context.Context, userID, workspaceID uint) (*WorkspaceStats, error) {
	ok, err := s.access.CanAccessWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	var workspace models.Workspace
	if err := s.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		return nil, err
	}

	projects, tasks, err := s.loadProjectsAndTasks(ctx, []uint{workspaceID})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stats := workspaceBreakdown(workspace, len(projects), tasks, now, 10)
	return &stats, nil
}

func (s *Service) loadProjectsAndTasks(ctx context.Context, workspaceIDs []uint) ([]models.Project, []models.Task, error) {
	if len(workspaceIDs) == 0 {
		return nil, nil, nil
	}

	var projects []models.Project
	if err := s.db.WithContext(ctx).Where("workspace_id IN ?", workspaceIDs).Find(&projects).Error; err != nil {
		return nil, nil, err
	}

	projectIDs := make([]uint, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ID
	}

	var tasks []models.Task
	if len(projectIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("project_id IN ?", projectIDs).Find(&tasks).Error; err != nil {
			return nil, nil, err
		}
	}
	return projects, tasks, nil
}

func tallyTasks(tasks []models.Task, now time.Time) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusTodo:
			stats.Todo++
		case models.TaskStatusInProgress:
			stats.InProgress++
		case models.TaskStatusReview:
			stats.Review++
		case models.TaskStatusDone:
			stats.Done++
		}
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != models.TaskStatusDone {
			stats.Overdue++
		}
	}
	return stats
}

func tallyPriorities(tasks []models.Task) PriorityStats {
	var stats PriorityStats
	for _, t := range tasks {
		switch t.Priority {
		case models.TaskPriorityLow:
			stats.Low++
		case models.TaskPriorityMedium:
			stats.Medium++
		case models.TaskPriorityHigh:
			stats.High++
		case models.TaskPriorityUrgent:
			stats.Urgent++
		}
	}
	return stats
}

func workspaceBreakdown(w models.Workspace, projectCount int, tasks []models.Task, now time.Time, recentLimit int) WorkspaceStats {
	recent := make([]models.Task, len(tasks))
	copy(recent, tasks)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	activity := make([]Activity, len(recent))
	for i, t := range recent {
		activity[i] = Activity{
			TaskID:    t.ID,
			TaskTitle: t.Title,
			Status:    t.Status,
			CreatedAt: t.CreatedAt,
		}
	}

	return WorkspaceStats{
		WorkspaceID:    w.ID,
		WorkspaceName:  w.Name,
		TotalProjects:  projectCount,
		TotalTasks:     len(tasks),
		TaskStats:      tallyTasks(tasks, now),
		PriorityStats:  tallyPriorities(tasks),
		RecentActivity: activity,
	}
}
