package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	Base
	ProjectID   uint         `gorm:"not null;index" json:"project_id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `gorm:"default:'todo';index" json:"status"`
	Priority    TaskPriority `gorm:"default:'medium'" json:"priority"`
	AssigneeID  *uint        `gorm:"index" json:"assignee_id,omitempty"`
	CreatedBy   uint         `gorm:"not null" json:"created_by"`
	DueDate     *time.Time   `json:"due_date,omitempty"`

	// Ordering key within a (project, status) lane. Assigned monotonically at
	// creation; overwritten wholesale on reposition. Duplicates are tolerated
	// and broken by id on the read path.
	Position int `gorm:"default:0" json:"position"`

	Assignee *User     `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Creator  *User     `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Comments []Comment `gorm:"foreignKey:TaskID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
