package models

import "time"

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
	MemberRoleViewer MemberRole = "viewer"
)

type Workspace struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"` // immutable after creation

	// Relationships
	Owner    *User             `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members  []WorkspaceMember `gorm:"foreignKey:WorkspaceID" json:"-"`
	Projects []Project         `gorm:"foreignKey:WorkspaceID" json:"-"`
}

func (Workspace) TableName() string {
	return "workspaces"
}

// WorkspaceMember links a user to a workspace with a role. The pair is
// unique; the owner may or may not have an explicit row, ownership alone
// grants full access.
type WorkspaceMember struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"not null;uniqueIndex:idx_workspace_user" json:"workspace_id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_workspace_user" json:"user_id"`
	Role        MemberRole `gorm:"default:'member'" json:"role"`
	JoinedAt    time.Time  `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (WorkspaceMember) TableName() string {
	return "workspace_members"
}
