package models

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
	UserRoleViewer UserRole = "viewer"
)

type User struct {
	Base
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	DisplayName  string   `gorm:"not null" json:"display_name"`
	AvatarURL    string   `json:"avatar_url,omitempty"`
	Role         UserRole `gorm:"default:'member'" json:"role"` // global role, informational only
}

func (User) TableName() string {
	return "users"
}
