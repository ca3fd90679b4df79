package models

type Project struct {
	Base
	WorkspaceID uint   `gorm:"not null;index" json:"workspace_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	Tasks     []Task     `gorm:"foreignKey:ProjectID" json:"-"`
	Documents []Document `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}
