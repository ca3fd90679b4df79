package models

type Document struct {
	Base
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Title     string `gorm:"not null" json:"title"`
	Content   string `json:"content,omitempty"` // opaque rich text, stored as HTML/JSON
	CreatedBy uint   `gorm:"not null" json:"created_by"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}
