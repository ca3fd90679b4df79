package models

type Comment struct {
	Base
	TaskID  uint   `gorm:"not null;index" json:"task_id"`
	UserID  uint   `gorm:"not null" json:"user_id"` // immutable authorship
	Content string `gorm:"not null" json:"content"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
