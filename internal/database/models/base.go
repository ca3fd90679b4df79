package models

import "time"

// Base model with an autoincrement integer primary key and timestamps.
// IDs are assigned by the store and treated as opaque by everything above it.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
