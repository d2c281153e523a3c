package entities

import (
	"time"

	"gorm.io/gorm"
)

// User is a local account. Its UID keys the remote mirror tree
// (users/{uid}/books/...).
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UID          string         `gorm:"uniqueIndex;size:64" json:"uid"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	TokenHash    string         `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
