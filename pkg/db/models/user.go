package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical shopper identity.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	LastActiveAt *time.Time `gorm:"column:last_active_at" json:"lastActiveAt,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
