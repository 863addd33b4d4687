package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dorozco/marketpulse-backend/pkg/enums"
	"github.com/dorozco/marketpulse-backend/pkg/types"
)

// Notification stores alert-style in-app notification payloads.
type Notification struct {
	ID        uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title     string                     `gorm:"column:title;type:text;not null" json:"title"`
	Message   string                     `gorm:"column:message;type:text;not null" json:"message"`
	Category  enums.NotificationCategory `gorm:"column:category;type:notification_category;not null" json:"category"`
	Priority  enums.NotificationPriority `gorm:"column:priority;type:notification_priority;not null;default:'low'" json:"priority"`
	Actions   types.NotificationActions  `gorm:"column:actions;type:jsonb;serializer:json" json:"actions,omitempty"`
	Metadata  types.JSONMap              `gorm:"column:metadata;type:jsonb;serializer:json" json:"metadata,omitempty"`
	ReadAt    *time.Time                 `gorm:"column:read_at;type:timestamptz" json:"readAt,omitempty"`
	CreatedAt time.Time                  `gorm:"column:created_at;type:timestamptz;default:now()" json:"createdAt"`
}

// Read reports whether the notification has been marked read. A notification
// transitions to read at most once and never back.
func (n Notification) Read() bool {
	return n.ReadAt != nil
}
