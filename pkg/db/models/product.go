package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null" json:"categoryId"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	PriceCents int64     `gorm:"column:price_cents;not null" json:"priceCents"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
