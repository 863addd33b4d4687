package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dorozco/marketpulse-backend/pkg/enums"
)

// Order is the transactional record the live ops pipeline aggregates over.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	Status        enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'" json:"status"`
	SubtotalCents int64             `gorm:"column:subtotal_cents;not null" json:"subtotalCents"`
	// TotalCents is the grand total including tax and shipping. Orders
	// imported before totals existed carry NULL here; revenue queries fall
	// back to the subtotal.
	TotalCents  *int64          `gorm:"column:total_cents" json:"totalCents,omitempty"`
	Items       []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CancelledAt *time.Time      `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
