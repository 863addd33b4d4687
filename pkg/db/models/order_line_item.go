package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures the snapshot of each item within an order.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null" json:"orderId"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid" json:"productId,omitempty"`
	CategoryID     uuid.UUID  `gorm:"column:category_id;type:uuid;not null" json:"categoryId"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null" json:"unitPriceCents"`
	Qty            int64      `gorm:"column:qty;not null" json:"qty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
