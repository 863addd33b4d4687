package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dorozco/marketpulse-backend/pkg/db/models"
	"github.com/dorozco/marketpulse-backend/pkg/enums"
)

// LineItemRow is one sold line item joined to its parent order, the unit the
// aggregation pass consumes.
type LineItemRow struct {
	OrderID        uuid.UUID  `gorm:"column:order_id"`
	ProductID      *uuid.UUID `gorm:"column:product_id"`
	Name           string     `gorm:"column:name"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents"`
	Qty            int64      `gorm:"column:qty"`
	OrderCreatedAt time.Time  `gorm:"column:order_created_at"`
}

// Repository exposes the reads the aggregation engine needs.
type Repository interface {
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	LineItems(ctx context.Context, categoryID uuid.UUID, window Window) ([]LineItemRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) LineItems(ctx context.Context, categoryID uuid.UUID, window Window) ([]LineItemRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Select("order_line_items.order_id, order_line_items.product_id, order_line_items.name, order_line_items.unit_price_cents, order_line_items.qty, orders.created_at AS order_created_at").
		Joins("JOIN orders ON orders.id = order_line_items.order_id").
		Where("orders.status <> ?", enums.OrderStatusCancelled).
		Where("order_line_items.category_id = ?", categoryID).
		Order("orders.created_at ASC, order_line_items.created_at ASC")

	if !window.Start.IsZero() {
		query = query.Where("orders.created_at >= ?", window.Start)
	}
	if !window.End.IsZero() {
		query = query.Where("orders.created_at < ?", window.End)
	}

	var rows []LineItemRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
