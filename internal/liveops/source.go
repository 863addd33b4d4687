package liveops

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dorozco/marketpulse-backend/pkg/db/models"
	"github.com/dorozco/marketpulse-backend/pkg/enums"
)

const defaultActivityWindow = 15 * time.Minute

// QuerySource computes snapshots from the orders and users tables.
type QuerySource struct {
	db             *gorm.DB
	activityWindow time.Duration
}

// NewQuerySource builds a snapshot source bound to the provided database.
func NewQuerySource(db *gorm.DB, activityWindow time.Duration) (*QuerySource, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if activityWindow <= 0 {
		activityWindow = defaultActivityWindow
	}
	return &QuerySource{db: db, activityWindow: activityWindow}, nil
}

// Snapshot assembles the operational snapshot as of now. "Today" is bounded
// by the clock's local midnight, so an order created at 23:59:59 counts for
// that day and one created at 00:00:01 counts for the next.
func (s *QuerySource) Snapshot(ctx context.Context, now time.Time) (MetricSnapshot, error) {
	dayStart := startOfDay(now)

	ordersToday, err := s.ordersCreatedSince(ctx, dayStart, now)
	if err != nil {
		return MetricSnapshot{}, fmt.Errorf("orders today: %w", err)
	}

	revenueToday, err := s.revenueSince(ctx, dayStart, now)
	if err != nil {
		return MetricSnapshot{}, fmt.Errorf("revenue today: %w", err)
	}

	activeUsers, err := s.activeUsers(ctx, now)
	if err != nil {
		return MetricSnapshot{}, fmt.Errorf("active users: %w", err)
	}

	pendingOrders, err := s.pendingOrders(ctx)
	if err != nil {
		return MetricSnapshot{}, fmt.Errorf("pending orders: %w", err)
	}

	return MetricSnapshot{
		Timestamp:     now,
		ActiveUsers:   activeUsers,
		OrdersToday:   ordersToday,
		RevenueToday:  revenueToday,
		PendingOrders: pendingOrders,
	}, nil
}

func (s *QuerySource) ordersCreatedSince(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status <> ?", enums.OrderStatusCancelled).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (s *QuerySource) revenueSince(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var cents int64
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(COALESCE(total_cents, subtotal_cents)), 0)").
		Where("status <> ?", enums.OrderStatusCancelled).
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&cents).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.New(cents, -2), nil
}

func (s *QuerySource) activeUsers(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("last_active_at >= ?", now.Add(-s.activityWindow)).
		Count(&count).Error
	return count, err
}

func (s *QuerySource) pendingOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status IN ?", enums.InFlightOrderStatuses).
		Count(&count).Error
	return count, err
}

func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
