package liveops

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dorozco/marketpulse-backend/pkg/db/models"
	"github.com/dorozco/marketpulse-backend/pkg/enums"
)

func setupSourceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  last_active_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  total_cents INTEGER,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(`DELETE FROM users`).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, subtotal int64, total *int64, created time.Time) {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Status:        status,
		SubtotalCents: subtotal,
		TotalCents:    total,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(order).Error)
}

func seedUser(t *testing.T, db *gorm.DB, lastActive *time.Time) {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		LastActiveAt: lastActive,
	}
	require.NoError(t, db.Create(user).Error)
}

func int64Ptr(v int64) *int64 { return &v }

func TestQuerySource_TodayBoundaryUsesLocalMidnight(t *testing.T) {
	db := setupSourceTestDB(t)
	source, err := NewQuerySource(db, 15*time.Minute)
	require.NoError(t, err)

	zone := time.FixedZone("UTC-6", -6*60*60)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, zone)
	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, zone)

	seedOrder(t, db, enums.OrderStatusPending, 1000, nil, midnight.Add(-time.Second))
	seedOrder(t, db, enums.OrderStatusPending, 2000, nil, midnight.Add(time.Second))
	seedOrder(t, db, enums.OrderStatusDelivered, 3000, nil, now.Add(-time.Hour))

	snapshot, err := source.Snapshot(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), snapshot.OrdersToday)
	require.Equal(t, now, snapshot.Timestamp)
}

func TestQuerySource_RevenuePrefersGrandTotalWithSubtotalFallback(t *testing.T) {
	db := setupSourceTestDB(t)
	source, err := NewQuerySource(db, 15*time.Minute)
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	// grand total wins when present, subtotal covers legacy rows with NULL
	seedOrder(t, db, enums.OrderStatusDelivered, 5000, int64Ptr(5500), now.Add(-time.Hour))
	seedOrder(t, db, enums.OrderStatusProcessing, 2550, nil, now.Add(-2*time.Hour))
	// cancelled orders never count toward revenue
	seedOrder(t, db, enums.OrderStatusCancelled, 9999, int64Ptr(9999), now.Add(-time.Hour))

	snapshot, err := source.Snapshot(context.Background(), now)
	require.NoError(t, err)
	require.True(t, snapshot.RevenueToday.Equal(decimal.New(8050, -2)),
		"expected 80.50, got %s", snapshot.RevenueToday)
}

func TestQuerySource_RevenueZeroWhenNoOrders(t *testing.T) {
	db := setupSourceTestDB(t)
	source, err := NewQuerySource(db, 15*time.Minute)
	require.NoError(t, err)

	snapshot, err := source.Snapshot(context.Background(), time.Now())
	require.NoError(t, err)
	require.True(t, snapshot.RevenueToday.IsZero())
	require.Zero(t, snapshot.OrdersToday)
	require.Zero(t, snapshot.PendingOrders)
	require.Zero(t, snapshot.ActiveUsers)
}

func TestQuerySource_PendingCountsInFlightStatusesOnly(t *testing.T) {
	db := setupSourceTestDB(t)
	source, err := NewQuerySource(db, 15*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	old := now.Add(-72 * time.Hour)

	// pending and processing count regardless of age
	seedOrder(t, db, enums.OrderStatusPending, 1000, nil, old)
	seedOrder(t, db, enums.OrderStatusProcessing, 1000, nil, now.Add(-time.Minute))
	seedOrder(t, db, enums.OrderStatusShipped, 1000, nil, now.Add(-time.Minute))
	seedOrder(t, db, enums.OrderStatusDelivered, 1000, nil, now.Add(-time.Minute))
	seedOrder(t, db, enums.OrderStatusCancelled, 1000, nil, now.Add(-time.Minute))

	snapshot, err := source.Snapshot(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), snapshot.PendingOrders)
}

func TestQuerySource_ActiveUsersWithinWindow(t *testing.T) {
	db := setupSourceTestDB(t)
	source, err := NewQuerySource(db, 15*time.Minute)
	require.NoError(t, err)

	now := time.Now()
	recent := now.Add(-5 * time.Minute)
	stale := now.Add(-20 * time.Minute)

	seedUser(t, db, &recent)
	seedUser(t, db, &stale)
	seedUser(t, db, nil)

	snapshot, err := source.Snapshot(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(1), snapshot.ActiveUsers)
}
