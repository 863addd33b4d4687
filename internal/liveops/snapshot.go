package liveops

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MetricSnapshot is one point-in-time operational metrics payload. It is
// never persisted; it only exists as the argument to a bus publish.
type MetricSnapshot struct {
	Timestamp     time.Time       `json:"timestamp"`
	ActiveUsers   int64           `json:"activeUsers"`
	OrdersToday   int64           `json:"ordersToday"`
	RevenueToday  decimal.Decimal `json:"revenueToday"`
	PendingOrders int64           `json:"pendingOrders"`
}

// Source computes a snapshot from the platform's transactional records.
type Source interface {
	Snapshot(ctx context.Context, now time.Time) (MetricSnapshot, error)
}
