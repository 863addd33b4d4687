package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals aggregates the revenue view of every matching line item.
type Totals struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalUnits    int64           `json:"totalUnits"`
	TotalOrders   int64           `json:"totalOrders"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
}

// TrendPoint is one calendar day bucket, truncated in UTC.
type TrendPoint struct {
	BucketDate string          `json:"bucketDate"`
	Revenue    decimal.Decimal `json:"revenue"`
	Units      int64           `json:"units"`
}

// TopProduct is one entry of the revenue leaderboard.
type TopProduct struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Units   int64           `json:"units"`
}

// Report is the immutable payload computed for one scope and window. It is
// replaced wholesale on recomputation, never mutated in place.
type Report struct {
	Totals      Totals       `json:"totals"`
	Trends      []TrendPoint `json:"trends"`
	TopProducts []TopProduct `json:"topProducts"`
}

// Meta describes how a report was served.
type Meta struct {
	Cached bool      `json:"cached"`
	Start  time.Time `json:"windowStart"`
	End    time.Time `json:"windowEnd"`
}

// Result bundles a report with its serving metadata.
type Result struct {
	Report Report `json:"report"`
	Meta   Meta   `json:"meta"`
}
