package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
)

const defaultTopProducts = 5

// Request selects the scope and timeframe of a category report.
type Request struct {
	CategoryID string
	Preset     string
	From       string
	To         string
}

// Service computes cached category analytics reports.
type Service interface {
	CategoryAnalytics(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	repo  Repository
	cache *ReportCache
	topN  int
	now   func() time.Time
}

// NewService builds the analytics service.
func NewService(repo Repository, cache *ReportCache, topN int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("report cache required")
	}
	if topN <= 0 {
		topN = defaultTopProducts
	}
	return &service{
		repo:  repo,
		cache: cache,
		topN:  topN,
		now:   time.Now,
	}, nil
}

// CategoryAnalytics resolves the timeframe, serves from cache when the entry
// is still fresh, and otherwise recomputes and stores the report. The result
// flags whether it was served from cache and echoes the resolved window.
func (s *service) CategoryAnalytics(ctx context.Context, req Request) (*Result, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category id")
	}

	exists, err := s.repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "category lookup failed")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	now := s.now().UTC()
	window := ResolveWindow(req.Preset, req.From, req.To, now)
	key := CacheKey(categoryID, window)

	if report, ok := s.cache.Get(key, now); ok {
		return &Result{
			Report: report,
			Meta:   Meta{Cached: true, Start: window.Start, End: window.End},
		}, nil
	}

	rows, err := s.repo.LineItems(ctx, categoryID, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "analytics query failed")
	}

	report := aggregate(rows, s.topN)
	s.cache.Put(key, report, now)

	return &Result{
		Report: report,
		Meta:   Meta{Cached: false, Start: window.Start, End: window.End},
	}, nil
}

type productGroup struct {
	key     string
	name    string
	revenue decimal.Decimal
	units   int64
	seen    int
}

// aggregate folds the joined line item rows into totals, daily trend buckets
// and a bounded revenue leaderboard in one pass.
func aggregate(rows []LineItemRow, topN int) Report {
	totalRevenue := decimal.Zero
	var totalUnits int64
	orders := make(map[uuid.UUID]struct{})

	trendByDay := make(map[string]*TrendPoint)
	products := make(map[string]*productGroup)

	for _, row := range rows {
		lineRevenue := decimal.New(row.UnitPriceCents*row.Qty, -2)

		totalRevenue = totalRevenue.Add(lineRevenue)
		totalUnits += row.Qty
		orders[row.OrderID] = struct{}{}

		day := row.OrderCreatedAt.UTC().Format("2006-01-02")
		bucket, ok := trendByDay[day]
		if !ok {
			bucket = &TrendPoint{BucketDate: day, Revenue: decimal.Zero}
			trendByDay[day] = bucket
		}
		bucket.Revenue = bucket.Revenue.Add(lineRevenue)
		bucket.Units += row.Qty

		groupKey := row.Name
		if row.ProductID != nil {
			groupKey = row.ProductID.String()
		}
		group, ok := products[groupKey]
		if !ok {
			// first seen name sticks even if later rows renamed the product
			group = &productGroup{
				key:     groupKey,
				name:    row.Name,
				revenue: decimal.Zero,
				seen:    len(products),
			}
			products[groupKey] = group
		}
		group.revenue = group.revenue.Add(lineRevenue)
		group.units += row.Qty
	}

	orderCount := int64(len(orders))
	avg := decimal.Zero
	if orderCount > 0 {
		avg = totalRevenue.DivRound(decimal.NewFromInt(orderCount), 2)
	}

	trends := make([]TrendPoint, 0, len(trendByDay))
	for _, bucket := range trendByDay {
		trends = append(trends, *bucket)
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].BucketDate < trends[j].BucketDate
	})

	ranked := make([]*productGroup, 0, len(products))
	for _, group := range products {
		ranked = append(ranked, group)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].revenue.Equal(ranked[j].revenue) {
			return ranked[i].revenue.GreaterThan(ranked[j].revenue)
		}
		return ranked[i].seen < ranked[j].seen
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	top := make([]TopProduct, 0, len(ranked))
	for _, group := range ranked {
		top = append(top, TopProduct{
			ID:      group.key,
			Name:    group.name,
			Revenue: group.revenue,
			Units:   group.units,
		})
	}

	return Report{
		Totals: Totals{
			TotalRevenue:  totalRevenue,
			TotalUnits:    totalUnits,
			TotalOrders:   orderCount,
			AvgOrderValue: avg,
		},
		Trends:      trends,
		TopProducts: top,
	}
}
