package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
)

type fakeRepo struct {
	categories map[uuid.UUID]bool
	rows       []LineItemRow
	queries    int
}

func (f *fakeRepo) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.categories[id], nil
}

func (f *fakeRepo) LineItems(ctx context.Context, categoryID uuid.UUID, window Window) ([]LineItemRow, error) {
	f.queries++
	return f.rows, nil
}

func newTestService(t *testing.T, repo Repository, clock func() time.Time) Service {
	t.Helper()
	svc, err := NewService(repo, NewReportCache(5*time.Minute), 5)
	require.NoError(t, err)
	if clock != nil {
		svc.(*service).now = clock
	}
	return svc
}

func TestCategoryAnalytics_MalformedIDIsValidationNotNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepo{categories: map[uuid.UUID]bool{}}, nil)

	_, err := svc.CategoryAnalytics(context.Background(), Request{CategoryID: "not-a-uuid"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCategoryAnalytics_UnknownCategoryIsNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepo{categories: map[uuid.UUID]bool{}}, nil)

	_, err := svc.CategoryAnalytics(context.Background(), Request{CategoryID: uuid.NewString()})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCategoryAnalytics_AggregationCorrectness(t *testing.T) {
	categoryID := uuid.New()
	productID := uuid.New()
	orderA := uuid.New()
	orderB := uuid.New()
	created := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	// delivered order with 2 units at $100 and processing order with 1 unit
	// at $150; cancelled orders never reach the repo output
	repo := &fakeRepo{
		categories: map[uuid.UUID]bool{categoryID: true},
		rows: []LineItemRow{
			{OrderID: orderA, ProductID: &productID, Name: "Widget", UnitPriceCents: 10000, Qty: 2, OrderCreatedAt: created},
			{OrderID: orderB, ProductID: &productID, Name: "Widget", UnitPriceCents: 15000, Qty: 1, OrderCreatedAt: created.Add(24 * time.Hour)},
		},
	}
	svc := newTestService(t, repo, nil)

	result, err := svc.CategoryAnalytics(context.Background(), Request{CategoryID: categoryID.String()})
	require.NoError(t, err)

	totals := result.Report.Totals
	require.Equal(t, int64(2), totals.TotalOrders)
	require.Equal(t, int64(3), totals.TotalUnits)
	require.True(t, totals.TotalRevenue.Equal(decimal.NewFromInt(350)), "revenue: %s", totals.TotalRevenue)
	require.True(t, totals.AvgOrderValue.Equal(decimal.NewFromInt(175)), "avg: %s", totals.AvgOrderValue)

	require.Len(t, result.Report.TopProducts, 1)
	top := result.Report.TopProducts[0]
	require.Equal(t, productID.String(), top.ID)
	require.Equal(t, "Widget", top.Name)
	require.True(t, top.Revenue.Equal(decimal.NewFromInt(350)))
	require.Equal(t, int64(3), top.Units)

	require.Len(t, result.Report.Trends, 2)
	require.Equal(t, "2026-06-10", result.Report.Trends[0].BucketDate)
	require.Equal(t, "2026-06-11", result.Report.Trends[1].BucketDate)
	require.True(t, result.Report.Trends[0].Revenue.Equal(decimal.NewFromInt(200)))
	require.True(t, result.Report.Trends[1].Revenue.Equal(decimal.NewFromInt(150)))
}

func TestCategoryAnalytics_CacheCoherence(t *testing.T) {
	categoryID := uuid.New()
	orderA := uuid.New()
	base := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	current := base

	repo := &fakeRepo{
		categories: map[uuid.UUID]bool{categoryID: true},
		rows: []LineItemRow{
			{OrderID: orderA, Name: "Widget", UnitPriceCents: 10000, Qty: 1, OrderCreatedAt: base.Add(-time.Hour)},
		},
	}
	svc := newTestService(t, repo, func() time.Time { return current })
	req := Request{CategoryID: categoryID.String(), Preset: PresetWeek}

	first, err := svc.CategoryAnalytics(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Meta.Cached)
	require.Equal(t, 1, repo.queries)

	// the preset re-resolves against now, so the key only matches while the
	// resolved window is second-identical; keep the clock still for the hit
	second, err := svc.CategoryAnalytics(context.Background(), req)
	require.NoError(t, err)
	require.True(t, second.Meta.Cached)
	require.Equal(t, first.Report, second.Report)
	require.Equal(t, 1, repo.queries, "cached call must not query")

	// past TTL the entry is stale and underlying changes become visible
	current = base.Add(6 * time.Minute)
	repo.rows = append(repo.rows, LineItemRow{
		OrderID: uuid.New(), Name: "Widget", UnitPriceCents: 5000, Qty: 1, OrderCreatedAt: base.Add(-time.Hour),
	})

	third, err := svc.CategoryAnalytics(context.Background(), req)
	require.NoError(t, err)
	require.False(t, third.Meta.Cached)
	require.Equal(t, 2, repo.queries)
	require.Equal(t, int64(2), third.Report.Totals.TotalOrders)
}

func TestCategoryAnalytics_EmptyScope(t *testing.T) {
	categoryID := uuid.New()
	repo := &fakeRepo{categories: map[uuid.UUID]bool{categoryID: true}}
	svc := newTestService(t, repo, nil)

	result, err := svc.CategoryAnalytics(context.Background(), Request{CategoryID: categoryID.String()})
	require.NoError(t, err)

	totals := result.Report.Totals
	require.Zero(t, totals.TotalOrders)
	require.Zero(t, totals.TotalUnits)
	require.True(t, totals.TotalRevenue.IsZero())
	require.True(t, totals.AvgOrderValue.IsZero())
	require.Empty(t, result.Report.Trends)
	require.Empty(t, result.Report.TopProducts)
}

func TestCategoryAnalytics_TopProductsBoundedAndOrdered(t *testing.T) {
	categoryID := uuid.New()
	created := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	rows := make([]LineItemRow, 0, 7)
	for i := 0; i < 7; i++ {
		id := uuid.New()
		rows = append(rows, LineItemRow{
			OrderID:        uuid.New(),
			ProductID:      &id,
			Name:           "Product",
			UnitPriceCents: int64((i + 1) * 1000),
			Qty:            1,
			OrderCreatedAt: created,
		})
	}
	repo := &fakeRepo{categories: map[uuid.UUID]bool{categoryID: true}, rows: rows}
	svc := newTestService(t, repo, nil)

	result, err := svc.CategoryAnalytics(context.Background(), Request{CategoryID: categoryID.String()})
	require.NoError(t, err)

	top := result.Report.TopProducts
	require.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		require.True(t, top[i-1].Revenue.GreaterThanOrEqual(top[i].Revenue),
			"leaderboard must be descending by revenue")
	}
	require.True(t, top[0].Revenue.Equal(decimal.NewFromInt(70)))
}

func TestAggregate_FirstSeenNameWins(t *testing.T) {
	productID := uuid.New()
	created := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	report := aggregate([]LineItemRow{
		{OrderID: uuid.New(), ProductID: &productID, Name: "Old Name", UnitPriceCents: 1000, Qty: 1, OrderCreatedAt: created},
		{OrderID: uuid.New(), ProductID: &productID, Name: "New Name", UnitPriceCents: 1000, Qty: 1, OrderCreatedAt: created},
	}, 5)

	require.Len(t, report.TopProducts, 1)
	require.Equal(t, "Old Name", report.TopProducts[0].Name)
}
