package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/fetcher"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

const maxWorkers = 4

// Fetcher is the upstream the render pass pulls rows from.
type Fetcher interface {
	Fetch(ctx context.Context, q fetcher.Query) ([]models.Transaction, error)
}

// Dashboard holds every table derived from one row set. It lives for one render pass.
type Dashboard struct {
	TotalRevenue      decimal.Decimal          `json:"total_revenue"`
	TransactionCount  int                      `json:"transaction_count"`
	RevenueByState    []models.StateRevenue    `json:"revenue_by_state"`
	RevenueByMonth    []models.MonthRevenue    `json:"revenue_by_month"`
	RevenueByCategory []models.CategoryRevenue `json:"revenue_by_category"`
	CountByState      []models.StateCount      `json:"count_by_state"`
	CountByMonth      []models.MonthCount      `json:"count_by_month"`
	CountByCategory   []models.CategoryCount   `json:"count_by_category"`
	Sellers           []models.SellerTotal     `json:"sellers"`
}

func (d *Dashboard) Empty() bool {
	return d.TransactionCount == 0
}

func (d *Dashboard) TopSellers(n int, by models.SellerMetric) []models.SellerTotal {
	return TopSellers(d.Sellers, n, by)
}

// Build derives all tables. The groupings run in parallel but each writes its own
// field, so the result equals a sequential computation.
func Build(ctx context.Context, rows []models.Transaction) (*Dashboard, error) {
	d := &Dashboard{TransactionCount: len(rows)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	steps := []func(){
		func() { d.TotalRevenue = TotalRevenue(rows) },
		func() { d.RevenueByState = RevenueByState(rows) },
		func() { d.RevenueByMonth = RevenueByMonth(rows) },
		func() { d.RevenueByCategory = RevenueByCategory(rows) },
		func() { d.CountByState = CountByState(rows) },
		func() { d.CountByMonth = CountByMonth(rows) },
		func() { d.CountByCategory = CountByCategory(rows) },
		func() { d.Sellers = SellerTotals(rows) },
	}
	for _, step := range steps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			step()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}
	return d, nil
}

type Analytics struct {
	source        Fetcher
	logger        *slog.Logger
	passes        atomic.Int64
	failures      atomic.Int64
	lastRows      atomic.Int64
	lastDuration  atomic.Int64
	lastPassNanos atomic.Int64
}

func NewAnalytics(source Fetcher, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		source: source,
		logger: logger,
	}
}

// RenderPass fetches the current dataset and aggregates it. Nothing is retained
// between passes except counters.
func (a *Analytics) RenderPass(ctx context.Context, q fetcher.Query) (*Dashboard, error) {
	ctx, span := observability.StartSpan(ctx, "render_pass")
	defer func() {
		span.Finish()
		a.logger.Debug("span finished", "span", span)
	}()

	start := time.Now()
	a.passes.Add(1)

	rows, err := a.source.Fetch(ctx, q)
	if err != nil {
		a.failures.Add(1)
		span.SetError(err)
		a.logger.Error("render pass aborted",
			"error_code", errors.CodeOf(err),
			"error", err,
			"request_id", observability.GetRequestID(ctx),
		)
		return nil, err
	}

	if len(rows) == 0 {
		a.logger.Warn("source returned no rows",
			"error_code", errors.CodeEmptyData,
			"request_id", observability.GetRequestID(ctx),
		)
	}

	d, err := Build(ctx, rows)
	if err != nil {
		a.failures.Add(1)
		span.SetError(err)
		return nil, errors.InternalWrap(err, "aggregate product sales")
	}

	duration := time.Since(start)
	a.lastRows.Store(int64(len(rows)))
	a.lastDuration.Store(int64(duration))
	a.lastPassNanos.Store(time.Now().UnixNano())

	span.SetTag("rows", fmt.Sprint(len(rows)))
	a.logger.Info("render pass complete",
		"rows", len(rows),
		"states", len(d.RevenueByState),
		"months", len(d.RevenueByMonth),
		"sellers", len(d.Sellers),
		"duration", duration,
		"request_id", observability.GetRequestID(ctx),
	)
	return d, nil
}

// Stats reports pass counters for monitoring.
func (a *Analytics) Stats() map[string]any {
	var lastPass any
	if ns := a.lastPassNanos.Load(); ns > 0 {
		lastPass = time.Unix(0, ns).UTC()
	}
	return map[string]any{
		"render_passes":      a.passes.Load(),
		"failed_passes":      a.failures.Load(),
		"last_record_count":  a.lastRows.Load(),
		"last_pass_duration": time.Duration(a.lastDuration.Load()).String(),
		"last_pass_at":       lastPass,
	}
}
