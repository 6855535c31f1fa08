package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"commerce-dashboard/internal/models"
	"commerce-dashboard/internal/observability"
	"commerce-dashboard/internal/pipeline"
)

// Analytics holds the loaded order table and answers dashboard queries
// against it. The table is replaced wholesale on load and never mutated, so
// queries for different windows can run concurrently.
type Analytics struct {
	mu       sync.RWMutex
	lines    []models.OrderLine
	bounds   models.Bounds
	loadedAt time.Time
	csvPath  string

	cacheDir string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analytics) { a.metrics = m }
}

// WithCacheDir sets where parsed tables are cached. An empty dir disables the
// cache.
func WithCacheDir(dir string) Option {
	return func(a *Analytics) { a.cacheDir = dir }
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		lines:    []models.OrderLine{},
		cacheDir: defaultCacheDir,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetData replaces the order table. lines is copied and sorted by purchase
// time.
func (a *Analytics) SetData(lines []models.OrderLine) {
	sorted := slices.Clone(lines)
	if sorted == nil {
		sorted = []models.OrderLine{}
	}
	slices.SortStableFunc(sorted, func(x, y models.OrderLine) int {
		return x.PurchasedAt.Compare(y.PurchasedAt)
	})
	bounds, _ := pipeline.Bounds(sorted)

	a.mu.Lock()
	a.lines = sorted
	a.bounds = bounds
	a.loadedAt = time.Now()
	a.mu.Unlock()

	a.metrics.SetLoadedRows(len(sorted))
}

// LoadFromCSV parses filename into the order table, reusing the parsed-table
// cache while it is newer than the file.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	a.mu.Lock()
	a.csvPath = filename
	a.mu.Unlock()

	if cached, err := a.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.CreatedAt) {
			a.SetData(cached.Lines)
			a.logger.Info("loaded from cache", "records", len(cached.Lines))
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing CSV file", "filename", filename)

	lines, err := readOrderLines(ctx, filename)
	if err != nil {
		a.metrics.IncLoadFailure()
		return fmt.Errorf("process csv: %w", err)
	}
	a.SetData(lines)

	if err := a.saveToCache(filename, lines); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	a.logger.Info("csv processing complete",
		"records", len(lines),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(lines))/duration.Seconds()))

	return nil
}

func (a *Analytics) snapshot() []models.OrderLine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lines
}

// Bounds reports the purchase date range of the loaded table. ok is false
// before any data is loaded.
func (a *Analytics) Bounds() (models.Bounds, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bounds, len(a.lines) > 0
}

// DefaultWindow spans the whole loaded table.
func (a *Analytics) DefaultWindow() models.Window {
	b, _ := a.Bounds()
	return models.Window{Start: b.Min, End: b.Max}
}

// Report derives every dashboard table for w.
func (a *Analytics) Report(ctx context.Context, w models.Window) models.Report {
	ctx, span := observability.StartSpan(ctx, "pipeline.compute")
	report := pipeline.Compute(a.snapshot(), w)
	a.observe(ctx, span, "report", w, report.Rows)
	return report
}

func (a *Analytics) YearlyRevenue(ctx context.Context, w models.Window) []models.YearlyRevenue {
	return query(ctx, a, "yearly_revenue", w, pipeline.YearlyRevenue)
}

func (a *Analytics) StatusRevenue(ctx context.Context, w models.Window) []models.StatusRevenue {
	return query(ctx, a, "status_revenue", w, pipeline.StatusRevenue)
}

func (a *Analytics) TopCategories(ctx context.Context, w models.Window, limit int) []models.CategoryCount {
	rows := query(ctx, a, "top_categories", w, pipeline.TopCategories)
	return pipeline.Head(rows, limit)
}

func (a *Analytics) BottomCategories(ctx context.Context, w models.Window, limit int) []models.CategoryCount {
	rows := query(ctx, a, "bottom_categories", w, pipeline.BottomCategories)
	return pipeline.Head(rows, limit)
}

func (a *Analytics) RFM(ctx context.Context, w models.Window) []models.RFM {
	return query(ctx, a, "rfm", w, pipeline.RFM)
}

func (a *Analytics) RFMSummary(ctx context.Context, w models.Window) models.RFMSummary {
	return pipeline.SummarizeRFM(a.RFM(ctx, w))
}

// query filters the table to w and applies one aggregator to the result.
func query[T any](ctx context.Context, a *Analytics, table string, w models.Window, derive func([]models.OrderLine) T) T {
	ctx, span := observability.StartSpan(ctx, "pipeline."+table)
	filtered := pipeline.Filter(a.snapshot(), w)
	result := derive(filtered)
	a.observe(ctx, span, table, w, len(filtered))
	return result
}

func (a *Analytics) observe(ctx context.Context, span *observability.Span, table string, w models.Window, rows int) {
	span.SetTag("window.start", w.Start.Format(time.DateOnly))
	span.SetTag("window.end", w.End.Format(time.DateOnly))
	span.SetTag("rows", strconv.Itoa(rows))
	duration := span.Finish()

	a.metrics.ObserveCompute(table, duration, rows)
	a.logger.DebugContext(ctx, "derived table",
		"span", span,
		"request_id", observability.GetRequestID(ctx),
	)
}

// Stats describes the loaded dataset for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"record_count": len(a.lines),
		"loaded_at":    a.loadedAt,
		"source":       a.csvPath,
	}
	if len(a.lines) > 0 {
		stats["first_purchase"] = a.bounds.Min.Format(time.DateOnly)
		stats["last_purchase"] = a.bounds.Max.Format(time.DateOnly)
	}
	return stats
}
