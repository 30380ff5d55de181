package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/fetcher"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

type stubFetcher struct {
	mu      sync.Mutex
	rows    []models.Transaction
	err     error
	queries []fetcher.Query
}

func (s *stubFetcher) Fetch(ctx context.Context, q fetcher.Query) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(&stubFetcher{}, nil)
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.logger == nil {
		t.Error("NewAnalytics() should fall back to the default logger")
	}
}

func TestBuild_MatchesSequentialAggregation(t *testing.T) {
	rows := testSales()

	got, err := Build(context.Background(), rows)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := &Dashboard{
		TotalRevenue:      TotalRevenue(rows),
		TransactionCount:  len(rows),
		RevenueByState:    RevenueByState(rows),
		RevenueByMonth:    RevenueByMonth(rows),
		RevenueByCategory: RevenueByCategory(rows),
		CountByState:      CountByState(rows),
		CountByMonth:      CountByMonth(rows),
		CountByCategory:   CountByCategory(rows),
		Sellers:           SellerTotals(rows),
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	first, err := Build(context.Background(), testSales())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for range 20 {
		next, err := Build(context.Background(), testSales())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if diff := cmp.Diff(first, next, decimalEqual); diff != "" {
			t.Fatalf("Build() not deterministic (-first +next):\n%s", diff)
		}
	}
}

func TestBuild_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Build(ctx, testSales()); err == nil {
		t.Error("Build() with canceled context should fail")
	}
}

func TestDashboard_TopSellers(t *testing.T) {
	d, err := Build(context.Background(), testSales())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := sellerNames(d.TopSellers(2, models.ByCount))
	if diff := cmp.Diff([]string{"Ana", "Bruno"}, got); diff != "" {
		t.Errorf("TopSellers() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalytics_RenderPass(t *testing.T) {
	source := &stubFetcher{rows: testSales()}
	a := NewAnalytics(source, observability.NewDiscardLogger())

	q := fetcher.Query{Region: "sudeste", Year: 2020}
	d, err := a.RenderPass(context.Background(), q)
	if err != nil {
		t.Fatalf("RenderPass() error = %v", err)
	}

	if d.TransactionCount != 5 {
		t.Errorf("TransactionCount = %d, want 5", d.TransactionCount)
	}
	if d.Empty() {
		t.Error("Empty() = true for a populated dashboard")
	}
	if len(source.queries) != 1 || source.queries[0] != q {
		t.Errorf("source saw queries %+v, want [%+v]", source.queries, q)
	}

	stats := a.Stats()
	if stats["render_passes"] != int64(1) {
		t.Errorf("render_passes = %v, want 1", stats["render_passes"])
	}
	if stats["failed_passes"] != int64(0) {
		t.Errorf("failed_passes = %v, want 0", stats["failed_passes"])
	}
	if stats["last_record_count"] != int64(5) {
		t.Errorf("last_record_count = %v, want 5", stats["last_record_count"])
	}
	if _, ok := stats["last_pass_at"].(time.Time); !ok {
		t.Errorf("last_pass_at = %v, want a time", stats["last_pass_at"])
	}
}

func TestAnalytics_RenderPassFetchesEveryTime(t *testing.T) {
	source := &stubFetcher{rows: testSales()}
	a := NewAnalytics(source, observability.NewDiscardLogger())

	for range 3 {
		if _, err := a.RenderPass(context.Background(), fetcher.Query{}); err != nil {
			t.Fatalf("RenderPass() error = %v", err)
		}
	}
	if len(source.queries) != 3 {
		t.Errorf("source fetched %d times, want 3", len(source.queries))
	}
}

func TestAnalytics_RenderPassErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{name: "network", err: errors.Network("source returned status 500"), code: errors.CodeNetwork},
		{name: "parse", err: errors.Parse("response body is not a JSON array"), code: errors.CodeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalytics(&stubFetcher{err: tt.err}, observability.NewDiscardLogger())

			d, err := a.RenderPass(context.Background(), fetcher.Query{})
			if d != nil {
				t.Error("RenderPass() should return no dashboard on failure")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("RenderPass() error = %v, want code %s", err, tt.code)
			}
			if got := a.Stats()["failed_passes"]; got != int64(1) {
				t.Errorf("failed_passes = %v, want 1", got)
			}
		})
	}
}

func TestAnalytics_RenderPassLogsSpan(t *testing.T) {
	tests := []struct {
		name   string
		source *stubFetcher
		status string
		rows   string
	}{
		{name: "ok", source: &stubFetcher{rows: testSales()}, status: "OK", rows: "5"},
		{name: "failed", source: &stubFetcher{err: errors.Network("source returned status 500")}, status: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			a := NewAnalytics(tt.source, logger)

			a.RenderPass(context.Background(), fetcher.Query{})

			var span map[string]any
			for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
				var entry map[string]any
				if err := json.Unmarshal(line, &entry); err != nil {
					t.Fatalf("log line is not JSON: %v", err)
				}
				if entry["msg"] == "span finished" {
					span, _ = entry["span"].(map[string]any)
				}
			}
			if span == nil {
				t.Fatalf("no span logged:\n%s", buf.String())
			}
			if span["operation"] != "render_pass" || span["status"] != tt.status {
				t.Errorf("span = %v, want render_pass with status %s", span, tt.status)
			}
			if tt.rows != "" && span["rows"] != tt.rows {
				t.Errorf("span rows tag = %v, want %s", span["rows"], tt.rows)
			}
		})
	}
}

func TestAnalytics_EmptyData(t *testing.T) {
	a := NewAnalytics(&stubFetcher{rows: []models.Transaction{}}, observability.NewDiscardLogger())

	d, err := a.RenderPass(context.Background(), fetcher.Query{})
	if err != nil {
		t.Fatalf("RenderPass() error = %v, empty data must not fail", err)
	}
	if !d.Empty() {
		t.Error("Empty() = false for zero rows")
	}
	if !d.TotalRevenue.IsZero() {
		t.Errorf("TotalRevenue = %s, want 0", d.TotalRevenue)
	}
	if len(d.RevenueByState) != 0 || len(d.CountByMonth) != 0 || len(d.Sellers) != 0 {
		t.Errorf("expected empty tables, got %+v", d)
	}
}

func TestAnalytics_ConcurrentRenderPasses(t *testing.T) {
	a := NewAnalytics(&stubFetcher{rows: testSales()}, observability.NewDiscardLogger())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.RenderPass(context.Background(), fetcher.Query{}); err != nil {
				t.Errorf("RenderPass() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := a.Stats()["render_passes"]; got != int64(10) {
		t.Errorf("render_passes = %v, want 10", got)
	}
}

func BenchmarkBuild(b *testing.B) {
	var rows []models.Transaction
	for i := range 10_000 {
		rows = append(rows, sale("SP", "livros", "Ana", "10.00", 2020+i%3, time.Month(1+i%12), 1))
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := Build(context.Background(), rows); err != nil {
			b.Fatal(err)
		}
	}
}
