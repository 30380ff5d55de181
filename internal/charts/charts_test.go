package charts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

func TestRevenueLine_SeriesPerYear(t *testing.T) {
	months := []models.MonthRevenue{
		{Year: 2020, Month: time.November, MonthName: "November", Revenue: decimal.NewFromInt(10)},
		{Year: 2020, Month: time.December, MonthName: "December", Revenue: decimal.Zero},
		{Year: 2021, Month: time.January, MonthName: "January", Revenue: decimal.NewFromInt(30)},
	}

	c := RevenueLine(months)

	want := []Series{
		{Name: "2020", Labels: []string{"November", "December"}, Values: []float64{10, 0}},
		{Name: "2021", Labels: []string{"January"}, Values: []float64{30}},
	}
	if diff := cmp.Diff(want, c.Series); diff != "" {
		t.Errorf("RevenueLine() series mismatch (-want +got):\n%s", diff)
	}
	if c.RangeMax != 30 {
		t.Errorf("RangeMax = %v, want 30", c.RangeMax)
	}
	if c.Kind != KindLine || c.ID != "revenue-months" {
		t.Errorf("unexpected chart identity: %s %s", c.Kind, c.ID)
	}
}

func TestStatesBar_TakesFirstFive(t *testing.T) {
	var states []models.StateCount
	for i, s := range []string{"SP", "RJ", "MG", "RS", "PR", "BA", "SC"} {
		states = append(states, models.StateCount{State: s, Count: 100 - i})
	}

	c := CountStatesBar(states)

	if diff := cmp.Diff([]string{"SP", "RJ", "MG", "RS", "PR"}, c.Series[0].Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if c.Title != "Top 5 states (sales)" {
		t.Errorf("Title = %q", c.Title)
	}
}

func TestSellersBars(t *testing.T) {
	sellers := []models.SellerTotal{
		{Seller: "Ana", Revenue: decimal.RequireFromString("125.25"), Count: 2},
		{Seller: "Carla", Revenue: decimal.RequireFromString("80"), Count: 1},
	}

	revenue := SellersRevenueBar(sellers, 7)
	if revenue.Title != "Top 7 sellers (revenue)" || !revenue.Horizontal {
		t.Errorf("unexpected revenue chart: %+v", revenue)
	}
	if diff := cmp.Diff([]float64{125.25, 80}, revenue.Series[0].Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	count := SellersCountBar(sellers, 7)
	if count.Title != "Top 7 sellers (sales)" {
		t.Errorf("Title = %q", count.Title)
	}
}

func TestChart_Empty(t *testing.T) {
	if !RevenueMap(nil).Empty() {
		t.Error("map with no states should be empty")
	}
	if !RevenueLine(nil).Empty() {
		t.Error("line with no months should be empty")
	}
	if CountCategoriesBar([]models.CategoryCount{{Category: "livros", Count: 1}}).Empty() {
		t.Error("bar with one category should not be empty")
	}
}

func TestFigure(t *testing.T) {
	tests := []struct {
		name  string
		chart Chart
		check func(t *testing.T, f map[string]any)
	}{
		{
			name: "geo",
			chart: CountMap([]models.StateCount{
				{State: "SP", Lat: -23.5, Lon: -46.6, Count: 4},
			}),
			check: func(t *testing.T, f map[string]any) {
				trace := f["data"].([]any)[0].(map[string]any)
				if trace["type"] != "scattergeo" {
					t.Errorf("type = %v", trace["type"])
				}
				geo := f["layout"].(map[string]any)["geo"].(map[string]any)
				if geo["scope"] != "south america" {
					t.Errorf("scope = %v", geo["scope"])
				}
			},
		},
		{
			name: "line range",
			chart: CountLine([]models.MonthCount{
				{Year: 2020, Month: time.January, MonthName: "January", Count: 4},
			}),
			check: func(t *testing.T, f map[string]any) {
				yaxis := f["layout"].(map[string]any)["yaxis"].(map[string]any)
				if diff := cmp.Diff([]any{float64(0), float64(4)}, yaxis["range"]); diff != "" {
					t.Errorf("range mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "line months in calendar order",
			chart: RevenueLine([]models.MonthRevenue{
				{Year: 2020, Month: time.March, MonthName: "March", Revenue: decimal.NewFromInt(5)},
				{Year: 2021, Month: time.January, MonthName: "January", Revenue: decimal.NewFromInt(7)},
			}),
			check: func(t *testing.T, f map[string]any) {
				xaxis := f["layout"].(map[string]any)["xaxis"].(map[string]any)
				if xaxis["categoryorder"] != "array" {
					t.Errorf("categoryorder = %v", xaxis["categoryorder"])
				}
				want := []any{"January", "February", "March", "April", "May", "June",
					"July", "August", "September", "October", "November", "December"}
				if diff := cmp.Diff(want, xaxis["categoryarray"]); diff != "" {
					t.Errorf("categoryarray mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "horizontal bar",
			chart: SellersCountBar([]models.SellerTotal{
				{Seller: "Ana", Count: 2},
			}, 2),
			check: func(t *testing.T, f map[string]any) {
				trace := f["data"].([]any)[0].(map[string]any)
				if trace["orientation"] != "h" {
					t.Errorf("orientation = %v", trace["orientation"])
				}
				if diff := cmp.Diff([]any{"Ana"}, trace["y"]); diff != "" {
					t.Errorf("y mismatch (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.chart.JSON()
			if err != nil {
				t.Fatalf("JSON() error = %v", err)
			}
			var f map[string]any
			if err := json.Unmarshal([]byte(raw), &f); err != nil {
				t.Fatalf("figure is not JSON: %v", err)
			}
			tt.check(t, f)
		})
	}
}
