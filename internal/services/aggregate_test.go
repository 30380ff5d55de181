package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(state, category, seller, price string, year int, month time.Month, day int) models.Transaction {
	coords := map[string][2]float64{
		"SP": {-23.55, -46.63},
		"RJ": {-22.91, -43.17},
		"MG": {-19.92, -43.94},
	}
	return models.Transaction{
		Product:      "Produto " + category,
		Category:     category,
		Price:        dec(price),
		PurchaseDate: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Seller:       seller,
		State:        state,
		Lat:          coords[state][0],
		Lon:          coords[state][1],
	}
}

// testSales covers January and March 2020 only, so February must be zero-filled.
func testSales() []models.Transaction {
	return []models.Transaction{
		sale("SP", "eletronicos", "Ana", "100.00", 2020, time.January, 5),
		sale("RJ", "livros", "Bruno", "50.50", 2020, time.January, 20),
		sale("SP", "livros", "Ana", "25.25", 2020, time.March, 2),
		sale("MG", "brinquedos", "Carla", "80.00", 2020, time.March, 15),
		sale("RJ", "livros", "Bruno", "10.00", 2020, time.March, 30),
	}
}

func TestRevenueByState(t *testing.T) {
	got := RevenueByState(testSales())
	want := []models.StateRevenue{
		{State: "SP", Lat: -23.55, Lon: -46.63, Revenue: dec("125.25")},
		{State: "MG", Lat: -19.92, Lon: -43.94, Revenue: dec("80.00")},
		{State: "RJ", Lat: -22.91, Lon: -43.17, Revenue: dec("60.50")},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("RevenueByState() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByState_TiesKeepDiscoveryOrder(t *testing.T) {
	got := CountByState(testSales())
	want := []models.StateCount{
		{State: "SP", Lat: -23.55, Lon: -46.63, Count: 2},
		{State: "RJ", Lat: -22.91, Lon: -43.17, Count: 2},
		{State: "MG", Lat: -19.92, Lon: -43.94, Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountByState() mismatch (-want +got):\n%s", diff)
	}
}

func TestRevenueByState_KeepsFirstCoordinates(t *testing.T) {
	rows := testSales()
	rows[2].Lat, rows[2].Lon = 1, 2

	got := RevenueByState(rows)
	if got[0].State != "SP" || got[0].Lat != -23.55 || got[0].Lon != -46.63 {
		t.Errorf("expected SP with the first row's coordinates, got %+v", got[0])
	}
}

func TestRevenueByMonth_ZeroFillsGaps(t *testing.T) {
	got := RevenueByMonth(testSales())
	want := []models.MonthRevenue{
		{Year: 2020, Month: time.January, MonthName: "January", Revenue: dec("150.50")},
		{Year: 2020, Month: time.February, MonthName: "February", Revenue: decimal.Zero},
		{Year: 2020, Month: time.March, MonthName: "March", Revenue: dec("115.25")},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("RevenueByMonth() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByMonth_SpansYears(t *testing.T) {
	rows := []models.Transaction{
		sale("SP", "livros", "Ana", "1", 2021, time.January, 3),
		sale("SP", "livros", "Ana", "1", 2020, time.November, 30),
		sale("SP", "livros", "Ana", "1", 2021, time.January, 9),
	}

	got := CountByMonth(rows)
	want := []models.MonthCount{
		{Year: 2020, Month: time.November, MonthName: "November", Count: 1},
		{Year: 2020, Month: time.December, MonthName: "December", Count: 0},
		{Year: 2021, Month: time.January, MonthName: "January", Count: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountByMonth() mismatch (-want +got):\n%s", diff)
	}
}

func TestCategoryTables(t *testing.T) {
	revenue := RevenueByCategory(testSales())
	wantRevenue := []models.CategoryRevenue{
		{Category: "eletronicos", Revenue: dec("100.00")},
		{Category: "livros", Revenue: dec("85.75")},
		{Category: "brinquedos", Revenue: dec("80.00")},
	}
	if diff := cmp.Diff(wantRevenue, revenue, decimalEqual); diff != "" {
		t.Errorf("RevenueByCategory() mismatch (-want +got):\n%s", diff)
	}

	count := CountByCategory(testSales())
	wantCount := []models.CategoryCount{
		{Category: "livros", Count: 3},
		{Category: "eletronicos", Count: 1},
		{Category: "brinquedos", Count: 1},
	}
	if diff := cmp.Diff(wantCount, count); diff != "" {
		t.Errorf("CountByCategory() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregates_PartitionTotals(t *testing.T) {
	rows := testSales()
	total := TotalRevenue(rows)
	if !total.Equal(dec("265.75")) {
		t.Fatalf("TotalRevenue() = %s, want 265.75", total)
	}

	sums := map[string]decimal.Decimal{}
	for _, s := range RevenueByState(rows) {
		sums["state"] = sums["state"].Add(s.Revenue)
	}
	for _, m := range RevenueByMonth(rows) {
		sums["month"] = sums["month"].Add(m.Revenue)
	}
	for _, c := range RevenueByCategory(rows) {
		sums["category"] = sums["category"].Add(c.Revenue)
	}
	for _, s := range SellerTotals(rows) {
		sums["seller"] = sums["seller"].Add(s.Revenue)
	}
	for table, sum := range sums {
		if !sum.Equal(total) {
			t.Errorf("%s revenue sums to %s, want %s", table, sum, total)
		}
	}

	counts := map[string]int{}
	for _, s := range CountByState(rows) {
		counts["state"] += s.Count
	}
	for _, m := range CountByMonth(rows) {
		counts["month"] += m.Count
	}
	for _, c := range CountByCategory(rows) {
		counts["category"] += c.Count
	}
	for _, s := range SellerTotals(rows) {
		counts["seller"] += s.Count
	}
	for table, n := range counts {
		if n != len(rows) {
			t.Errorf("%s counts sum to %d, want %d", table, n, len(rows))
		}
	}
}

func TestAggregates_EmptyInput(t *testing.T) {
	if got := RevenueByState(nil); got == nil || len(got) != 0 {
		t.Errorf("RevenueByState(nil) = %#v, want empty non-nil slice", got)
	}
	if got := RevenueByMonth(nil); len(got) != 0 {
		t.Errorf("RevenueByMonth(nil) = %#v, want empty", got)
	}
	if got := TopSellers(SellerTotals(nil), 5, models.BySum); got == nil || len(got) != 0 {
		t.Errorf("TopSellers(empty) = %#v, want empty non-nil slice", got)
	}
	if !TotalRevenue(nil).IsZero() {
		t.Error("TotalRevenue(nil) should be zero")
	}
}

func TestAggregates_SingleRow(t *testing.T) {
	rows := []models.Transaction{sale("MG", "livros", "Carla", "42.00", 2022, time.July, 1)}

	if got := RevenueByMonth(rows); len(got) != 1 || got[0].MonthName != "July" || !got[0].Revenue.Equal(dec("42")) {
		t.Errorf("RevenueByMonth() = %+v", got)
	}
	if got := CountByState(rows); len(got) != 1 || got[0].Count != 1 {
		t.Errorf("CountByState() = %+v", got)
	}
	if got := TopSellers(SellerTotals(rows), 5, models.ByCount); len(got) != 1 || got[0].Seller != "Carla" {
		t.Errorf("TopSellers() = %+v", got)
	}
}

func TestSellerTotals_DiscoveryOrder(t *testing.T) {
	got := SellerTotals(testSales())
	want := []models.SellerTotal{
		{Seller: "Ana", Revenue: dec("125.25"), Count: 2},
		{Seller: "Bruno", Revenue: dec("60.50"), Count: 2},
		{Seller: "Carla", Revenue: dec("80.00"), Count: 1},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("SellerTotals() mismatch (-want +got):\n%s", diff)
	}
}

func sellerNames(sellers []models.SellerTotal) []string {
	names := make([]string, len(sellers))
	for i, s := range sellers {
		names[i] = s.Seller
	}
	return names
}

func TestTopSellers(t *testing.T) {
	totals := SellerTotals(testSales())

	tests := []struct {
		name string
		n    int
		by   models.SellerMetric
		want []string
	}{
		{name: "by sum", n: 5, by: models.BySum, want: []string{"Ana", "Carla", "Bruno"}},
		{name: "by count keeps tie order", n: 5, by: models.ByCount, want: []string{"Ana", "Bruno", "Carla"}},
		{name: "n below minimum clamps to 2", n: 1, by: models.BySum, want: []string{"Ana", "Carla"}},
		{name: "zero clamps to 2", n: 0, by: models.ByCount, want: []string{"Ana", "Bruno"}},
		{name: "exactly 2", n: 2, by: models.BySum, want: []string{"Ana", "Carla"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sellerNames(TopSellers(totals, tt.n, tt.by))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TopSellers(%d, %s) mismatch (-want +got):\n%s", tt.n, tt.by, diff)
			}
		})
	}
}

func TestTopSellers_ClampsToTen(t *testing.T) {
	var rows []models.Transaction
	for i := range 12 {
		rows = append(rows, sale("SP", "livros", fmt.Sprintf("seller-%02d", i), fmt.Sprintf("%d.00", 100-i), 2020, time.May, 1))
	}
	totals := SellerTotals(rows)

	for _, n := range []int{10, 11, 50} {
		got := TopSellers(totals, n, models.BySum)
		if len(got) != 10 {
			t.Errorf("TopSellers(n=%d) returned %d sellers, want 10", n, len(got))
		}
		if got[0].Seller != "seller-00" || got[9].Seller != "seller-09" {
			t.Errorf("TopSellers(n=%d) wrong order: %v", n, sellerNames(got))
		}
	}

	if got := RankSellers(totals, models.BySum); len(got) != 12 {
		t.Errorf("RankSellers() returned %d sellers, want all 12", len(got))
	}
}

func TestRankSellers_DoesNotMutateInput(t *testing.T) {
	totals := SellerTotals(testSales())
	before := sellerNames(totals)

	_ = RankSellers(totals, models.BySum)

	if diff := cmp.Diff(before, sellerNames(totals)); diff != "" {
		t.Errorf("RankSellers mutated its input (-before +after):\n%s", diff)
	}
}

func TestMonthNamesMatchMonths(t *testing.T) {
	for _, m := range CountByMonth(testSales()) {
		if m.MonthName != m.Month.String() {
			t.Errorf("month %d labelled %q", m.Month, m.MonthName)
		}
	}
}
