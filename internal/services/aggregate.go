package services

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
)

// Every function here is pure: same rows in, same table out. Groups are emitted in
// first-seen order before sorting, and all sorts are stable, so ties keep that order.

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

func (k monthKey) next() monthKey {
	if k.month == time.December {
		return monthKey{year: k.year + 1, month: time.January}
	}
	return monthKey{year: k.year, month: k.month + 1}
}

func (k monthKey) before(o monthKey) bool {
	return k.year < o.year || (k.year == o.year && k.month < o.month)
}

// monthSpan lists every month from the earliest to the latest purchase, inclusive.
func monthSpan(rows []models.Transaction) []monthKey {
	if len(rows) == 0 {
		return nil
	}
	lo, hi := keyOf(rows[0].PurchaseDate), keyOf(rows[0].PurchaseDate)
	for _, tx := range rows[1:] {
		k := keyOf(tx.PurchaseDate)
		if k.before(lo) {
			lo = k
		}
		if hi.before(k) {
			hi = k
		}
	}
	var span []monthKey
	for k := lo; !hi.before(k); k = k.next() {
		span = append(span, k)
	}
	return span
}

func byRevenueDesc[T any](revenue func(T) decimal.Decimal) func(a, b T) int {
	return func(a, b T) int {
		return revenue(b).Cmp(revenue(a))
	}
}

func byCountDesc[T any](count func(T) int) func(a, b T) int {
	return func(a, b T) int {
		return count(b) - count(a)
	}
}

func RevenueByState(rows []models.Transaction) []models.StateRevenue {
	index := make(map[string]int)
	result := make([]models.StateRevenue, 0)
	for _, tx := range rows {
		i, ok := index[tx.State]
		if !ok {
			i = len(result)
			index[tx.State] = i
			result = append(result, models.StateRevenue{State: tx.State, Lat: tx.Lat, Lon: tx.Lon})
		}
		result[i].Revenue = result[i].Revenue.Add(tx.Price)
	}
	slices.SortStableFunc(result, byRevenueDesc(func(s models.StateRevenue) decimal.Decimal { return s.Revenue }))
	return result
}

func CountByState(rows []models.Transaction) []models.StateCount {
	index := make(map[string]int)
	result := make([]models.StateCount, 0)
	for _, tx := range rows {
		i, ok := index[tx.State]
		if !ok {
			i = len(result)
			index[tx.State] = i
			result = append(result, models.StateCount{State: tx.State, Lat: tx.Lat, Lon: tx.Lon})
		}
		result[i].Count++
	}
	slices.SortStableFunc(result, byCountDesc(func(s models.StateCount) int { return s.Count }))
	return result
}

// RevenueByMonth buckets by (year, month) in chronological order. Months inside the
// covered span with no sales are present with zero revenue.
func RevenueByMonth(rows []models.Transaction) []models.MonthRevenue {
	span := monthSpan(rows)
	index := make(map[monthKey]int, len(span))
	result := make([]models.MonthRevenue, len(span))
	for i, k := range span {
		index[k] = i
		result[i] = models.MonthRevenue{Year: k.year, Month: k.month, MonthName: k.month.String()}
	}
	for _, tx := range rows {
		i := index[keyOf(tx.PurchaseDate)]
		result[i].Revenue = result[i].Revenue.Add(tx.Price)
	}
	return result
}

func CountByMonth(rows []models.Transaction) []models.MonthCount {
	span := monthSpan(rows)
	index := make(map[monthKey]int, len(span))
	result := make([]models.MonthCount, len(span))
	for i, k := range span {
		index[k] = i
		result[i] = models.MonthCount{Year: k.year, Month: k.month, MonthName: k.month.String()}
	}
	for _, tx := range rows {
		result[index[keyOf(tx.PurchaseDate)]].Count++
	}
	return result
}

func RevenueByCategory(rows []models.Transaction) []models.CategoryRevenue {
	index := make(map[string]int)
	result := make([]models.CategoryRevenue, 0)
	for _, tx := range rows {
		i, ok := index[tx.Category]
		if !ok {
			i = len(result)
			index[tx.Category] = i
			result = append(result, models.CategoryRevenue{Category: tx.Category})
		}
		result[i].Revenue = result[i].Revenue.Add(tx.Price)
	}
	slices.SortStableFunc(result, byRevenueDesc(func(c models.CategoryRevenue) decimal.Decimal { return c.Revenue }))
	return result
}

func CountByCategory(rows []models.Transaction) []models.CategoryCount {
	index := make(map[string]int)
	result := make([]models.CategoryCount, 0)
	for _, tx := range rows {
		i, ok := index[tx.Category]
		if !ok {
			i = len(result)
			index[tx.Category] = i
			result = append(result, models.CategoryCount{Category: tx.Category})
		}
		result[i].Count++
	}
	slices.SortStableFunc(result, byCountDesc(func(c models.CategoryCount) int { return c.Count }))
	return result
}

// SellerTotals computes sum and count per seller in one pass, in first-seen order.
func SellerTotals(rows []models.Transaction) []models.SellerTotal {
	index := make(map[string]int)
	result := make([]models.SellerTotal, 0)
	for _, tx := range rows {
		i, ok := index[tx.Seller]
		if !ok {
			i = len(result)
			index[tx.Seller] = i
			result = append(result, models.SellerTotal{Seller: tx.Seller})
		}
		result[i].Revenue = result[i].Revenue.Add(tx.Price)
		result[i].Count++
	}
	return result
}

// RankSellers returns a copy of totals ordered descending by the metric. Unknown
// metrics rank by sum.
func RankSellers(totals []models.SellerTotal, by models.SellerMetric) []models.SellerTotal {
	ranked := slices.Clone(totals)
	if ranked == nil {
		ranked = []models.SellerTotal{}
	}
	if by == models.ByCount {
		slices.SortStableFunc(ranked, byCountDesc(func(s models.SellerTotal) int { return s.Count }))
	} else {
		slices.SortStableFunc(ranked, byRevenueDesc(func(s models.SellerTotal) decimal.Decimal { return s.Revenue }))
	}
	return ranked
}

// TopSellers returns at most n ranked sellers, n clamped to [2,10].
func TopSellers(totals []models.SellerTotal, n int, by models.SellerMetric) []models.SellerTotal {
	ranked := RankSellers(totals, by)
	return ranked[:min(len(ranked), config.ClampTopN(n))]
}

func TotalRevenue(rows []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range rows {
		total = total.Add(tx.Price)
	}
	return total
}
