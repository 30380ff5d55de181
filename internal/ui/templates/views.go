package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/fetcher"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const (
	SellersViewID = "sellers-view"
	ErrorBannerID = "dashboard-error"

	sellersTabID = "sellers"
)

// RenderChartsScript redraws every chart under the element with the given id.
func RenderChartsScript(id string) string {
	return fmt.Sprintf("renderCharts(document.getElementById(%q))", id)
}

type Metric struct {
	Label string
	Value string
}

// Tab is one view of the page, laid out as a two-column chart grid.
type Tab struct {
	ID     string
	Label  string
	Charts []charts.Chart
}

type SellersView struct {
	TopN    int
	Source  string
	Revenue charts.Chart
	Count   charts.Chart
}

type DashboardView struct {
	Title   string
	Metrics []Metric
	Tabs    []Tab
	Sellers SellersView
	Empty   bool
}

// Signals seeds the page state: the visible tab and the top-N control.
func (v DashboardView) Signals() string {
	return fmt.Sprintf("{tab: 'revenue', topn: %d}", v.Sellers.TopN)
}

// Nav lists the tab buttons, the sellers tab last.
func (v DashboardView) Nav() []Tab {
	nav := make([]Tab, 0, len(v.Tabs)+1)
	nav = append(nav, v.Tabs...)
	return append(nav, Tab{ID: sellersTabID, Label: "Sellers"})
}

func tabIs(id string) string {
	return "$tab == '" + id + "'"
}

func tabSwitch(id string) string {
	return "$tab = '" + id + "'; window.dispatchEvent(new Event('resize'))"
}

func sellersAction(source string) string {
	return "@get('" + source + "')"
}

// SellersSource is the SSE endpoint the top-N control calls, carrying the upstream filter.
func SellersSource(q fetcher.Query) string {
	v := url.Values{}
	if q.Region != "" {
		v.Set("regiao", q.Region)
	}
	if q.Year > 0 {
		v.Set("ano", strconv.Itoa(q.Year))
	}
	if len(v) == 0 {
		return "/sse/sellers"
	}
	return "/sse/sellers?" + v.Encode()
}

// NewSellersView slices the seller table for the given top-N. n is clamped first.
func NewSellersView(d *services.Dashboard, n int, q fetcher.Query) SellersView {
	n = config.ClampTopN(n)
	return SellersView{
		TopN:    n,
		Source:  SellersSource(q),
		Revenue: charts.SellersRevenueBar(d.TopSellers(n, models.BySum), n),
		Count:   charts.SellersCountBar(d.TopSellers(n, models.ByCount), n),
	}
}

func NewDashboardView(d *services.Dashboard, cfg config.DashboardConfig, n int, q fetcher.Query) DashboardView {
	return DashboardView{
		Title: cfg.Title,
		Metrics: []Metric{
			{Label: "Revenue", Value: services.Format(d.TotalRevenue.InexactFloat64(), cfg.CurrencyPrefix)},
			{Label: "Sales count", Value: services.Format(float64(d.TransactionCount), "")},
		},
		Tabs: []Tab{
			{
				ID:    "revenue",
				Label: "Revenue",
				Charts: []charts.Chart{
					charts.RevenueMap(d.RevenueByState),
					charts.RevenueLine(d.RevenueByMonth),
					charts.RevenueStatesBar(d.RevenueByState),
					charts.RevenueCategoriesBar(d.RevenueByCategory),
				},
			},
			{
				ID:    "count",
				Label: "Sales count",
				Charts: []charts.Chart{
					charts.CountMap(d.CountByState),
					charts.CountLine(d.CountByMonth),
					charts.CountStatesBar(d.CountByState),
					charts.CountCategoriesBar(d.CountByCategory),
				},
			},
		},
		Sellers: NewSellersView(d, n, q),
		Empty:   d.Empty(),
	}
}
