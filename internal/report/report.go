// Package report prints the aggregate tables of one render pass as terminal tables.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

type Options struct {
	TopN           int
	CurrencyPrefix string
}

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(header)
	return t
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Render writes the metrics and every table to w.
func Render(w io.Writer, d *services.Dashboard, opts Options) {
	fmt.Fprintf(w, "Revenue:%s\n", services.Format(d.TotalRevenue.InexactFloat64(), opts.CurrencyPrefix))
	fmt.Fprintf(w, "Sales count:%s\n\n", services.Format(float64(d.TransactionCount), ""))

	if d.Empty() {
		fmt.Fprintln(w, "No sales to display.")
		return
	}

	t := newTable(w, "Revenue by state", table.Row{"State", "Revenue", "Sales"})
	counts := make(map[string]int, len(d.CountByState))
	for _, s := range d.CountByState {
		counts[s.State] = s.Count
	}
	for _, s := range d.RevenueByState {
		t.AppendRow(table.Row{s.State, money(s.Revenue), counts[s.State]})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	t = newTable(w, "By month", table.Row{"Year", "Month", "Revenue", "Sales"})
	for i, m := range d.RevenueByMonth {
		t.AppendRow(table.Row{m.Year, m.MonthName, money(m.Revenue), d.CountByMonth[i].Count})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()

	t = newTable(w, "Revenue by category", table.Row{"Category", "Revenue"})
	for _, c := range d.RevenueByCategory {
		t.AppendRow(table.Row{c.Category, money(c.Revenue)})
	}
	t.Render()

	t = newTable(w, "Sales by category", table.Row{"Category", "Sales"})
	for _, c := range d.CountByCategory {
		t.AppendRow(table.Row{c.Category, c.Count})
	}
	t.Render()

	for _, by := range []models.SellerMetric{models.BySum, models.ByCount} {
		top := d.TopSellers(opts.TopN, by)
		t = newTable(w, fmt.Sprintf("Top %d sellers by %s", len(top), by), table.Row{"#", "Seller", "Revenue", "Sales"})
		for i, s := range top {
			t.AppendRow(table.Row{i + 1, s.Seller, money(s.Revenue), s.Count})
		}
		t.Render()
	}
}
