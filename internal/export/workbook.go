// Package export writes the aggregate tables of one render pass to an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const (
	SheetSummary         = "Summary"
	SheetRevenueState    = "Revenue by state"
	SheetRevenueMonth    = "Revenue by month"
	SheetRevenueCategory = "Revenue by category"
	SheetCountState      = "Sales by state"
	SheetCountMonth      = "Sales by month"
	SheetCountCategory   = "Sales by category"
	SheetSellers         = "Sellers"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	colWidth    = 20
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

func sheets(d *services.Dashboard) []sheet {
	out := []sheet{{
		name:   SheetSummary,
		header: []any{"Metric", "Value"},
		rows: [][]any{
			{"Total revenue", d.TotalRevenue.InexactFloat64()},
			{"Sales count", d.TransactionCount},
		},
	}}

	s := sheet{name: SheetRevenueState, header: []any{"State", "Lat", "Lon", "Revenue"}}
	for _, r := range d.RevenueByState {
		s.rows = append(s.rows, []any{r.State, r.Lat, r.Lon, r.Revenue.InexactFloat64()})
	}
	out = append(out, s)

	s = sheet{name: SheetRevenueMonth, header: []any{"Year", "Month", "Revenue"}}
	for _, r := range d.RevenueByMonth {
		s.rows = append(s.rows, []any{r.Year, r.MonthName, r.Revenue.InexactFloat64()})
	}
	out = append(out, s)

	s = sheet{name: SheetRevenueCategory, header: []any{"Category", "Revenue"}}
	for _, r := range d.RevenueByCategory {
		s.rows = append(s.rows, []any{r.Category, r.Revenue.InexactFloat64()})
	}
	out = append(out, s)

	s = sheet{name: SheetCountState, header: []any{"State", "Lat", "Lon", "Sales"}}
	for _, r := range d.CountByState {
		s.rows = append(s.rows, []any{r.State, r.Lat, r.Lon, r.Count})
	}
	out = append(out, s)

	s = sheet{name: SheetCountMonth, header: []any{"Year", "Month", "Sales"}}
	for _, r := range d.CountByMonth {
		s.rows = append(s.rows, []any{r.Year, r.MonthName, r.Count})
	}
	out = append(out, s)

	s = sheet{name: SheetCountCategory, header: []any{"Category", "Sales"}}
	for _, r := range d.CountByCategory {
		s.rows = append(s.rows, []any{r.Category, r.Count})
	}
	out = append(out, s)

	s = sheet{name: SheetSellers, header: []any{"Seller", "Revenue", "Sales"}}
	for _, r := range services.RankSellers(d.Sellers, models.BySum) {
		s.rows = append(s.rows, []any{r.Seller, r.Revenue.InexactFloat64(), r.Count})
	}
	out = append(out, s)

	return out
}

// Workbook builds one sheet per table. The caller closes the returned file.
func Workbook(d *services.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, s := range sheets(d) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("new sheet %q: %w", s.name, err)
		}

		if err := writeSheet(f, s); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, s sheet) error {
	last, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.name, "A", last, colWidth); err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}

	for i, row := range append([][]any{s.header}, s.rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", s.name, i+1, err)
		}
	}
	return nil
}

// Write streams the workbook for d to w.
func Write(w io.Writer, d *services.Dashboard) error {
	f, err := Workbook(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
