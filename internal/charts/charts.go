// Package charts turns aggregate tables into chart descriptions. Every constructor
// returns a complete value; nothing adjusts a chart after it is built.
package charts

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

const statesInBar = 5

type Kind string

const (
	KindGeo  Kind = "scattergeo"
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

type Series struct {
	Name   string
	Labels []string
	Values []float64
	Lat    []float64
	Lon    []float64
}

type Chart struct {
	ID         string
	Title      string
	Kind       Kind
	Series     []Series
	ValueTitle string
	Horizontal bool
	// RangeMax pins the value axis to [0, RangeMax] when positive.
	RangeMax float64
}

func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if len(s.Values) > 0 {
			return false
		}
	}
	return true
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func geo(id, title, valueTitle string, labels []string, values, lat, lon []float64) Chart {
	return Chart{
		ID:         id,
		Title:      title,
		Kind:       KindGeo,
		ValueTitle: valueTitle,
		Series: []Series{{
			Name:   valueTitle,
			Labels: labels,
			Values: values,
			Lat:    lat,
			Lon:    lon,
		}},
	}
}

func bar(id, title, valueTitle string, labels []string, values []float64, horizontal bool) Chart {
	return Chart{
		ID:         id,
		Title:      title,
		Kind:       KindBar,
		ValueTitle: valueTitle,
		Horizontal: horizontal,
		Series:     []Series{{Name: valueTitle, Labels: labels, Values: values}},
	}
}

// line draws one series per year, x = month name, in the order months arrive.
func line(id, title, valueTitle string, years []int, months []string, values []float64) Chart {
	c := Chart{ID: id, Title: title, Kind: KindLine, ValueTitle: valueTitle, Series: []Series{}}
	index := make(map[int]int)
	for i, y := range years {
		s, ok := index[y]
		if !ok {
			s = len(c.Series)
			index[y] = s
			c.Series = append(c.Series, Series{Name: strconv.Itoa(y)})
		}
		c.Series[s].Labels = append(c.Series[s].Labels, months[i])
		c.Series[s].Values = append(c.Series[s].Values, values[i])
		c.RangeMax = math.Max(c.RangeMax, values[i])
	}
	return c
}

func RevenueMap(states []models.StateRevenue) Chart {
	labels, values, lat, lon := make([]string, len(states)), make([]float64, len(states)), make([]float64, len(states)), make([]float64, len(states))
	for i, s := range states {
		labels[i], values[i], lat[i], lon[i] = s.State, money(s.Revenue), s.Lat, s.Lon
	}
	return geo("revenue-map", "Revenue by state", "Revenue", labels, values, lat, lon)
}

func CountMap(states []models.StateCount) Chart {
	labels, values, lat, lon := make([]string, len(states)), make([]float64, len(states)), make([]float64, len(states)), make([]float64, len(states))
	for i, s := range states {
		labels[i], values[i], lat[i], lon[i] = s.State, float64(s.Count), s.Lat, s.Lon
	}
	return geo("count-map", "Sales by state", "Sales", labels, values, lat, lon)
}

func RevenueLine(months []models.MonthRevenue) Chart {
	years, names, values := make([]int, len(months)), make([]string, len(months)), make([]float64, len(months))
	for i, m := range months {
		years[i], names[i], values[i] = m.Year, m.MonthName, money(m.Revenue)
	}
	return line("revenue-months", "Monthly revenue", "Revenue", years, names, values)
}

func CountLine(months []models.MonthCount) Chart {
	years, names, values := make([]int, len(months)), make([]string, len(months)), make([]float64, len(months))
	for i, m := range months {
		years[i], names[i], values[i] = m.Year, m.MonthName, float64(m.Count)
	}
	return line("count-months", "Monthly sales", "Sales", years, names, values)
}

// RevenueStatesBar shows the leading states; the input is already sorted.
func RevenueStatesBar(states []models.StateRevenue) Chart {
	states = states[:min(len(states), statesInBar)]
	labels, values := make([]string, len(states)), make([]float64, len(states))
	for i, s := range states {
		labels[i], values[i] = s.State, money(s.Revenue)
	}
	return bar("revenue-states", fmt.Sprintf("Top %d states (revenue)", statesInBar), "Revenue", labels, values, false)
}

func CountStatesBar(states []models.StateCount) Chart {
	states = states[:min(len(states), statesInBar)]
	labels, values := make([]string, len(states)), make([]float64, len(states))
	for i, s := range states {
		labels[i], values[i] = s.State, float64(s.Count)
	}
	return bar("count-states", fmt.Sprintf("Top %d states (sales)", statesInBar), "Sales", labels, values, false)
}

func RevenueCategoriesBar(categories []models.CategoryRevenue) Chart {
	labels, values := make([]string, len(categories)), make([]float64, len(categories))
	for i, c := range categories {
		labels[i], values[i] = c.Category, money(c.Revenue)
	}
	return bar("revenue-categories", "Revenue by category", "Revenue", labels, values, false)
}

func CountCategoriesBar(categories []models.CategoryCount) Chart {
	labels, values := make([]string, len(categories)), make([]float64, len(categories))
	for i, c := range categories {
		labels[i], values[i] = c.Category, float64(c.Count)
	}
	return bar("count-categories", "Sales by category", "Sales", labels, values, false)
}

// SellersRevenueBar expects sellers already ranked and sliced by TopSellers.
func SellersRevenueBar(sellers []models.SellerTotal, n int) Chart {
	labels, values := make([]string, len(sellers)), make([]float64, len(sellers))
	for i, s := range sellers {
		labels[i], values[i] = s.Seller, money(s.Revenue)
	}
	return bar("sellers-revenue", fmt.Sprintf("Top %d sellers (revenue)", n), "Revenue", labels, values, true)
}

func SellersCountBar(sellers []models.SellerTotal, n int) Chart {
	labels, values := make([]string, len(sellers)), make([]float64, len(sellers))
	for i, s := range sellers {
		labels[i], values[i] = s.Seller, float64(s.Count)
	}
	return bar("sellers-count", fmt.Sprintf("Top %d sellers (sales)", n), "Sales", labels, values, true)
}
