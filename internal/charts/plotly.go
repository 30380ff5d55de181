package charts

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

const maxBubblePx = 40

// Figure is the Plotly.newPlot payload for a chart.
type Figure struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

func (c Chart) Figure() Figure {
	f := Figure{Data: make([]map[string]any, 0, len(c.Series)), Layout: c.layout()}
	for _, s := range c.Series {
		f.Data = append(f.Data, c.trace(s))
	}
	return f
}

func (c Chart) JSON() (string, error) {
	b, err := json.Marshal(c.Figure())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c Chart) trace(s Series) map[string]any {
	switch c.Kind {
	case KindGeo:
		peak := slices.Max(append([]float64{1}, s.Values...))
		return map[string]any{
			"type":          "scattergeo",
			"name":          s.Name,
			"lat":           s.Lat,
			"lon":           s.Lon,
			"text":          s.Labels,
			"hovertemplate": "%{text}: %{marker.size:,.2f}<extra></extra>",
			"marker": map[string]any{
				"size":     s.Values,
				"sizemode": "area",
				"sizeref":  2 * peak / math.Pow(maxBubblePx, 2),
			},
		}
	case KindLine:
		return map[string]any{
			"type": "scatter",
			"mode": "lines+markers",
			"name": s.Name,
			"x":    s.Labels,
			"y":    s.Values,
		}
	default:
		t := map[string]any{
			"type":         "bar",
			"name":         s.Name,
			"text":         s.Values,
			"texttemplate": "%{value:.2s}",
		}
		if c.Horizontal {
			t["orientation"] = "h"
			t["x"], t["y"] = s.Values, s.Labels
		} else {
			t["x"], t["y"] = s.Labels, s.Values
		}
		return t
	}
}

func monthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}

func (c Chart) layout() map[string]any {
	l := map[string]any{
		"title":      map[string]any{"text": c.Title},
		"showlegend": c.Kind == KindLine,
		"margin":     map[string]any{"l": 40, "r": 20, "t": 50, "b": 40},
	}
	switch c.Kind {
	case KindGeo:
		l["geo"] = map[string]any{"scope": "south america", "showcountries": true}
	case KindLine:
		yaxis := map[string]any{"title": map[string]any{"text": c.ValueTitle}}
		if c.RangeMax > 0 {
			yaxis["range"] = []float64{0, c.RangeMax}
		}
		l["yaxis"] = yaxis
		// Month-name categories would otherwise be ordered by first appearance.
		l["xaxis"] = map[string]any{"categoryorder": "array", "categoryarray": monthNames()}
	case KindBar:
		axis := map[string]any{"title": map[string]any{"text": c.ValueTitle}}
		if c.Horizontal {
			l["xaxis"] = axis
			l["yaxis"] = map[string]any{"autorange": "reversed"}
		} else {
			l["yaxis"] = axis
		}
	}
	return l
}
