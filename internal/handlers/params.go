package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/fetcher"
	"sales-dashboard/internal/models"
)

// parseQuery reads the upstream filter. The parameter names match the source API.
func parseQuery(r *http.Request) (fetcher.Query, error) {
	values := r.URL.Query()
	q := fetcher.Query{Region: strings.TrimSpace(values.Get("regiao"))}

	if raw := strings.TrimSpace(values.Get("ano")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			return fetcher.Query{}, errors.BadRequest("ano must be a positive year")
		}
		q.Year = year
	}
	return q, nil
}

// parseTopN returns the clamped value of key, or fallback when absent or not a number.
func parseTopN(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return config.ClampTopN(fallback)
	}
	return config.ClampTopN(n)
}

func parseMetric(r *http.Request) (models.SellerMetric, error) {
	by, ok := models.ParseSellerMetric(r.URL.Query().Get("by"))
	if !ok {
		return "", errors.BadRequest("by must be one of: sum, count")
	}
	return by, nil
}

func renderToString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
