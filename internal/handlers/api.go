package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

var noStore = map[string]string{"Cache-Control": "no-store"}

type APIHandlers struct {
	analytics *services.Analytics
	cfg       config.DashboardConfig
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, cfg config.DashboardConfig, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		cfg:       cfg,
		logger:    logger,
	}
}

type Summary struct {
	TotalRevenue              string `json:"total_revenue"`
	TotalRevenueFormatted     string `json:"total_revenue_formatted"`
	TransactionCount          int    `json:"transaction_count"`
	TransactionCountFormatted string `json:"transaction_count_formatted"`
}

// serve runs a render pass and writes whatever pick selects from it.
func (h *APIHandlers) serve(w http.ResponseWriter, r *http.Request, pick func(d *services.Dashboard) any) {
	requestID := observability.GetRequestID(r.Context())

	q, err := parseQuery(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	d, err := h.analytics.RenderPass(r.Context(), q)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, pick(d), noStore)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(d *services.Dashboard) any {
		return Summary{
			TotalRevenue:              d.TotalRevenue.StringFixed(2),
			TotalRevenueFormatted:     services.Format(d.TotalRevenue.InexactFloat64(), h.cfg.CurrencyPrefix),
			TransactionCount:          d.TransactionCount,
			TransactionCountFormatted: services.Format(float64(d.TransactionCount), ""),
		}
	})
}

func (h *APIHandlers) HandleRevenueByState(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(d *services.Dashboard) any { return d.RevenueByState })
}

func (h *APIHandlers) HandleRevenueByMonth(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(d *services.Dashboard) any { return d.RevenueByMonth })
}

func (h *APIHandlers) HandleRevenueByCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(d *services.Dashboard) any { return d.RevenueByCategory })
}

func (h *APIHandlers) HandleCountByState(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(d *services.Dashboard) any { return d.CountByState })
}

func (h *APIHandlers) HandleCountByMonth(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(d *services.Dashboard) any { return d.CountByMonth })
}

func (h *APIHandlers) HandleCountByCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(d *services.Dashboard) any { return d.CountByCategory })
}

// HandleSellers returns the top ?n= sellers (clamped to 2..10) ranked by ?by=sum|count.
func (h *APIHandlers) HandleSellers(w http.ResponseWriter, r *http.Request) {
	by, err := parseMetric(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	n := parseTopN(r, "n", h.cfg.DefaultTopN)

	h.serve(w, r, func(d *services.Dashboard) any { return d.TopSellers(n, by) })
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
