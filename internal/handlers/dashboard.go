package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 30 * time.Second

type DashboardHandlers struct {
	analytics *services.Analytics
	cfg       config.DashboardConfig
	logger    *slog.Logger
}

func NewDashboardHandlers(analytics *services.Analytics, cfg config.DashboardConfig, logger *slog.Logger) *DashboardHandlers {
	return &DashboardHandlers{
		analytics: analytics,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleDashboard runs one full render pass and writes the page. ?top= seeds the
// sellers control; ?regiao= and ?ano= are forwarded to the source.
func (h *DashboardHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	q, err := parseQuery(r)
	if err != nil {
		h.writeErrorPage(ctx, w, err)
		return
	}

	d, err := h.analytics.RenderPass(ctx, q)
	if err != nil {
		h.writeErrorPage(ctx, w, err)
		return
	}

	view := templates.NewDashboardView(d, h.cfg, parseTopN(r, "top", h.cfg.DefaultTopN), q)
	if err := templates.Dashboard(view).Render(ctx, w); err != nil {
		h.logger.Error("render dashboard",
			"error", err,
			"request_id", observability.GetRequestID(ctx),
		)
	}
}

func (h *DashboardHandlers) writeErrorPage(ctx context.Context, w http.ResponseWriter, err error) {
	w.WriteHeader(errors.StatusOf(err))
	page := templates.ErrorPage(h.cfg.Title, string(errors.CodeOf(err)), err.Error())
	if renderErr := page.Render(ctx, w); renderErr != nil {
		h.logger.Error("render error page",
			"error", renderErr,
			"cause", err,
			"request_id", observability.GetRequestID(ctx),
		)
	}
}
