package handlers

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	cfg       config.DashboardConfig
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, cfg config.DashboardConfig, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		cfg:       cfg,
		logger:    logger,
	}
}

type sellersSignals struct {
	TopN *float64 `json:"topn"`
}

// topN reads the control's value from the Datastar signals, falling back to the
// configured default when absent.
func (h *SSEHandlers) topN(r *http.Request) int {
	var signals sellersSignals
	if err := datastar.ReadSignals(r, &signals); err != nil || signals.TopN == nil {
		return config.ClampTopN(h.cfg.DefaultTopN)
	}
	return config.ClampTopN(int(math.Round(*signals.TopN)))
}

// HandleSellers re-runs the render pass for the requested top-N and patches only the
// sellers view, plus the clamped value back into the control.
func (h *SSEHandlers) HandleSellers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n := h.topN(r)
	q, queryErr := parseQuery(r)

	sse := datastar.NewSSE(w, r)

	if queryErr != nil {
		h.patchError(sse, r, queryErr)
		return
	}

	d, err := h.analytics.RenderPass(ctx, q)
	if err != nil {
		h.patchError(sse, r, err)
		return
	}

	html, err := renderToString(ctx, templates.Sellers(templates.NewSellersView(d, n, q)))
	if err != nil {
		h.logger.Error("render sellers view", "error", err, "request_id", observability.GetRequestID(ctx))
		return
	}
	banner, err := renderToString(ctx, templates.ErrorBanner(""))
	if err != nil {
		h.logger.Error("render error banner", "error", err, "request_id", observability.GetRequestID(ctx))
		return
	}
	signals, err := json.Marshal(map[string]any{"topn": n})
	if err != nil {
		h.logger.Error("marshal sellers signals", "error", err)
		return
	}

	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch sellers view", "error", err)
		return
	}
	if err := sse.PatchElements(banner); err != nil {
		h.logger.Warn("clear error banner", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch sellers signals", "error", err)
		return
	}
	if err := sse.ExecuteScript(templates.RenderChartsScript(templates.SellersViewID)); err != nil {
		h.logger.Warn("execute chart script", "error", err)
	}
}

func (h *SSEHandlers) patchError(sse *datastar.ServerSentEventGenerator, r *http.Request, cause error) {
	requestID := observability.GetRequestID(r.Context())
	h.logger.Warn("sellers update failed",
		"error_code", errors.CodeOf(cause),
		"error", cause,
		"request_id", requestID,
	)

	html, err := renderToString(r.Context(), templates.ErrorBanner(cause.Error()))
	if err != nil {
		h.logger.Error("render error banner", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch error banner", "error", err, "request_id", requestID)
	}
}
