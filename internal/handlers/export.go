package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

type ExportHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	now       func() time.Time
}

func NewExportHandlers(analytics *services.Analytics, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{
		analytics: analytics,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleWorkbook runs a render pass and returns every table as an XLSX download.
// The workbook is built in memory first so a failure still yields a JSON error.
func (h *ExportHandlers) HandleWorkbook(w http.ResponseWriter, r *http.Request) {
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

	var buf bytes.Buffer
	if err := export.Write(&buf, d); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "build workbook"), requestID)
		return
	}

	filename := fmt.Sprintf("sales-%s.xlsx", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write workbook", "error", err, "request_id", requestID)
	}
}
