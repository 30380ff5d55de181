package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
)

type Server struct {
	mux               *http.ServeMux
	logger            *slog.Logger
	dashboardHandlers *handlers.DashboardHandlers
	apiHandlers       *handlers.APIHandlers
	sseHandlers       *handlers.SSEHandlers
	exportHandlers    *handlers.ExportHandlers
}

func NewServer(analytics *services.Analytics, cfg config.DashboardConfig, logger *slog.Logger) *Server {
	s := &Server{
		mux:               http.NewServeMux(),
		logger:            logger,
		dashboardHandlers: handlers.NewDashboardHandlers(analytics, cfg, logger),
		apiHandlers:       handlers.NewAPIHandlers(analytics, cfg, logger),
		sseHandlers:       handlers.NewSSEHandlers(analytics, cfg, logger),
		exportHandlers:    handlers.NewExportHandlers(analytics, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard
	s.mux.HandleFunc("GET /{$}", s.dashboardHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /sse/sellers", s.sseHandlers.HandleSellers)
	s.mux.HandleFunc("GET /export.xlsx", s.exportHandlers.HandleWorkbook)

	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/revenue/states", s.apiHandlers.HandleRevenueByState)
	s.mux.HandleFunc("GET /api/revenue/months", s.apiHandlers.HandleRevenueByMonth)
	s.mux.HandleFunc("GET /api/revenue/categories", s.apiHandlers.HandleRevenueByCategory)
	s.mux.HandleFunc("GET /api/count/states", s.apiHandlers.HandleCountByState)
	s.mux.HandleFunc("GET /api/count/months", s.apiHandlers.HandleCountByMonth)
	s.mux.HandleFunc("GET /api/count/categories", s.apiHandlers.HandleCountByCategory)
	s.mux.HandleFunc("GET /api/sellers", s.apiHandlers.HandleSellers)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
