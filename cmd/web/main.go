package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/fetcher"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"source_url", cfg.Source.URL,
		"addr", cfg.Address(),
	)

	analytics := services.NewAnalytics(fetcher.New(cfg.Source, logger), logger)
	srv := server.NewServer(analytics, cfg.Dashboard, logger)

	compression, err := middleware.Compression(cfg.Security)
	if err != nil {
		logger.Error("failed to build compression middleware", "error", err)
		os.Exit(1)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		compression,
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("render pass totals at shutdown", "stats", analytics.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
