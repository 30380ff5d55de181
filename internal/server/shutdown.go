package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/config"
)

const hookTimeout = 10 * time.Second

type ShutdownHook func(ctx context.Context) error

// GracefulServer runs an http.Server until the context ends or SIGINT/SIGTERM arrives,
// then drains it and runs the registered hooks concurrently.
type GracefulServer struct {
	server *http.Server
	logger *slog.Logger
	cfg    config.ServerConfig
	hooks  []ShutdownHook
	mu     sync.Mutex
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, cfg config.ServerConfig) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger,
		cfg:    cfg,
	}
}

func (gs *GracefulServer) RegisterShutdownHook(fn ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, fn)
}

func (gs *GracefulServer) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		gs.logger.Info("starting server",
			"addr", gs.server.Addr,
			"read_timeout", gs.cfg.ReadTimeout,
			"write_timeout", gs.cfg.WriteTimeout,
		)
		serverErrors <- gs.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		gs.logger.Info("shutdown requested", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), gs.cfg.ShutdownTimeout)
		defer cancel()

		return gs.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting requests and runs every hook; the first failure is returned.
func (gs *GracefulServer) Shutdown(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown", "timeout", gs.cfg.ShutdownTimeout)

	gs.mu.Lock()
	hooks := append([]ShutdownHook(nil), gs.hooks...)
	gs.mu.Unlock()

	var g errgroup.Group
	for i, hook := range hooks {
		g.Go(func() error {
			hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
			defer cancel()

			if err := hook(hookCtx); err != nil {
				gs.logger.Error("shutdown hook failed", "hook_index", i, "error", err)
				return fmt.Errorf("shutdown hook %d failed: %w", i, err)
			}
			gs.logger.Debug("shutdown hook completed", "hook_index", i)
			return nil
		})
	}

	g.Go(func() error {
		if err := gs.server.Shutdown(ctx); err != nil {
			gs.logger.Error("HTTP server shutdown failed", "error", err)
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		gs.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	gs.logger.Info("graceful shutdown completed")
	return nil
}
