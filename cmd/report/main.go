// Command report runs one render pass against the configured source and prints the
// aggregates as terminal tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/fetcher"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/report"
	"sales-dashboard/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	top := flag.Int("top", cfg.Dashboard.DefaultTopN, "number of sellers to list (2-10)")
	region := flag.String("regiao", "", "region filter forwarded to the source")
	year := flag.Int("ano", 0, "year filter forwarded to the source")
	flag.Parse()

	if *year < 0 {
		return errors.BadRequest("ano must be a positive year")
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Source.Timeout)
	defer cancel()

	analytics := services.NewAnalytics(fetcher.New(cfg.Source, logger), logger)
	d, err := analytics.RenderPass(ctx, fetcher.Query{Region: *region, Year: *year})
	if err != nil {
		return err
	}

	report.Render(os.Stdout, d, report.Options{
		TopN:           *top,
		CurrencyPrefix: cfg.Dashboard.CurrencyPrefix,
	})
	return nil
}
