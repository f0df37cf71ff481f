package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"stock_signals/internal/app/di"
	"stock_signals/internal/config"
	"stock_signals/internal/platform/logger"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init("ingest", cfg.Log.Level, cfg.Log.Format, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Schedule.JobTimeout)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	c, err := di.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SeedReference(ctx); err != nil {
		return err
	}

	symbols, err := c.Symbols.ListActiveCodes(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := c.Ingest.IngestAll(ctx, symbols); err != nil {
		return err
	}
	slog.Info("ingest ok", "symbols", len(symbols), "intervals", cfg.Market.IngestIntervals, "elapsed", time.Since(start))
	return nil
}
