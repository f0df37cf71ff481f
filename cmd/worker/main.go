package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stock_signals/internal/app/di"
	"stock_signals/internal/app/router"
	"stock_signals/internal/config"
	"stock_signals/internal/platform/logger"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init("worker", cfg.Log.Level, cfg.Log.Format, os.Stdout)

	if !cfg.Schedule.Detached {
		slog.Warn("schedule.detached is false, the server already runs the jobs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := di.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()

	if err := c.SeedReference(ctx); err != nil {
		slog.Warn("reference seed failed", "error", err)
	}

	s, err := c.StartScheduler(ctx)
	if err != nil {
		slog.Error("failed to start scheduler", "error", err)
		return
	}
	defer s.Stop()

	// ジョブの配信先（Hub / Recorder）をこのプロセスから公開する
	srv := &http.Server{
		Addr:        cfg.Schedule.WorkerAddr,
		Handler:     router.NewWorkerRouter(c.Metrics, c.Hub, c.ReadyChecks()),
		ReadTimeout: cfg.Server.ReadTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("worker http listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker http failed", "error", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
