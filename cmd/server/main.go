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
	jwtmw "stock_signals/internal/platform/jwt"
	"stock_signals/internal/platform/logger"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init("server", cfg.Log.Level, cfg.Log.Format, os.Stdout)

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

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		if cfg.IsProduction() {
			slog.Error("JWT_SECRET is not set")
			os.Exit(1)
		}
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.NewRouter(c.Handlers, c.Metrics, c.Hub, c.ReadyChecks()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ジョブは同じ Container の Hub と Recorder に配信するため、
	// /ws/signals と /metrics を公開するこのプロセスで実行する
	if !cfg.Schedule.Detached {
		s, err := c.StartScheduler(ctx)
		if err != nil {
			slog.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer s.Stop()
	} else {
		slog.Info("scheduler detached, jobs run in the worker")
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr, "env", cfg.Env, "provider", cfg.Market.Provider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
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
