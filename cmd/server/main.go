package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard_backend/internal/app/config"
	"dashboard_backend/internal/app/di"
	"dashboard_backend/internal/app/router"
	"dashboard_backend/internal/app/worker"
	"dashboard_backend/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.FinnhubAPIKey == "" {
		slog.Warn("FINNHUB_API_KEY is not set. Series requests must send X-Api-Key.")
	}

	// Redis（未設定・接続失敗時はメモリキャッシュ）
	rdb := di.NewRedisClient(ctx, cfg)
	c := di.NewContainer(cfg, rdb)
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()

	h := c.Handlers
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(h.Series, h.Custom, h.Relay, c.Metrics.Handler(), rdb),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	// DASHBOARD_FILE があればポーラーも同じプロセスで動かす
	if cfg.DashboardFile != "" {
		g.Go(func() error {
			return worker.RunDashboard(gctx, c.NewPoller(), cfg.DashboardFile, cfg.RunOnStart)
		})
	}

	return g.Wait()
}
