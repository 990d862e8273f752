package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard_backend/internal/app/config"
	"dashboard_backend/internal/app/di"
	"dashboard_backend/internal/app/worker"
	"dashboard_backend/internal/feature/dashboard/adapters/yamlfile"
	"dashboard_backend/internal/feature/dashboard/usecase"
	"dashboard_backend/internal/platform/logger"
)

// onceTimeout は -once 実行全体の上限です。
const onceTimeout = 5 * time.Minute

func main() {
	file := flag.String("file", "", "dashboard definition (defaults to DASHBOARD_FILE)")
	once := flag.Bool("once", false, "refresh every widget once and exit")
	flag.Parse()

	if err := run(*file, *once); err != nil {
		slog.Error("poller exited", "error", err)
		os.Exit(1)
	}
}

func run(file string, once bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	path := file
	if path == "" {
		path = cfg.DashboardFile
	}
	if path == "" {
		return errors.New("dashboard file is required (-file or DASHBOARD_FILE)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := di.NewContainer(cfg, di.NewRedisClient(ctx, cfg))
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()

	p := c.NewPoller()
	if once {
		return refreshOnce(ctx, p, path)
	}
	return worker.RunDashboard(ctx, p, path, cfg.RunOnStart)
}

// refreshOnce は全ウィジェットを一度だけ更新し、失敗したウィジェットがあればエラーを返します。
func refreshOnce(ctx context.Context, p *usecase.Poller, path string) error {
	d, err := yamlfile.Load(path)
	if err != nil {
		return err
	}
	if err := p.Load(d); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, onceTimeout)
	defer cancel()
	p.RefreshAll(ctx)

	failed := 0
	for _, w := range d.Widgets {
		if r, ok := p.Latest(w.ID); !ok || r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d widgets failed", failed, len(d.Widgets))
	}
	slog.Info("refresh ok", "widgets", len(d.Widgets))
	return nil
}
