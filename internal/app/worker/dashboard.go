// Package worker はダッシュボードのポーリングをプロセスのライフサイクルに載せます。
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"dashboard_backend/internal/feature/dashboard/adapters/yamlfile"
	"dashboard_backend/internal/feature/dashboard/domain"
	"dashboard_backend/internal/feature/dashboard/usecase"
)

// RunDashboard はpathのダッシュボードを読み込んでポーリングを開始し、
// ファイルの変更を反映しながらctxが終了するまでブロックします。
// runOnStart が true の場合、開始直後に全ウィジェットを一度更新します。
func RunDashboard(ctx context.Context, p *usecase.Poller, path string, runOnStart bool) error {
	d, err := yamlfile.Load(path)
	if err != nil {
		return fmt.Errorf("load dashboard %s: %w", path, err)
	}
	if err := p.Load(d); err != nil {
		return err
	}

	p.Start(ctx)
	defer p.Stop()

	if runOnStart {
		p.RefreshAll(ctx)
	}

	return yamlfile.Watch(ctx, path, func(d *domain.Dashboard) {
		if err := p.Load(d); err != nil {
			slog.Error("failed to apply dashboard update", "path", path, "error", err)
		}
	})
}
