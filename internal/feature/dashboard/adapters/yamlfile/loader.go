// Package yamlfile はダッシュボード定義をYAMLファイルから読み込みます。
package yamlfile

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dashboard_backend/internal/feature/dashboard/domain"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Parse はYAMLをDashboardにデコードし、検証します。
// variables の値に含まれる ${VAR} は環境変数で展開されます。
func Parse(data []byte) (*domain.Dashboard, error) {
	var d domain.Dashboard
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse dashboard: %w", err)
	}
	for k, v := range d.Variables {
		d.Variables[k] = os.ExpandEnv(v)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load はpathのファイルを読み込みます。
func Load(path string) (*domain.Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dashboard: %w", err)
	}
	return Parse(data)
}

// Watch はpathの変更を監視し、読み込みに成功するたびにonChangeを呼びます。
// 不正な内容は警告を出して無視します。ctxが終了するまでブロックします。
//
// エディタは一時ファイルからのrenameで保存することが多いため、ディレクトリを監視します。
func Watch(ctx context.Context, path string, onChange func(*domain.Dashboard)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			d, err := Load(abs)
			if err != nil {
				slog.Warn("ignoring invalid dashboard update", "path", abs, "error", err)
				continue
			}
			slog.Info("dashboard reloaded", "path", abs, "widgets", len(d.Widgets))
			onChange(d)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("dashboard watcher error", "error", err)
		}
	}
}
