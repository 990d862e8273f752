// Package domain はダッシュボード定義（ウィジェットの一覧）を表します。
package domain

import (
	"errors"
	"fmt"
	"time"

	"dashboard_backend/internal/feature/quotes/domain/entity"
	"dashboard_backend/internal/shared/format"
)

// WidgetType はウィジェットの種類です。
type WidgetType string

const (
	WidgetChart  WidgetType = "CHART"
	WidgetTable  WidgetType = "TABLE"
	WidgetCard   WidgetType = "CARD"
	WidgetCustom WidgetType = "CUSTOM"
)

const (
	// DefaultStockRefresh は銘柄ウィジェットの既定の更新間隔です。
	DefaultStockRefresh = 60 * time.Second
	// DefaultCustomRefresh はカスタムウィジェットの既定の更新間隔です。
	DefaultCustomRefresh = 30 * time.Second
	// MinRefresh より短い間隔は切り上げます。
	MinRefresh = 5 * time.Second
)

// ErrInvalidDashboard は定義の検証に失敗した場合に返されます。
var ErrInvalidDashboard = errors.New("invalid dashboard")

// Widget は1つのウィジェット定義です。
type Widget struct {
	ID              string            `yaml:"id"`
	Title           string            `yaml:"title"`
	Type            WidgetType        `yaml:"type"`
	Symbol          string            `yaml:"symbol"`
	Range           string            `yaml:"range"`
	APIURL          string            `yaml:"api_url"`
	Headers         map[string]string `yaml:"headers"`
	SelectedFields  []string          `yaml:"selected_fields"`
	DisplayMode     string            `yaml:"display_mode"`
	RefreshInterval int               `yaml:"refresh_interval"` // 秒
	Formatting      *format.Spec      `yaml:"formatting"`
}

// Dashboard はウィジェットの集合と、URL/ヘッダーに埋め込む変数です。
type Dashboard struct {
	Name      string            `yaml:"name"`
	Variables map[string]string `yaml:"variables"`
	Widgets   []Widget          `yaml:"widgets"`
}

// IsCustom は任意のJSON APIを使うウィジェットかを返します。
func (w Widget) IsCustom() bool { return w.Type == WidgetCustom }

// Interval は更新間隔を返します。
func (w Widget) Interval() time.Duration {
	if w.RefreshInterval <= 0 {
		if w.IsCustom() {
			return DefaultCustomRefresh
		}
		return DefaultStockRefresh
	}
	d := time.Duration(w.RefreshInterval) * time.Second
	if d < MinRefresh {
		return MinRefresh
	}
	return d
}

// TimeRange は表示期間を返します。未指定の場合は1Mです。
func (w Widget) TimeRange() entity.TimeRange {
	if w.Range == "" {
		return entity.Range1M
	}
	r, err := entity.ParseTimeRange(w.Range)
	if err != nil {
		return entity.Range1M
	}
	return r
}

// FieldFormatting はウィジェット共通のフォーマットを選択フィールドごとの設定に展開します。
func (w Widget) FieldFormatting() map[string]format.Spec {
	if w.Formatting == nil {
		return nil
	}
	out := make(map[string]format.Spec, len(w.SelectedFields))
	for _, f := range w.SelectedFields {
		out[f] = *w.Formatting
	}
	return out
}

// Validate は定義全体を検証し、最初に見つかった問題を返します。
func (d *Dashboard) Validate() error {
	seen := make(map[string]struct{}, len(d.Widgets))
	for i, w := range d.Widgets {
		if w.ID == "" {
			return fmt.Errorf("%w: widget #%d has no id", ErrInvalidDashboard, i)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("%w: duplicate widget id %q", ErrInvalidDashboard, w.ID)
		}
		seen[w.ID] = struct{}{}

		if err := w.validate(); err != nil {
			return fmt.Errorf("%w: widget %q: %v", ErrInvalidDashboard, w.ID, err)
		}
	}
	return nil
}

func (w Widget) validate() error {
	switch w.Type {
	case WidgetChart, WidgetTable, WidgetCard:
		if w.Symbol == "" {
			return errors.New("symbol is required")
		}
		if w.Range != "" {
			if _, err := entity.ParseTimeRange(w.Range); err != nil {
				return err
			}
		}
	case WidgetCustom:
		if w.APIURL == "" {
			return errors.New("api_url is required")
		}
		switch w.DisplayMode {
		case "", "CARD", "TABLE", "CHART":
		default:
			return fmt.Errorf("unknown display_mode %q", w.DisplayMode)
		}
	default:
		return fmt.Errorf("unknown type %q", w.Type)
	}
	if w.Formatting != nil {
		if err := w.Formatting.Validate(); err != nil {
			return err
		}
	}
	if w.RefreshInterval < 0 {
		return errors.New("refresh_interval must not be negative")
	}
	return nil
}
