// Package usecase はダッシュボードのウィジェットを定期的に更新します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	customusecase "dashboard_backend/internal/feature/customapi/usecase"
	"dashboard_backend/internal/feature/dashboard/domain"
	"dashboard_backend/internal/feature/quotes/domain/entity"
	"dashboard_backend/internal/shared/fetcherr"
	"dashboard_backend/internal/shared/retry"

	"github.com/robfig/cron/v3"
)

// SeriesFetcher は銘柄ウィジェットのデータを取得します。
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error)
}

// QueryRunner はカスタムウィジェットのデータを取得します。
type QueryRunner interface {
	Run(ctx context.Context, q customusecase.Query) (*customusecase.QueryResult, error)
}

// Result はウィジェット1回分の更新結果です。
type Result struct {
	WidgetID string
	At       time.Time
	Series   *entity.Series
	Query    *customusecase.QueryResult
	Err      error
}

// Poller はウィジェットごとに更新間隔でジョブを登録し、最新の結果を保持します。
type Poller struct {
	series SeriesFetcher
	query  QueryRunner
	policy retry.Policy
	apiKey string
	now    func() time.Time

	cron *cron.Cron
	ctx  context.Context

	mu        sync.RWMutex
	dashboard *domain.Dashboard
	entries   []cron.EntryID
	latest    map[string]Result
}

// NewPoller はPollerを生成します。apiKey は銘柄ウィジェットで使われます。
func NewPoller(series SeriesFetcher, query QueryRunner, policy retry.Policy, apiKey string) *Poller {
	return &Poller{
		series: series,
		query:  query,
		policy: policy,
		apiKey: apiKey,
		now:    time.Now,
		// 前回の更新（リトライ含む）が終わっていなければ次回をスキップする
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    context.Background(),
		latest: make(map[string]Result),
	}
}

// Load はダッシュボードを差し替え、ジョブを登録し直します。
// 削除されたウィジェットの結果は破棄されます。
func (p *Poller) Load(d *domain.Dashboard) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.entries {
		p.cron.Remove(id)
	}
	p.entries = p.entries[:0]

	keep := make(map[string]Result, len(d.Widgets))
	for _, w := range d.Widgets {
		spec := fmt.Sprintf("@every %s", w.Interval())
		id, err := p.cron.AddFunc(spec, func() { p.Refresh(p.jobContext(), w.ID) })
		if err != nil {
			return fmt.Errorf("schedule widget %q: %w", w.ID, err)
		}
		p.entries = append(p.entries, id)
		if r, ok := p.latest[w.ID]; ok {
			keep[w.ID] = r
		}
	}
	p.latest = keep
	p.dashboard = d
	slog.Info("dashboard scheduled", "name", d.Name, "widgets", len(d.Widgets))
	return nil
}

// Start はスケジューラーを開始します。ctx はジョブの実行に使われます。
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
	p.cron.Start()
}

func (p *Poller) jobContext() context.Context {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ctx
}

// Stop はスケジューラーを停止し、実行中のジョブの終了を待ちます。
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
}

// RefreshAll は全ウィジェットを直ちに順番に更新します。
func (p *Poller) RefreshAll(ctx context.Context) {
	p.mu.RLock()
	d := p.dashboard
	p.mu.RUnlock()
	if d == nil {
		return
	}
	for _, w := range d.Widgets {
		if ctx.Err() != nil {
			return
		}
		p.Refresh(ctx, w.ID)
	}
}

// Refresh はウィジェット1つを更新し、結果を記録します。
func (p *Poller) Refresh(ctx context.Context, widgetID string) Result {
	p.mu.RLock()
	d := p.dashboard
	p.mu.RUnlock()

	w, ok := findWidget(d, widgetID)
	if !ok {
		return Result{WidgetID: widgetID, At: p.now(), Err: fmt.Errorf("unknown widget %q", widgetID)}
	}

	res := Result{WidgetID: w.ID}
	res.Err = p.policy.Do(ctx, func(ctx context.Context) error {
		if w.IsCustom() {
			qr, err := p.query.Run(ctx, customusecase.Query{
				URL:         w.APIURL,
				Headers:     w.Headers,
				Variables:   d.Variables,
				Fields:      w.SelectedFields,
				Formatting:  w.FieldFormatting(),
				DisplayMode: customusecase.DisplayMode(w.DisplayMode),
			})
			res.Query = qr
			return err
		}
		resolution, from, to := entity.RangeParams(w.TimeRange(), p.now())
		s, err := p.series.FetchSeries(ctx, entity.SeriesQuery{
			Symbol: w.Symbol, Resolution: resolution, From: from, To: to,
		}, p.apiKey)
		res.Series = s
		return err
	})
	res.At = p.now()

	logResult(w, res)

	p.mu.Lock()
	if _, still := findWidget(p.dashboard, w.ID); still {
		p.latest[w.ID] = res
	}
	p.mu.Unlock()
	return res
}

// Latest はウィジェットの最新の結果を返します。
func (p *Poller) Latest(widgetID string) (Result, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.latest[widgetID]
	return r, ok
}

// ScheduledCount は登録済みのジョブ数を返します。
func (p *Poller) ScheduledCount() int {
	return len(p.cron.Entries())
}

func findWidget(d *domain.Dashboard, id string) (domain.Widget, bool) {
	if d == nil {
		return domain.Widget{}, false
	}
	for _, w := range d.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return domain.Widget{}, false
}

func logResult(w domain.Widget, res Result) {
	if res.Err != nil {
		slog.Warn("widget refresh failed", "widget", w.ID, "kind", fetcherr.KindOf(res.Err), "error", res.Err)
		return
	}
	switch {
	case res.Series != nil:
		slog.Info("widget refreshed", "widget", w.ID, "symbol", res.Series.Symbol,
			"price", res.Series.Price, "change_percent", res.Series.ChangePercent, "points", len(res.Series.History))
	case res.Query != nil:
		attrs := []any{"widget", w.ID, "fields", len(res.Query.Available)}
		for _, v := range res.Query.Values {
			attrs = append(attrs, v.Path, v.Display)
		}
		if len(res.Query.Series) > 0 {
			attrs = append(attrs, "points", len(res.Query.Series))
		}
		slog.Info("widget refreshed", attrs...)
	}
}
