// Package usecase は銘柄ごとの時系列データ取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"dashboard_backend/internal/feature/quotes/domain/entity"
	"dashboard_backend/internal/platform/cache"
	"dashboard_backend/internal/shared/fetcherr"
	"dashboard_backend/internal/shared/ratelimiter"
)

// DefaultWindow はFromが省略された場合の取得期間です。
const DefaultWindow = 30 * 24 * time.Hour

// MarketClient は現在値とローソク足を提供する外部APIを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketClient interface {
	GetQuote(ctx context.Context, symbol, apiKey string) (entity.Quote, error)
	GetCandles(ctx context.Context, symbol, resolution string, from, to int64, apiKey string) ([]entity.OHLCPoint, error)
}

// Observer は上流呼び出しとキュー待ち時間を記録します。
type Observer interface {
	Upstream(endpoint, outcome string)
	QueueWait(d time.Duration)
}

type nopObserver struct{}

func (nopObserver) Upstream(string, string)  {}
func (nopObserver) QueueWait(time.Duration) {}

// Option はSeriesUsecaseの設定を変更します。
type Option func(*SeriesUsecase)

// WithObserver はメトリクスの記録先を設定します。
func WithObserver(o Observer) Option {
	return func(u *SeriesUsecase) {
		if o != nil {
			u.obs = o
		}
	}
}

// WithClock はテスト用に現在時刻の取得方法を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(u *SeriesUsecase) { u.now = now }
}

// SeriesUsecase は銘柄の時系列を取得し、キャッシュとリクエストキューを経由させます。
type SeriesUsecase struct {
	market MarketClient
	store  cache.Store
	queue  ratelimiter.Scheduler
	obs    Observer
	now    func() time.Time
}

// NewSeriesUsecase はSeriesUsecaseを生成します。store と queue はプロセスで1つのものを渡してください。
func NewSeriesUsecase(market MarketClient, store cache.Store, queue ratelimiter.Scheduler, opts ...Option) *SeriesUsecase {
	u := &SeriesUsecase{
		market: market,
		store:  store,
		queue:  queue,
		obs:    nopObserver{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// FetchSeries は銘柄の現在値と履歴を正規化したSeriesを返します。
//
// キャッシュにない場合はキューに投入され、前のリクエストの完了後に実行されます。
// ローソク足の取得失敗は致命的ではなく、現在値から作った1点で履歴を補います。
func (u *SeriesUsecase) FetchSeries(ctx context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error) {
	if apiKey == "" {
		return nil, fetcherr.ErrMissingCredential
	}
	q = u.normalize(q)

	key := cache.BuildKey("series", q.Symbol, q.Resolution,
		strconv.FormatInt(q.From, 10), strconv.FormatInt(q.To, 10))

	if raw, ok := u.store.Get(ctx, key); ok {
		var s entity.Series
		err := json.Unmarshal(raw, &s)
		if err == nil {
			return &s, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key, "error", err)
	}

	enqueued := u.now()
	var series *entity.Series
	err := u.queue.Do(ctx, func(ctx context.Context) error {
		u.obs.QueueWait(u.now().Sub(enqueued))
		s, err := u.fetch(ctx, q, apiKey)
		if err != nil {
			return err
		}
		series = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(series); err != nil {
		slog.Warn("failed to encode series for cache", "symbol", q.Symbol, "error", err)
	} else {
		u.store.Put(ctx, key, raw)
	}
	return series, nil
}

// normalize はToを分単位に切り捨て、Fromを30日前に補完します。
// 同時刻付近のリクエストが同じキャッシュキーになるようにするためです。
func (u *SeriesUsecase) normalize(q entity.SeriesQuery) entity.SeriesQuery {
	if q.Resolution == "" {
		q.Resolution = entity.DefaultResolution
	}
	if q.To == 0 {
		q.To = u.now().Truncate(time.Minute).Unix()
	}
	if q.From == 0 {
		q.From = q.To - int64(DefaultWindow/time.Second)
	}
	return q
}

func (u *SeriesUsecase) fetch(ctx context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error) {
	quote, err := u.market.GetQuote(ctx, q.Symbol, apiKey)
	u.obs.Upstream("quote", outcome(err))
	if err != nil {
		return nil, err
	}

	history, err := u.market.GetCandles(ctx, q.Symbol, q.Resolution, q.From, q.To, apiKey)
	u.obs.Upstream("candles", outcome(err))
	if err != nil {
		slog.Warn("candle fetch failed, falling back to quote", "symbol", q.Symbol, "kind", fetcherr.KindOf(err), "error", err)
		history = nil
	}
	if len(history) == 0 {
		history = []entity.OHLCPoint{quote.Point(u.now().UTC())}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Time.Before(history[j].Time)
	})

	return &entity.Series{
		Symbol:        q.Symbol,
		Price:         quote.Current,
		Change:        quote.Change,
		ChangePercent: quote.PercentChange,
		Currency:      entity.DefaultCurrency,
		History:       history,
	}, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(fetcherr.KindOf(err))
}
