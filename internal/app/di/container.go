// Package di provides dependency injection factories for creating application components.
package di

import (
	"net/http"

	"dashboard_backend/internal/app/config"
	customdomain "dashboard_backend/internal/feature/customapi/domain"
	customhandler "dashboard_backend/internal/feature/customapi/transport/handler"
	customusecase "dashboard_backend/internal/feature/customapi/usecase"
	dashboardusecase "dashboard_backend/internal/feature/dashboard/usecase"
	"dashboard_backend/internal/feature/quotes/adapters/finnhub"
	quoteshandler "dashboard_backend/internal/feature/quotes/transport/handler"
	quotesusecase "dashboard_backend/internal/feature/quotes/usecase"
	platformhttp "dashboard_backend/internal/platform/http"
	"dashboard_backend/internal/platform/metrics"
	"dashboard_backend/internal/shared/ratelimiter"
	"dashboard_backend/internal/shared/retry"

	"github.com/redis/go-redis/v9"
)

// queueBuffer はRequestQueueに積める待機中リクエストの上限です。
const queueBuffer = 256

// Container はプロセスで共有するコンポーネントをまとめます。
type Container struct {
	Config   config.Config
	Metrics  *metrics.Recorder
	Redis    *redis.Client
	Queue    *ratelimiter.RequestQueue
	Series   *quotesusecase.SeriesUsecase
	Query    *customusecase.QueryUsecase
	Handlers Handlers
}

// Handlers はルーターに渡すHTTPハンドラーです。
type Handlers struct {
	Series *quoteshandler.SeriesHandler
	Custom *customhandler.CustomHandler
	Relay  *customhandler.RelayHandler
}

// NewContainer は設定からすべてのコンポーネントを組み立てます。rdb は nil でも構いません。
func NewContainer(cfg config.Config, rdb *redis.Client) *Container {
	rec := metrics.NewRecorder(cfg.MetricsNamespace)
	hosts := customdomain.ParseHostList(cfg.RelayHosts)

	queue := ratelimiter.NewRequestQueue(cfg.QueueSpacing, queueBuffer)
	market := finnhub.NewClient(finnhub.Config{
		BaseURL:        cfg.FinnhubBaseURL,
		Timeout:        cfg.HTTPTimeout,
		CallsPerMinute: cfg.FinnhubCallsPerMinute,
	}, platformhttp.NewHTTPClient(cfg.HTTPTimeout, platformhttp.WithMaxIdleConnsPerHost(4)))
	series := quotesusecase.NewSeriesUsecase(market,
		NewResultStore(rdb, cfg, "series", rec), queue,
		quotesusecase.WithObserver(rec))

	fetcher := customusecase.NewFetcher(
		newCustomClient(cfg),
		NewResultStore(rdb, cfg, "custom", rec),
		customusecase.RelayConfig{
			Hosts:  hosts,
			URL:    cfg.RelayURL,
			Client: platformhttp.NewHTTPClient(cfg.HTTPTimeout),
		},
		rec)
	query := customusecase.NewQueryUsecase(fetcher)

	return &Container{
		Config:  cfg,
		Metrics: rec,
		Redis:   rdb,
		Queue:   queue,
		Series:  series,
		Query:   query,
		Handlers: Handlers{
			Series: quoteshandler.NewSeriesHandler(series, cfg.FinnhubAPIKey),
			Custom: customhandler.NewCustomHandler(query),
			Relay:  customhandler.NewRelayHandler(newRelayClient(cfg), hosts),
		},
	}
}

// NewPoller はダッシュボード用のポーラーを生成します。銘柄ウィジェットはFINNHUB_API_KEYを使います。
func (c *Container) NewPoller() *dashboardusecase.Poller {
	return dashboardusecase.NewPoller(c.Series, c.Query, retry.DefaultPolicy(), c.Config.FinnhubAPIKey)
}

// Close はキューを停止し、Redis接続を閉じます。
func (c *Container) Close() error {
	c.Queue.Close()
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}

// newCustomClient はカスタムAPI取得用のクライアントです。
// ALLOW_PRIVATE_HOSTS が無効な場合、内部ネットワーク宛ての接続を拒否します。
func newCustomClient(cfg config.Config) *http.Client {
	if cfg.AllowPrivateHosts {
		return platformhttp.NewHTTPClient(cfg.HTTPTimeout)
	}
	return platformhttp.NewHTTPClient(cfg.HTTPTimeout, platformhttp.WithPublicAddressesOnly())
}

func newRelayClient(cfg config.Config) *http.Client {
	opts := []platformhttp.Option{
		platformhttp.WithUserAgent(customhandler.BrowserUserAgent),
		platformhttp.WithoutRedirects(),
	}
	if !cfg.AllowPrivateHosts {
		opts = append(opts, platformhttp.WithPublicAddressesOnly())
	}
	return platformhttp.NewHTTPClient(cfg.HTTPTimeout, opts...)
}
