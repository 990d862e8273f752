// Package config loads process configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config はサーバーとポーラーの共通設定です。
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	FinnhubAPIKey         string        `envconfig:"FINNHUB_API_KEY"`
	FinnhubBaseURL        string        `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1"`
	FinnhubCallsPerMinute int           `envconfig:"FINNHUB_CALLS_PER_MINUTE" default:"60"`
	HTTPTimeout           time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"60s"`
	CacheMaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"10000"`
	QueueSpacing    time.Duration `envconfig:"QUEUE_SPACING" default:"1s"`

	// RelayHosts はカンマ区切りの許可ホスト一覧です。
	RelayHosts string `envconfig:"RELAY_HOSTS" default:"stock.indianapi.in"`
	// RelayURL が設定されている場合、許可ホストへの取得はこのURL経由になります。
	RelayURL string `envconfig:"RELAY_URL"`
	// AllowPrivateHosts はカスタムAPIの取得先にループバックやプライベートアドレスを許可します。
	// ローカル開発用で、既定では拒否します。
	AllowPrivateHosts bool `envconfig:"ALLOW_PRIVATE_HOSTS" default:"false"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"dashboard"`

	// DashboardFile が空の場合、サーバーはポーラーを起動しません。
	DashboardFile string `envconfig:"DASHBOARD_FILE"`
	RunOnStart    bool   `envconfig:"RUN_ON_START" default:"true"`
}

// Load は環境変数から設定を読み込み、検証します。
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.QueueSpacing < 0 {
		return fmt.Errorf("QUEUE_SPACING must not be negative, got %s", c.QueueSpacing)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// Addr はListen用のアドレスを返します。
func (c Config) Addr() string { return ":" + c.Port }
