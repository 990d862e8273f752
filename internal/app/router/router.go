package router

import (
	"context"
	"net/http"
	"time"

	customhandler "dashboard_backend/internal/feature/customapi/transport/handler"
	quoteshandler "dashboard_backend/internal/feature/quotes/transport/handler"
	"dashboard_backend/internal/platform/http/handler"
	"dashboard_backend/internal/platform/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// readyTimeout は /readyz の依存先確認のタイムアウトです。
const readyTimeout = 2 * time.Second

func NewRouter(series *quoteshandler.SeriesHandler, custom *customhandler.CustomHandler,
	relay *customhandler.RelayHandler, metrics http.Handler, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(readyTimeout, readyChecks(rdb)...))
	r.GET("/metrics", gin.WrapH(metrics))

	// 銘柄の時系列（クエリ: range または resolution/from/to）
	r.GET("/series/:symbol", series.GetSeries)
	// 任意のJSON APIの取得とフィールド抽出
	r.POST("/custom/query", custom.Query)
	// 許可ホストへの中継
	r.GET("/api/proxy", relay.Relay)

	return r
}

func readyChecks(rdb *redis.Client) []handler.Check {
	if rdb == nil {
		return nil
	}
	return []handler.Check{{
		Name: "redis",
		Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}}
}
