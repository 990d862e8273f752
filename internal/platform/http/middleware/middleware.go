// Package middleware はルーター共通のginミドルウェアです。
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダーです。
const RequestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

// RequestID はリクエストIDをコンテキストとレスポンスヘッダーに設定します。
// クライアントが送ったIDがあればそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID はRequestIDが設定したIDを返します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger は1リクエストごとにslogでアクセスログを出力します。
// 5xxはError、4xxはWarn、それ以外はInfoで記録します。
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"request_id", GetRequestID(c),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("request", attrs...)
		case status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	}
}
