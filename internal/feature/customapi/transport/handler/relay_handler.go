package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"dashboard_backend/internal/feature/customapi/domain"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// BrowserUserAgent はブラウザ以外からのアクセスを拒否する上流向けのUser-Agentです。
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// relayBodyLimit はリレーするボディの上限です。
const relayBodyLimit = 10 << 20

// RelayHandler は許可されたホストへのGETを中継します。
// User-Agentの付与とリダイレクトの扱いは渡されたHTTPクライアントの設定に従います。
type RelayHandler struct {
	client *http.Client
	hosts  domain.HostList
}

// NewRelayHandler はRelayHandlerを生成します。hosts が空の場合はすべて拒否します。
func NewRelayHandler(client *http.Client, hosts domain.HostList) *RelayHandler {
	return &RelayHandler{client: client, hosts: hosts}
}

// Relay はクエリパラメータ url の内容を取得して返します。
//
// エンドポイント例:
// GET /api/proxy?url=https%3A%2F%2Fstock.indianapi.in%2Fstock%3Fname%3DTCS
//
// JSONであれば上流のステータスでそのまま返し、JSONでなければ
// {status:"error", message, code} に包みます。上流に到達できない場合は500です。
func (h *RelayHandler) Relay(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}
	if !h.hosts.Match(target) {
		c.JSON(http.StatusForbidden, gin.H{"error": "host is not allowed"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Header.Set("Accept", "application/json")
	if key := c.GetHeader("X-Api-Key"); key != "" {
		req.Header.Set("X-Api-Key", key)
	}

	res, err := h.client.Do(req)
	if err != nil {
		slog.Warn("relay request failed", "url", target, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(res.Body, relayBodyLimit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if gjson.ValidBytes(body) {
		c.Data(res.StatusCode, "application/json; charset=utf-8", body)
		return
	}

	msg := string(body)
	if msg == "" {
		msg = fmt.Sprintf("API returned %d %s", res.StatusCode, http.StatusText(res.StatusCode))
	}
	c.JSON(res.StatusCode, gin.H{
		"status":  "error",
		"message": msg,
		"code":    res.StatusCode,
	})
}
