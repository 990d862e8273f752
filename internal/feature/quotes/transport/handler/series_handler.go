// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dashboard_backend/internal/feature/quotes/domain/entity"
	"dashboard_backend/internal/feature/quotes/transport/http/dto"
	"dashboard_backend/internal/platform/http/httperr"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader はクライアントがAPIキーを渡すためのヘッダーです。
const APIKeyHeader = "X-Api-Key"

// SeriesUsecase は時系列取得のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SeriesUsecase interface {
	FetchSeries(ctx context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error)
}

// SeriesHandler は時系列データのHTTPリクエストを処理します。
type SeriesHandler struct {
	uc         SeriesUsecase
	defaultKey string
	now        func() time.Time
}

// NewSeriesHandler はSeriesHandlerを生成します。
// defaultKey はリクエストにAPIキーがない場合に使われます（空でも可）。
func NewSeriesHandler(uc SeriesUsecase, defaultKey string) *SeriesHandler {
	return &SeriesHandler{uc: uc, defaultKey: defaultKey, now: time.Now}
}

// GetSeries は銘柄の現在値と履歴をJSONで返します。
//
// エンドポイント例:
// GET /series/:symbol?range=1W
// GET /series/:symbol?resolution=D&from=1700000000&to=1702592000
//
// range が指定された場合は resolution/from/to より優先されます。
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	q := entity.SeriesQuery{
		Symbol:     strings.TrimSpace(c.Param("symbol")),
		Resolution: c.Query("resolution"),
	}
	if q.Symbol == "" {
		httperr.BadRequest(c, "symbol is required")
		return
	}

	if r := c.Query("range"); r != "" {
		tr, err := entity.ParseTimeRange(r)
		if err != nil {
			httperr.BadRequest(c, err.Error())
			return
		}
		q.Resolution, q.From, q.To = entity.RangeParams(tr, h.now())
	} else {
		var ok bool
		if q.From, ok = parseEpoch(c.Query("from")); !ok {
			httperr.BadRequest(c, "from must be unix seconds")
			return
		}
		if q.To, ok = parseEpoch(c.Query("to")); !ok {
			httperr.BadRequest(c, "to must be unix seconds")
			return
		}
	}

	apiKey := c.GetHeader(APIKeyHeader)
	if apiKey == "" {
		apiKey = h.defaultKey
	}

	s, err := h.uc.FetchSeries(c.Request.Context(), q, apiKey)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(s))
}

// parseEpoch は空文字を0（省略）として扱います。
func parseEpoch(s string) (int64, bool) {
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func toResponse(s *entity.Series) dto.SeriesResponse {
	out := dto.SeriesResponse{
		Symbol:        s.Symbol,
		Price:         s.Price,
		Change:        s.Change,
		ChangePercent: s.ChangePercent,
		Currency:      s.Currency,
		History:       make([]dto.PointResponse, 0, len(s.History)),
	}
	for _, p := range s.History {
		out.History = append(out.History, dto.PointResponse{
			Time:   p.Time.UTC().Format(time.RFC3339),
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		})
	}
	return out
}
