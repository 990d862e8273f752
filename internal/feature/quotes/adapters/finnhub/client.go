package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dashboard_backend/internal/feature/quotes/adapters/finnhub/dto"
	"dashboard_backend/internal/feature/quotes/domain/entity"
	"dashboard_backend/internal/feature/quotes/usecase"
	"dashboard_backend/internal/shared/fetcherr"
	"dashboard_backend/internal/shared/ratelimiter"
)

// Client はFinnhub APIから株価データを取得するMarketClient実装です。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// ClientがMarketClientを実装していることをコンパイル時に検証します。
var _ usecase.MarketClient = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。
// cfg.CallsPerMinute が正の場合、1分あたりの呼び出し回数を制限します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{
		cfg:     cfg,
		client:  client,
		limiter: ratelimiter.NewRateLimiter(cfg.CallsPerMinute, time.Minute),
	}
}

// GetQuote は現在値を取得します。
// 429はRateLimited、401/403はInvalidCredential、それ以外の非2xxはUpstreamErrorになります。
func (c *Client) GetQuote(ctx context.Context, symbol, apiKey string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.QuoteResponse
	if err := c.get(ctx, "/quote", q, apiKey, &body); err != nil {
		return entity.Quote{}, err
	}
	if body.Error != "" {
		return entity.Quote{}, fetcherr.NewUpstream(0, body.Error)
	}

	return entity.Quote{
		Current:       body.C,
		Change:        body.D,
		PercentChange: body.DP,
		High:          body.H,
		Low:           body.L,
		Open:          body.O,
		PreviousClose: body.PC,
		Timestamp:     body.T,
	}, nil
}

// GetCandles は期間内のローソク足を取得します。
// "no_data" の場合は空のスライスを返します。
func (c *Client) GetCandles(ctx context.Context, symbol, resolution string, from, to int64, apiKey string) ([]entity.OHLCPoint, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", resolution)
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))

	var body dto.CandleResponse
	if err := c.get(ctx, "/stock/candle", q, apiKey, &body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fetcherr.NewUpstream(0, body.Error)
	}
	if body.S == dto.StatusNoData {
		slog.Debug("finnhub returned no candles", "symbol", symbol, "resolution", resolution)
		return []entity.OHLCPoint{}, nil
	}

	n := len(body.T)
	if len(body.O) < n || len(body.H) < n || len(body.L) < n || len(body.C) < n {
		return nil, fetcherr.NewUpstream(0, "malformed candle response")
	}

	points := make([]entity.OHLCPoint, 0, n)
	for i := 0; i < n; i++ {
		var vol int64
		if i < len(body.V) {
			vol = int64(body.V[i])
		}
		points = append(points, entity.OHLCPoint{
			Time:   time.Unix(body.T[i], 0).UTC(),
			Open:   body.O[i],
			High:   body.H[i],
			Low:    body.L[i],
			Close:  body.C[i],
			Volume: vol,
		})
	}
	return points, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, apiKey string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	q.Set("token", apiKey)
	u := fmt.Sprintf("%s%s?%s", c.cfg.baseURL(), path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return &fetcherr.NetworkError{Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// 接続を再利用できるようにボディを読み捨てる
		_, _ = io.Copy(io.Discard, res.Body)
		return fetcherr.FromStatus(res.StatusCode, http.StatusText(res.StatusCode))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fetcherr.NewUpstream(res.StatusCode, fmt.Sprintf("decode %s: %v", path, err))
	}
	return nil
}
