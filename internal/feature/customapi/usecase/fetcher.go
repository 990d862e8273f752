// Package usecase は任意のJSON APIの取得と、フィールド抽出のビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"dashboard_backend/internal/feature/customapi/domain"
	"dashboard_backend/internal/platform/cache"
	"dashboard_backend/internal/shared/fetcherr"

	"github.com/tidwall/gjson"
)

// MaxBodyBytes はレスポンスボディの読み取り上限です。
const MaxBodyBytes = 10 << 20

// RelayConfig はリレー経由で呼び出すホストとリレーのURLです。
// URL が空の場合、Hostsに一致しても直接呼び出します。
// Client はリレー呼び出し専用のクライアントです。nil の場合は通常のクライアントを使います。
// リレーは運用側が設定したURLのため、接続先制限のないクライアントを渡せます。
type RelayConfig struct {
	Hosts  domain.HostList
	URL    string
	Client *http.Client
}

// Observer は上流呼び出しの結果を記録します。
type Observer interface {
	Upstream(endpoint, outcome string)
}

type nopObserver struct{}

func (nopObserver) Upstream(string, string) {}

// Fetcher は任意のURLからJSONを取得し、結果をキャッシュします。
//
// 呼び出しごとに独立して実行され、キューは使いません。同じキーへの同時呼び出しは
// 両方がネットワークに到達することがあり、最後に書き込んだ結果が残ります。
type Fetcher struct {
	client *http.Client
	store  cache.Store
	relay  RelayConfig
	obs    Observer
}

// NewFetcher はFetcherを生成します。obs が nil の場合は記録しません。
func NewFetcher(client *http.Client, store cache.Store, relay RelayConfig, obs Observer) *Fetcher {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Fetcher{client: client, store: store, relay: relay, obs: obs}
}

// CacheKey はURLとヘッダーから一意なキャッシュキーを作ります。
// ヘッダーがnilの場合は空オブジェクトとして扱います。
func CacheKey(rawURL string, headers map[string]string) string {
	if headers == nil {
		headers = map[string]string{}
	}
	// map[string]string のMarshalは失敗せず、キーはソートされる
	b, _ := json.Marshal(headers)
	return rawURL + string(b)
}

// FetchJSON はrawURLを取得し、デコードしたJSONを返します。
//
// TTL内のキャッシュがあればネットワークを使いません。
// 429はRateLimited、その他の非2xxはUpstreamError、2xxでもボディがエラー形式の場合は
// 分類されたエラーを返します。headers は変更しません。
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, headers map[string]string) (any, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrURLRequired
	}

	key := CacheKey(rawURL, headers)
	if raw, ok := f.store.Get(ctx, key); ok {
		if v, err := decode(raw); err == nil {
			return v, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	}

	body, err := f.fetch(ctx, rawURL, headers)
	f.obs.Upstream("custom", outcome(err))
	if err != nil {
		return nil, err
	}

	v, err := decode(body)
	if err != nil {
		return nil, fetcherr.NewUpstream(0, "response is not valid JSON")
	}
	f.store.Put(ctx, key, body)
	return v, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	target := f.target(rawURL)
	client := f.client
	if target != rawURL && f.relay.Client != nil {
		client = f.relay.Client
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, &fetcherr.NetworkError{Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, MaxBodyBytes))
		return nil, fetcherr.FromStatus(res.StatusCode, http.StatusText(res.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodyBytes))
	if err != nil {
		return nil, &fetcherr.NetworkError{Err: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, fetcherr.NewUpstream(res.StatusCode, "response is not valid JSON")
	}
	if err := classify(body); err != nil {
		return nil, err
	}
	return body, nil
}

// target はリレー対象のホストであればリレーのURLを返します。
func (f *Fetcher) target(rawURL string) string {
	if f.relay.URL == "" || !f.relay.Hosts.Match(rawURL) {
		return rawURL
	}
	sep := "?"
	if strings.Contains(f.relay.URL, "?") {
		sep = "&"
	}
	return f.relay.URL + sep + "url=" + url.QueryEscape(rawURL)
}

// decode は毎回新しい値を作るため、呼び出し側が結果を変更してもキャッシュに影響しません。
func decode(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(fetcherr.KindOf(err))
}
