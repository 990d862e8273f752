package http

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"dashboard_backend/internal/shared/fetcherr"
)

// Option はNewHTTPClientの設定を変更します。
type Option func(*options)

type options struct {
	userAgent       string
	maxIdlePerHost  int
	followRedirects bool
	publicOnly      bool
}

// WithUserAgent は全リクエストに指定のUser-Agentを付与します。
// 呼び出し側がヘッダーを設定済みの場合は上書きしません。
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithMaxIdleConnsPerHost はホストごとのアイドル接続数を設定します。
func WithMaxIdleConnsPerHost(n int) Option {
	return func(o *options) { o.maxIdlePerHost = n }
}

// WithoutRedirects はリダイレクトを追跡せず、3xxをそのまま返すクライアントにします。
func WithoutRedirects() Option {
	return func(o *options) { o.followRedirects = false }
}

// WithPublicAddressesOnly は接続先IPがループバック・プライベート・リンクローカル等の場合に
// 接続を拒否します。判定は名前解決後のIPで行うため、リダイレクト先にも適用されます。
// 環境変数のプロキシは使いません（プロキシ経由だと接続先を判定できないため）。
func WithPublicAddressesOnly() Option {
	return func(o *options) { o.publicOnly = true }
}

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConns: 最大アイドル接続数
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
func NewHTTPClient(timeout time.Duration, opts ...Option) *http.Client {
	o := options{maxIdlePerHost: 10, followRedirects: true}
	for _, opt := range opts {
		opt(&o)
	}

	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: o.maxIdlePerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if o.publicOnly {
		dialer.Control = denyNonPublic
		tr.Proxy = nil
	}

	var rt http.RoundTripper = tr
	if o.userAgent != "" {
		rt = &userAgentTransport{next: rt, ua: o.userAgent}
	}

	c := &http.Client{Timeout: timeout, Transport: rt}
	if !o.followRedirects {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}

type userAgentTransport struct {
	next http.RoundTripper
	ua   string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTripperはリクエストを変更してはならないため複製する
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(r)
}

// cgnat は RFC 6598 の共有アドレス空間です。netip.Addr.IsPrivate には含まれません。
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

func denyNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", fetcherr.ErrDestinationNotAllowed, host)
	}
	if !IsPublicAddr(ip) {
		return fmt.Errorf("%w: %s", fetcherr.ErrDestinationNotAllowed, ip)
	}
	return nil
}

// IsPublicAddr はipがインターネット上の宛先として扱えるかを返します。
func IsPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		cgnat.Contains(ip):
		return false
	}
	return true
}
