package http

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"dashboard_backend/internal/shared/fetcherr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Timeout(t *testing.T) {
	t.Parallel()

	c := NewHTTPClient(3 * time.Second)
	assert.Equal(t, 3*time.Second, c.Timeout)
	assert.Nil(t, c.CheckRedirect)
}

func TestNewHTTPClient_UserAgent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		preset   string
		expected string
	}{
		{"adds user agent", "", "dashboard-test/1.0"},
		{"keeps caller user agent", "custom/2.0", "custom/2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := make(chan string, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got <- r.Header.Get("User-Agent")
			}))
			defer srv.Close()

			c := NewHTTPClient(time.Second, WithUserAgent("dashboard-test/1.0"))
			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			require.NoError(t, err)
			if tt.preset != "" {
				req.Header.Set("User-Agent", tt.preset)
			}

			res, err := c.Do(req)
			require.NoError(t, err)
			_ = res.Body.Close()

			assert.Equal(t, tt.expected, <-got)
			if tt.preset == "" {
				assert.Empty(t, req.Header.Get("User-Agent"), "caller request must not be mutated")
			}
		})
	}
}

func TestNewHTTPClient_WithoutRedirects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	res, err := NewHTTPClient(time.Second, WithoutRedirects()).Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	assert.Equal(t, http.StatusFound, res.StatusCode)
}

func TestIsPublicAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:4700::6810:85e5", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.10", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"100.64.0.1", false},
		{"::ffff:127.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPublicAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestNewHTTPClient_PublicAddressesOnly(t *testing.T) {
	t.Parallel()

	hit := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
	}))
	defer srv.Close()

	_, err := NewHTTPClient(time.Second, WithPublicAddressesOnly()).Get(srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcherr.ErrDestinationNotAllowed)
	assert.Empty(t, hit, "loopback server must not be reached")

	res, err := NewHTTPClient(time.Second).Get(srv.URL)
	require.NoError(t, err)
	_ = res.Body.Close()
}
