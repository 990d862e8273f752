package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dashboard_backend/internal/shared/fetcherr"
)

func TestDefaultRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", fetcherr.ErrRateLimited, false},
		{"invalid credential", fetcherr.InvalidCredential("bad apikey"), false},
		{"missing credential", fetcherr.ErrMissingCredential, false},
		{"not found", fetcherr.NewUpstream(http.StatusNotFound, "Not Found"), false},
		{"server error", fetcherr.NewUpstream(http.StatusBadGateway, "Bad Gateway"), true},
		{"network", &fetcherr.NetworkError{Err: errors.New("connection reset")}, true},
		{"refused destination", &fetcherr.NetworkError{Err: fetcherr.ErrDestinationNotAllowed}, false},
		{"credential status", fetcherr.FromStatus(http.StatusForbidden, "Forbidden"), false},
		{"unknown", errors.New("decode failed"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DefaultRetryable(tt.err))
		})
	}
}

func TestPolicy_ShouldRetry_Cap(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	err := fetcherr.NewUpstream(500, "")

	assert.True(t, p.ShouldRetry(err, 0))
	assert.True(t, p.ShouldRetry(err, 2))
	assert.False(t, p.ShouldRetry(err, 3))
	assert.False(t, NoRetry().ShouldRetry(err, 0))
}

func TestPolicy_Do(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()

		p := Policy{MaxRetries: 3, Backoff: time.Millisecond}
		calls := 0
		err := p.Do(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return fetcherr.NewUpstream(503, "")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		t.Parallel()

		p := Policy{MaxRetries: 2, Backoff: time.Millisecond}
		calls := 0
		err := p.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return fetcherr.NewUpstream(500, "")
		})

		assert.ErrorIs(t, err, fetcherr.ErrUpstream)
		assert.Equal(t, 3, calls)
	})

	t.Run("rate limit is never retried", func(t *testing.T) {
		t.Parallel()

		p := Policy{MaxRetries: 3, Backoff: time.Millisecond}
		calls := 0
		err := p.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return fetcherr.ErrRateLimited
		})

		assert.ErrorIs(t, err, fetcherr.ErrRateLimited)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancellation stops the backoff", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		p := Policy{MaxRetries: 3, Backoff: time.Hour}
		calls := 0
		err := p.Do(ctx, func(ctx context.Context) error {
			calls++
			cancel()
			return fetcherr.NewUpstream(500, "")
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
