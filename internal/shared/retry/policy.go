// Package retry implements the polling-side retry policy for fetch errors.
// The fetchers themselves never retry.
package retry

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dashboard_backend/internal/shared/fetcherr"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultBackoff is the fixed wait between attempts.
	DefaultBackoff = 5 * time.Second
)

// Policy decides whether and when a failed fetch is attempted again.
type Policy struct {
	MaxRetries int
	Backoff    time.Duration
	// Retryable reports whether err may be retried at all. Nil means
	// DefaultRetryable.
	Retryable func(err error) bool
}

// DefaultPolicy retries transient failures up to 3 times, 5s apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
		Retryable:  DefaultRetryable,
	}
}

// NoRetry never retries.
func NoRetry() Policy {
	return Policy{Retryable: func(error) bool { return false }}
}

// DefaultRetryable excludes rate limiting, credential problems, refused
// destinations and 404s.
func DefaultRetryable(err error) bool {
	switch fetcherr.KindOf(err) {
	case fetcherr.KindNone, fetcherr.KindRateLimited, fetcherr.KindInvalidCredential, fetcherr.KindMissingCredential,
		fetcherr.KindDestination:
		return false
	}
	return fetcherr.StatusOf(err) != http.StatusNotFound
}

// ShouldRetry reports whether a retry is allowed after retryCount retries
// have already been made.
func (p Policy) ShouldRetry(err error, retryCount int) bool {
	if err == nil || retryCount >= p.MaxRetries {
		return false
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}
	return retryable(err)
}

// Do runs fn, retrying per the policy. It stops early when ctx is done and
// returns the last error from fn.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for retries := 0; ; retries++ {
		err := fn(ctx)
		if !p.ShouldRetry(err, retries) {
			return err
		}
		slog.Warn("fetch failed, retrying", "attempt", retries+1, "backoff", p.Backoff, "error", err)

		timer := time.NewTimer(p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
