// Package finnhub provides a client for the Finnhub quote and candle API.
package finnhub

import "time"

// DefaultBaseURL is the public Finnhub REST endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Config holds configuration for the Finnhub API client.
type Config struct {
	BaseURL        string        // Base URL for the API (e.g., "https://finnhub.io/api/v1")
	Timeout        time.Duration // HTTP request timeout
	CallsPerMinute int           // Client side cap; 0 disables it
}

func (c Config) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}
