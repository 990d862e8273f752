// Package entity defines the domain models for the quotes feature.
package entity

import "time"

// DefaultCurrency is reported for every series; the upstream only quotes US listings.
const DefaultCurrency = "USD"

// DefaultResolution is the candle resolution used when the caller omits one.
const DefaultResolution = "D"

// OHLCPoint is one candle bucket.
type OHLCPoint struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote is the live quote for a symbol.
type Quote struct {
	Current       float64 // c
	Change        float64 // d
	PercentChange float64 // dp
	High          float64 // h
	Low           float64 // l
	Open          float64 // o
	PreviousClose float64 // pc
	Timestamp     int64   // t (unix seconds)
}

// Point builds a single candle from the quote at the given time.
// Missing open/high/low fall back to the current price.
func (q Quote) Point(at time.Time) OHLCPoint {
	return OHLCPoint{
		Time:  at,
		Open:  orCurrent(q.Open, q.Current),
		High:  orCurrent(q.High, q.Current),
		Low:   orCurrent(q.Low, q.Current),
		Close: q.Current,
	}
}

func orCurrent(v, current float64) float64 {
	if v == 0 {
		return current
	}
	return v
}

// Series is the normalized shape returned for any symbol based query.
// History is ordered oldest to newest and never empty.
type Series struct {
	Symbol        string      `json:"symbol"`
	Price         float64     `json:"price"`
	Change        float64     `json:"change"`
	ChangePercent float64     `json:"changePercent"`
	Currency      string      `json:"currency"`
	History       []OHLCPoint `json:"history"`
}

// SeriesQuery identifies a series request. From and To are unix seconds;
// zero means "use the default window".
type SeriesQuery struct {
	Symbol     string
	Resolution string
	From       int64
	To         int64
}
