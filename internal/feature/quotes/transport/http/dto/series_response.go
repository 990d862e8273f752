// Package dto はquotesフィーチャーのHTTPレスポンスDTOを定義します。
package dto

// PointResponse はローソク足1本のレスポンスDTOです。
type PointResponse struct {
	Time   string  `json:"time"`   // RFC3339
	Open   float64 `json:"open"`   // 始値
	High   float64 `json:"high"`   // 高値
	Low    float64 `json:"low"`    // 安値
	Close  float64 `json:"close"`  // 終値
	Volume int64   `json:"volume"` // 出来高
}

// SeriesResponse は正規化された時系列のレスポンスDTOです。
type SeriesResponse struct {
	Symbol        string          `json:"symbol"`
	Price         float64         `json:"price"`
	Change        float64         `json:"change"`
	ChangePercent float64         `json:"changePercent"`
	Currency      string          `json:"currency"`
	History       []PointResponse `json:"history"`
}
