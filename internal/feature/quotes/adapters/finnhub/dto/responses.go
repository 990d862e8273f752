// Package dto はFinnhub APIのレスポンス形式を定義します。
package dto

// QuoteResponse は /quote のレスポンスです。
type QuoteResponse struct {
	C     float64 `json:"c"`  // 現在値
	D     float64 `json:"d"`  // 前日比
	DP    float64 `json:"dp"` // 前日比(%)
	H     float64 `json:"h"`  // 高値
	L     float64 `json:"l"`  // 安値
	O     float64 `json:"o"`  // 始値
	PC    float64 `json:"pc"` // 前日終値
	T     int64   `json:"t"`  // タイムスタンプ
	Error string  `json:"error,omitempty"`
}

// CandleResponse は /stock/candle のレスポンスです。
// 各配列は同じインデックスで1本のローソク足を表します。
type CandleResponse struct {
	C     []float64 `json:"c"`
	H     []float64 `json:"h"`
	L     []float64 `json:"l"`
	O     []float64 `json:"o"`
	S     string    `json:"s"` // "ok" または "no_data"
	T     []int64   `json:"t"`
	V     []float64 `json:"v"`
	Error string    `json:"error,omitempty"`
}

// StatusNoData は該当期間にデータがないことを示します。
const StatusNoData = "no_data"
