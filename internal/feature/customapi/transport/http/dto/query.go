// Package dto はcustomapiフィーチャーのHTTPリクエスト/レスポンスDTOを定義します。
package dto

import (
	"dashboard_backend/internal/shared/format"
	"dashboard_backend/internal/shared/jsonpath"
)

// QueryRequest は POST /custom/query のリクエストボディです。
type QueryRequest struct {
	URL         string                 `json:"url" binding:"required"`
	Headers     map[string]string      `json:"headers"`
	Variables   map[string]string      `json:"variables"`
	Fields      []string               `json:"fields"`
	Formatting  map[string]format.Spec `json:"formatting"`
	DisplayMode string                 `json:"display_mode" binding:"omitempty,oneof=CARD TABLE CHART"`
}

// FieldValue は抽出されたフィールド1つです。
type FieldValue struct {
	Path    string `json:"path"`
	Value   any    `json:"value"`
	Found   bool   `json:"found"`
	Display string `json:"display"`
}

// QueryResponse は POST /custom/query のレスポンスボディです。
type QueryResponse struct {
	Data            any                    `json:"data"`
	AvailableFields []string               `json:"available_fields"`
	Values          []FieldValue           `json:"values"`
	Series          []jsonpath.SeriesPoint `json:"series,omitempty"`
	Preview         string                 `json:"preview,omitempty"`
}
