package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"dashboard_backend/internal/shared/format"
	"dashboard_backend/internal/shared/jsonpath"
)

// DisplayMode はウィジェットの表示形式です。
type DisplayMode string

const (
	DisplayCard  DisplayMode = "CARD"
	DisplayTable DisplayMode = "TABLE"
	DisplayChart DisplayMode = "CHART"
)

// previewLen はフィールド未選択時に返す生データの長さです。
const previewLen = 100

// JSONFetcher はURLとヘッダーからJSONを取得します。
type JSONFetcher interface {
	FetchJSON(ctx context.Context, rawURL string, headers map[string]string) (any, error)
}

// Query はカスタムウィジェット1つ分の取得条件です。
// URLとヘッダー内の {{NAME}} は Variables で置換されます。
type Query struct {
	URL         string
	Headers     map[string]string
	Variables   map[string]string
	Fields      []string
	Formatting  map[string]format.Spec
	DisplayMode DisplayMode
}

// FieldValue は選択されたフィールドの解決結果です。
type FieldValue struct {
	Path    string
	Value   any
	Found   bool
	Display string
}

// QueryResult はQueryの結果です。
type QueryResult struct {
	Data      any
	Available []string
	Values    []FieldValue
	Series    []jsonpath.SeriesPoint
	Preview   string
}

// QueryUsecase はJSONを取得し、選択されたフィールドを抽出・整形します。
type QueryUsecase struct {
	fetcher JSONFetcher
}

// NewQueryUsecase はQueryUsecaseを生成します。
func NewQueryUsecase(fetcher JSONFetcher) *QueryUsecase {
	return &QueryUsecase{fetcher: fetcher}
}

// Run はqを実行します。
func (u *QueryUsecase) Run(ctx context.Context, q Query) (*QueryResult, error) {
	rawURL := jsonpath.Substitute(q.URL, q.Variables)
	var headers map[string]string
	if q.Headers != nil {
		headers = jsonpath.SubstituteAll(q.Headers, q.Variables)
	}

	data, err := u.fetcher.FetchJSON(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}

	res := &QueryResult{
		Data:      data,
		Available: jsonpath.Fields(data),
		Values:    Project(data, q.Fields, q.Formatting),
	}
	if len(q.Fields) == 0 {
		res.Preview = preview(data)
	}
	if q.DisplayMode == DisplayChart {
		res.Series = chartSeries(data, res.Values)
	}
	return res, nil
}

// Project は各パスを解決し、フォーマット設定に従って表示文字列を作ります。
func Project(data any, fields []string, formatting map[string]format.Spec) []FieldValue {
	out := make([]FieldValue, 0, len(fields))
	for _, path := range fields {
		v, ok := jsonpath.Resolve(data, path)
		fv := FieldValue{Path: path, Value: v, Found: ok, Display: format.Placeholder}
		if ok {
			fv.Display = format.Value(v, formatting[path])
		}
		out = append(out, fv)
	}
	return out
}

// chartSeries は選択されたフィールドのうち最初に系列として解釈できたものを使います。
// どれも系列でない場合はデータ全体を試します。
func chartSeries(data any, values []FieldValue) []jsonpath.SeriesPoint {
	for _, fv := range values {
		if !fv.Found {
			continue
		}
		if pts, ok := jsonpath.ExtractSeries(fv.Value); ok {
			return pts
		}
	}
	if pts, ok := jsonpath.ExtractSeries(data); ok {
		return pts
	}
	return []jsonpath.SeriesPoint{}
}

func preview(data any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	s := string(b)
	if len(s) <= previewLen {
		return s
	}
	// マルチバイト文字の途中で切らない
	cut := strings.ToValidUTF8(s[:previewLen], "")
	return cut + "..."
}
