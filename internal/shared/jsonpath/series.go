package jsonpath

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SeriesPoint is one charted value extracted from a generic payload.
type SeriesPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

var (
	timeKeys    = []string{"time", "date", "datetime", "timestamp"}
	datePrefix  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	timeLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ExtractSeries turns either an array of objects or an object keyed by
// timestamps ("Time Series (Daily)" style) into chart points.
//
// The value column is the first key of the first row (in sorted key order)
// whose value parses as a number. Rows without a time or a numeric value are
// dropped and the result is sorted ascending by time.
func ExtractSeries(v any) ([]SeriesPoint, bool) {
	rows, ok := seriesRows(v)
	if !ok || len(rows) == 0 {
		return nil, false
	}

	valueKey := pickNumericKey(rows[0])
	if valueKey == "" {
		return nil, false
	}

	points := make([]SeriesPoint, 0, len(rows))
	for _, row := range rows {
		t := rowTime(row)
		if t == "" {
			continue
		}
		n, ok := number(row[valueKey])
		if !ok {
			continue
		}
		points = append(points, SeriesPoint{Time: t, Value: n})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return timeBefore(points[i].Time, points[j].Time)
	})
	return points, len(points) > 0
}

func seriesRows(v any) ([]map[string]any, bool) {
	switch node := v.(type) {
	case []any:
		rows := make([]map[string]any, 0, len(node))
		for _, item := range node {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			rows = append(rows, row)
		}
		return rows, true
	case map[string]any:
		if len(node) == 0 {
			return nil, false
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([]map[string]any, 0, len(node))
		for _, k := range keys {
			inner, ok := node[k].(map[string]any)
			if !ok {
				return nil, false
			}
			row := make(map[string]any, len(inner)+1)
			for ik, iv := range inner {
				row[ik] = iv
			}
			row["time"] = k
			rows = append(rows, row)
		}
		return rows, true
	}
	return nil, false
}

func pickNumericKey(row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isTimeKey(k) {
			continue
		}
		if _, ok := number(row[k]); ok {
			return k
		}
	}
	return ""
}

func isTimeKey(k string) bool {
	for _, tk := range timeKeys {
		if k == tk {
			return true
		}
	}
	return false
}

func rowTime(row map[string]any) string {
	for _, k := range timeKeys {
		if s := scalarString(row[k]); s != "" {
			return s
		}
	}
	for _, v := range row {
		if s, ok := v.(string); ok && datePrefix.MatchString(s) {
			return s
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return ""
}

func timeBefore(a, b string) bool {
	ta, okA := parseTime(a)
	tb, okB := parseTime(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return a < b
}

func parseTime(s string) (time.Time, bool) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
