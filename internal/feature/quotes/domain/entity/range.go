package entity

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange は画面で選択される表示期間のコードです。
type TimeRange string

const (
	Range1D TimeRange = "1D"
	Range1W TimeRange = "1W"
	Range1M TimeRange = "1M"
	Range1Y TimeRange = "1Y"
)

type rangePreset struct {
	resolution string
	window     time.Duration
}

var rangePresets = map[TimeRange]rangePreset{
	Range1D: {resolution: "5", window: 24 * time.Hour},
	Range1W: {resolution: "30", window: 7 * 24 * time.Hour},
	Range1M: {resolution: "D", window: 30 * 24 * time.Hour},
	Range1Y: {resolution: "W", window: 365 * 24 * time.Hour},
}

// ParseTimeRange は大文字小文字を区別せずにコードを解釈します。
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rangePresets[r]; !ok {
		return "", fmt.Errorf("unknown range %q", s)
	}
	return r, nil
}

// RangeParams は表示期間から解像度と取得期間（unix秒）を求めます。
// to は now を分単位に切り捨てた値です。
func RangeParams(r TimeRange, now time.Time) (resolution string, from, to int64) {
	p, ok := rangePresets[r]
	if !ok {
		p = rangePresets[Range1M]
	}
	end := now.Truncate(time.Minute)
	return p.resolution, end.Add(-p.window).Unix(), end.Unix()
}
