// Package format renders projected widget values for display.
package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Type selects how numeric values are rendered.
type Type string

const (
	TypeNone     Type = "none"
	TypeNumber   Type = "number"
	TypeCurrency Type = "currency"
	TypePercent  Type = "percent"
)

// Spec mirrors the per-widget formatting settings.
type Spec struct {
	Type           Type   `json:"type" yaml:"type"`
	Decimals       int    `json:"decimals" yaml:"decimals"`
	CurrencySymbol string `json:"currency_symbol,omitempty" yaml:"currency_symbol"`
}

// Placeholder is shown for missing values.
const Placeholder = "-"

// MaxDecimals bounds Spec.Decimals. Larger values are clamped by Value and
// rejected by Validate.
const MaxDecimals = 20

// ErrInvalidSpec is returned by Spec.Validate.
var ErrInvalidSpec = errors.New("invalid formatting")

// Validate checks the type and decimals range.
func (s Spec) Validate() error {
	switch s.Type {
	case "", TypeNone, TypeNumber, TypeCurrency, TypePercent:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidSpec, s.Type)
	}
	if s.Decimals < 0 || s.Decimals > MaxDecimals {
		return fmt.Errorf("%w: decimals must be between 0 and %d, got %d", ErrInvalidSpec, MaxDecimals, s.Decimals)
	}
	return nil
}

// Value renders v according to spec. Non-numeric values, and numbers under
// TypeNone, fall back to a generic display string.
func Value(v any, spec Spec) string {
	if spec.Type == "" || spec.Type == TypeNone {
		return Display(v)
	}
	d, ok := toDecimal(v)
	if !ok {
		return Display(v)
	}
	decimals := int32(min(max(spec.Decimals, 0), MaxDecimals))

	switch spec.Type {
	case TypeNumber:
		return groupThousands(d.StringFixed(decimals))
	case TypeCurrency:
		sym := spec.CurrencySymbol
		if sym == "" {
			sym = "$"
		}
		s := groupThousands(d.Abs().StringFixed(decimals))
		if d.IsNegative() {
			return "-" + sym + s
		}
		return sym + s
	case TypePercent:
		return d.StringFixed(decimals) + "%"
	default:
		return Display(v)
	}
}

// Display renders any decoded JSON value without numeric formatting.
// Arrays of scalars are joined, arrays of objects are summarised by length.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return Placeholder
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		if len(x) > 0 {
			if _, isObj := x[0].(map[string]any); !isObj {
				parts := make([]string, len(x))
				for i, item := range x {
					parts[i] = Display(item)
				}
				return strings.Join(parts, ", ")
			}
		}
		return fmt.Sprintf("Array(%d)", len(x))
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "%"))
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

// groupThousands inserts "," separators into the integer part of s.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
