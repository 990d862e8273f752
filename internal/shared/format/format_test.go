package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    any
		spec Spec
		want string
	}{
		{"none keeps raw number", 1234.5, Spec{Type: TypeNone}, "1234.5"},
		{"empty type behaves like none", "abc", Spec{}, "abc"},
		{"number with grouping", 1234567.891, Spec{Type: TypeNumber, Decimals: 2}, "1,234,567.89"},
		{"number from string", "185.92", Spec{Type: TypeNumber, Decimals: 1}, "185.9"},
		{"negative number", -1234.0, Spec{Type: TypeNumber, Decimals: 0}, "-1,234"},
		{"currency default symbol", 45231.89, Spec{Type: TypeCurrency, Decimals: 2}, "$45,231.89"},
		{"currency custom symbol", 100.0, Spec{Type: TypeCurrency, Decimals: 0, CurrencySymbol: "₹"}, "₹100"},
		{"negative currency", -5.5, Spec{Type: TypeCurrency, Decimals: 2}, "-$5.50"},
		{"percent", 1.2549, Spec{Type: TypePercent, Decimals: 2}, "1.25%"},
		{"percent from suffixed string", "1.25%", Spec{Type: TypePercent, Decimals: 1}, "1.3%"},
		{"non numeric falls back", "n/a", Spec{Type: TypeNumber, Decimals: 2}, "n/a"},
		{"nil placeholder", nil, Spec{Type: TypeCurrency}, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Value(tt.v, tt.spec))
		})
	}
}

func TestValue_DecimalsClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		decimals int
		want     string
	}{
		{"negative becomes zero", -3, "2"},
		{"upper bound kept", MaxDecimals, "1.50000000000000000000"},
		{"above bound clamped", MaxDecimals + 1, "1.50000000000000000000"},
		{"max int clamped", math.MaxInt, "1.50000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Value(1.5, Spec{Type: TypeNumber, Decimals: tt.decimals}))
		})
	}
}

func TestSpec_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"zero value", Spec{}, false},
		{"currency with decimals", Spec{Type: TypeCurrency, Decimals: 2}, false},
		{"max decimals", Spec{Type: TypeNumber, Decimals: MaxDecimals}, false},
		{"too many decimals", Spec{Type: TypeNumber, Decimals: MaxDecimals + 1}, true},
		{"negative decimals", Spec{Type: TypeNumber, Decimals: -1}, true},
		{"unknown type", Spec{Type: "date"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSpec)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", Display(nil))
	assert.Equal(t, "True", Display(true))
	assert.Equal(t, "False", Display(false))
	assert.Equal(t, "1, 2, x", Display([]any{1.0, 2.0, "x"}))
	assert.Equal(t, "Array(2)", Display([]any{map[string]any{}, map[string]any{}}))
	assert.Equal(t, "Array(0)", Display([]any{}))
	assert.Equal(t, `{"a":1}`, Display(map[string]any{"a": 1}))
}
