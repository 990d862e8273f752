package jsonpath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestFlatten_SkipsArrays(t *testing.T) {
	t.Parallel()

	obj := decode(t, `{"a": [1,2,3], "b": {"c": 4}}`).(map[string]any)

	got := Flatten(obj)

	assert.Equal(t, map[string]any{
		"a":   []any{float64(1), float64(2), float64(3)},
		"b.c": float64(4),
	}, got)
}

func TestFlatten_DeepAndNull(t *testing.T) {
	t.Parallel()

	obj := decode(t, `{"x": {"y": {"z": "deep"}}, "n": null, "e": {}}`).(map[string]any)

	got := Flatten(obj)

	assert.Equal(t, "deep", got["x.y.z"])
	v, ok := got["n"]
	assert.True(t, ok)
	assert.Nil(t, v)
	// empty objects contribute no fields
	_, ok = got["e"]
	assert.False(t, ok)
}

func TestFields_Sorted(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"b": {"d": 1, "c": 2}, "a": true}`)

	assert.Equal(t, []string{"a", "b.c", "b.d"}, Fields(v))
	assert.Nil(t, Fields([]any{1}))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{
		"a.b": 1,
		"a": {"b": 2, "c": 3},
		"Global Quote": {"05. price": "185.92", "10. change percent": "1.25%"},
		"Time Series (Daily)": {"2024-01-02": {"4. close": "101.5"}},
		"data": [{"value": 10}, {"value": 20}],
		"x": {"y.z": {"w": "mixed"}},
		"nil": null
	}`)

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{"literal key wins over nesting", "a.b", float64(1), true},
		{"plain nesting", "a.c", float64(3), true},
		{"dotted key inside object", "Global Quote.05. price", "185.92", true},
		{"key with spaces and parens", "Time Series (Daily).2024-01-02.4. close", "101.5", true},
		{"array index", "data.1.value", float64(20), true},
		{"dotted key in the middle", "x.y.z.w", "mixed", true},
		{"null value is found", "nil", nil, true},
		{"missing segment", "a.missing", nil, false},
		{"index out of range", "data.5.value", nil, false},
		{"non numeric index", "data.first", nil, false},
		{"descend into primitive", "a.c.d", nil, false},
		{"empty path", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Resolve(doc, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_NilInput(t *testing.T) {
	t.Parallel()

	got, ok := Resolve(nil, "a")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResolve_PrefersLongestPrefix(t *testing.T) {
	t.Parallel()

	// "a.b" exists both as a literal key and as a nested path; the longer
	// literal prefix is consumed first.
	doc := decode(t, `{"a.b": {"c": "literal"}, "a": {"b": {"c": "nested"}}}`)

	got, ok := Resolve(doc, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, "literal", got)
}

func TestResolve_DoesNotBacktrack(t *testing.T) {
	t.Parallel()

	// The longest matching prefix "a.b" is taken even though its subtree
	// does not contain "d"; resolution reports not found instead of retrying
	// the shorter split.
	doc := decode(t, `{"a.b": {"c": 1}, "a": {"b": {"d": 2}}}`)

	_, ok := Resolve(doc, "a.b.d")
	assert.False(t, ok)
}
