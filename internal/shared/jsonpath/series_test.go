package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSeries_ObjectKeyedByDate(t *testing.T) {
	t.Parallel()

	doc := decode(t, `{
		"2024-01-03": {"1. open": "12.0", "4. close": "12.5"},
		"2024-01-01": {"1. open": "10.0", "4. close": "10.5"},
		"2024-01-02": {"1. open": "11.0", "4. close": "11.5"}
	}`)

	points, ok := ExtractSeries(doc)
	require.True(t, ok)
	assert.Equal(t, []SeriesPoint{
		{Time: "2024-01-01", Value: 10},
		{Time: "2024-01-02", Value: 11},
		{Time: "2024-01-03", Value: 12},
	}, points)
}

func TestExtractSeries_ArrayOfRows(t *testing.T) {
	t.Parallel()

	doc := decode(t, `[
		{"datetime": "2024-01-02 10:00:00", "close": 2},
		{"datetime": "2024-01-01 10:00:00", "close": 1},
		{"datetime": "", "close": 9},
		{"datetime": "2024-01-03 10:00:00", "close": "n/a"}
	]`)

	points, ok := ExtractSeries(doc)
	require.True(t, ok)
	assert.Equal(t, []SeriesPoint{
		{Time: "2024-01-01 10:00:00", Value: 1},
		{Time: "2024-01-02 10:00:00", Value: 2},
	}, points)
}

func TestExtractSeries_DateLikeValueWithoutTimeKey(t *testing.T) {
	t.Parallel()

	doc := decode(t, `[{"day": "2024-02-01", "price": 5}]`)

	points, ok := ExtractSeries(doc)
	require.True(t, ok)
	assert.Equal(t, []SeriesPoint{{Time: "2024-02-01", Value: 5}}, points)
}

func TestExtractSeries_NotASeries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"scalar", `42`},
		{"array of scalars", `[1, 2, 3]`},
		{"object of scalars", `{"a": 1}`},
		{"empty array", `[]`},
		{"no numeric column", `[{"time": "2024-01-01", "label": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ok := ExtractSeries(decode(t, tt.raw))
			assert.False(t, ok)
		})
	}
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	vars := map[string]string{"API_KEY": "secret", "SYMBOL": "IBM"}

	assert.Equal(t,
		"https://example.com/q?symbol=IBM&apikey=secret",
		Substitute("https://example.com/q?symbol={{SYMBOL}}&apikey={{API_KEY}}", vars))
	assert.Equal(t, "x=", Substitute("x={{UNKNOWN}}", vars))
	assert.Equal(t, "{{lower}}", Substitute("{{lower}}", vars))
	assert.Equal(t, "", Substitute("", vars))
}

func TestSubstituteAll_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := map[string]string{"X-Api-Key": "{{KEY}}"}
	out := SubstituteAll(in, map[string]string{"KEY": "k1"})

	assert.Equal(t, "k1", out["X-Api-Key"])
	assert.Equal(t, "{{KEY}}", in["X-Api-Key"])
	assert.Nil(t, SubstituteAll(nil, nil))
}
