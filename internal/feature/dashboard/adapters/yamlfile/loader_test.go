package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dashboard_backend/internal/feature/dashboard/domain"
	"dashboard_backend/internal/shared/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
name: markets
variables:
  API_KEY: ${DASHBOARD_TEST_KEY}
  SYMBOL: IBM
widgets:
  - id: aapl
    title: Apple
    type: CHART
    symbol: AAPL
    range: 1W
  - id: ibm
    type: CUSTOM
    api_url: https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol={{SYMBOL}}&apikey={{API_KEY}}
    selected_fields: ["Global Quote.05. price"]
    display_mode: CARD
    refresh_interval: 45
    formatting:
      type: currency
      decimals: 2
`

func TestParse(t *testing.T) {
	t.Setenv("DASHBOARD_TEST_KEY", "secret")

	d, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "markets", d.Name)
	assert.Equal(t, map[string]string{"API_KEY": "secret", "SYMBOL": "IBM"}, d.Variables)
	require.Len(t, d.Widgets, 2)
	assert.Equal(t, domain.WidgetChart, d.Widgets[0].Type)
	assert.Equal(t, "1W", d.Widgets[0].Range)
	assert.Equal(t, 45*time.Second, d.Widgets[1].Interval())
	assert.Equal(t, &format.Spec{Type: format.TypeCurrency, Decimals: 2}, d.Widgets[1].Formatting)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "widgets: [\n"},
		{"unknown field", "widgets:\n  - id: a\n    type: CARD\n    symbol: X\n    colour: red\n"},
		{"invalid widget", "widgets:\n  - id: a\n    type: CUSTOM\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("widgets: []\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *domain.Dashboard, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(d *domain.Dashboard) {
			select {
			case reloaded <- d:
			default:
			}
		})
	}()

	update := []byte("widgets:\n  - id: a\n    type: CARD\n    symbol: MSFT\n")
	// watcher の登録完了を待たずに書くと取りこぼすため、届くまで書き直す
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, update, 0o600)
		select {
		case d := <-reloaded:
			return len(d.Widgets) == 1 && d.Widgets[0].Symbol == "MSFT"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
