package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dashboard_backend/internal/feature/quotes/domain/entity"
	"dashboard_backend/internal/shared/fetcherr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// mockSeriesUsecase はSeriesUsecaseインターフェースのモック実装です。
type mockSeriesUsecase struct {
	FetchSeriesFunc func(ctx context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error)
}

func (m *mockSeriesUsecase) FetchSeries(ctx context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error) {
	return m.FetchSeriesFunc(ctx, q, apiKey)
}

// TestSeriesHandler_GetSeries はクエリの解釈、APIキーの選択、エラーのステータス変換をテストします。
func TestSeriesHandler_GetSeries(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 1, 15, 9, 30, 42, 0, time.UTC)
	end := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC).Unix()
	point := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)

	series := &entity.Series{
		Symbol: "AAPL", Price: 185.92, Change: 2.34, ChangePercent: 1.25, Currency: "USD",
		History: []entity.OHLCPoint{{Time: point, Open: 183, High: 186, Low: 182, Close: 185.92, Volume: 10}},
	}

	tests := []struct {
		name           string
		url            string
		apiKey         string
		mockFetch      func(ctx context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "success: explicit window and header key",
			url:    "/series/AAPL?resolution=D&from=100&to=200",
			apiKey: "header-key",
			mockFetch: func(_ context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error) {
				assert.Equal(t, entity.SeriesQuery{Symbol: "AAPL", Resolution: "D", From: 100, To: 200}, q)
				assert.Equal(t, "header-key", apiKey)
				return series, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"AAPL","price":185.92,"change":2.34,"changePercent":1.25,"currency":"USD",
				"history":[{"time":"2025-01-14T00:00:00Z","open":183,"high":186,"low":182,"close":185.92,"volume":10}]}`,
		},
		{
			name: "success: range preset and default key",
			url:  "/series/AAPL?range=1w",
			mockFetch: func(_ context.Context, q entity.SeriesQuery, apiKey string) (*entity.Series, error) {
				assert.Equal(t, entity.SeriesQuery{Symbol: "AAPL", Resolution: "30", From: end - 7*24*3600, To: end}, q)
				assert.Equal(t, "default-key", apiKey)
				return series, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error: unknown range",
			url:            "/series/AAPL?range=10Y",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"unknown range \"10Y\""}`,
		},
		{
			name:           "error: invalid from",
			url:            "/series/AAPL?from=yesterday",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"from must be unix seconds"}`,
		},
		{
			name: "error: rate limited",
			url:  "/series/AAPL",
			mockFetch: func(context.Context, entity.SeriesQuery, string) (*entity.Series, error) {
				return nil, fetcherr.ErrRateLimited
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `{"error":"rate limit exceeded","kind":"rate_limited"}`,
		},
		{
			name: "error: missing credential",
			url:  "/series/AAPL",
			mockFetch: func(context.Context, entity.SeriesQuery, string) (*entity.Series, error) {
				return nil, fetcherr.ErrMissingCredential
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"api key is missing","kind":"missing_credential"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockSeriesUsecase{FetchSeriesFunc: tt.mockFetch}
			if tt.mockFetch == nil {
				mockUC.FetchSeriesFunc = func(context.Context, entity.SeriesQuery, string) (*entity.Series, error) {
					t.Fatal("usecase must not be called")
					return nil, nil
				}
			}

			h := NewSeriesHandler(mockUC, "default-key")
			h.now = func() time.Time { return now }

			router := gin.New()
			router.GET("/series/:symbol", h.GetSeries)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.apiKey != "" {
				req.Header.Set(APIKeyHeader, tt.apiKey)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}
