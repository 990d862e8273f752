package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method         string
		expectedStatus int
		expectBody     bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodHead, http.StatusOK, false},
		{http.MethodOptions, http.StatusNoContent, false},
		{http.MethodPost, http.StatusOK, true},
	}

	r := gin.New()
	r.Handle(http.MethodGet, "/healthz", Health)
	r.Handle(http.MethodHead, "/healthz", Health)
	r.Handle(http.MethodOptions, "/healthz", Health)
	r.Handle(http.MethodPost, "/healthz", Health)

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if !tt.expectBody {
				assert.Zero(t, w.Body.Len())
				return
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			assert.Equal(t, "ok", body["status"])
		})
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	ok := Check{Name: "memory", Ping: func(context.Context) error { return nil }}
	down := Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name           string
		checks         []Check
		expectedStatus int
		expectedBody   string
	}{
		{"no checks", nil, http.StatusOK, `{"status":"ok"}`},
		{"all healthy", []Check{ok}, http.StatusOK, `{"status":"ok"}`},
		{"one failing", []Check{ok, down}, http.StatusServiceUnavailable,
			`{"status":"unavailable","checks":{"redis":"connection refused"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			r.GET("/readyz", Ready(time.Second, tt.checks...))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		})
	}
}
