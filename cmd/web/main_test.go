package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"commerce-dashboard/internal/config"
	"commerce-dashboard/internal/models"
	"commerce-dashboard/internal/observability"
	"commerce-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8084"},
			TrustedProxies: []string{"127.0.0.1"},
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Test helper to create analytics with test data
func newTestAnalytics(m *observability.Metrics) *services.Analytics {
	a := services.NewAnalytics(
		services.WithCacheDir(""),
		services.WithLogger(testLogger()),
		services.WithMetrics(m),
	)
	toys := "toys"
	a.SetData([]models.OrderLine{
		{OrderID: "1", CustomerID: "A", OrderStatus: "delivered", Price: decimal.NewFromInt(10), PurchasedAt: time.Date(2021, 1, 5, 9, 30, 0, 0, time.UTC), ProductCategory: &toys},
		{OrderID: "2", CustomerID: "A", OrderStatus: "delivered", Price: decimal.NewFromInt(20), PurchasedAt: time.Date(2021, 2, 10, 18, 0, 0, 0, time.UTC)},
		{OrderID: "3", CustomerID: "B", OrderStatus: "shipped", Price: decimal.NewFromInt(5), PurchasedAt: time.Date(2021, 1, 20, 7, 0, 0, 0, time.UTC), ProductCategory: &toys},
	})
	return a
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return newHandler(testConfig(), newTestAnalytics(observability.NewMetrics(reg)), testLogger(), reg)
}

// Integration tests for HTTP routes
func TestHandler_Routes(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/report", http.StatusOK, "application/json"},
		{"/api/yearly-revenue", http.StatusOK, "application/json"},
		{"/api/status-revenue", http.StatusOK, "application/json"},
		{"/api/top-categories", http.StatusOK, "application/json"},
		{"/api/bottom-categories", http.StatusOK, "application/json"},
		{"/api/rfm", http.StatusOK, "application/json"},
		{"/api/rfm/summary", http.StatusOK, "application/json"},
		{"/api/bounds", http.StatusOK, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/sse/report", http.StatusOK, "text/event-stream"},
		{"/metrics", http.StatusOK, "text/plain"},
		{"/api/rfm?end=2021-13-01", http.StatusBadRequest, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if w.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test JSON API responses
func TestHandler_ReportResponse(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/report?start=2021-01-01&end=2021-01-31", nil)
	handler.ServeHTTP(w, r)

	var response struct {
		Success bool          `json:"success"`
		Data    models.Report `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true in response")
	}
	if response.Data.Rows != 2 {
		t.Errorf("rows = %d, want 2", response.Data.Rows)
	}
	if len(response.Data.RFM) != 2 {
		t.Fatalf("rfm rows = %d, want 2", len(response.Data.RFM))
	}
	if response.Data.RFM[0].CustomerID != "A" || response.Data.RFM[0].Recency != 15 {
		t.Errorf("unexpected rfm row %+v", response.Data.RFM[0])
	}
	if !response.Data.RFMSummary.AvgMonetary.Decimal.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("avg monetary = %s, want 7.5", response.Data.RFMSummary.AvgMonetary.Decimal)
	}
}

func TestHandler_SecurityHeaders(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if w.Header().Get(header) == "" {
			t.Errorf("expected %s header", header)
		}
	}
}

func TestHandler_MetricsExposePipeline(t *testing.T) {
	handler := newTestHandler(t)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/report", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	for _, name := range []string{"pipeline_compute_duration_seconds", "dataset_rows_loaded"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestHandler_MetricsDisabled(t *testing.T) {
	handler := newHandler(testConfig(), newTestAnalytics(nil), testLogger(), nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDashboardHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	dashboardHandler(newTestAnalytics(nil), testLogger())(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`min="2021-01-05"`, `max="2021-02-10"`, "summary-content"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if cc := w.Header().Get("Cache-Control"); cc != cacheMaxAge {
		t.Errorf("Cache-Control = %q", cc)
	}
}
