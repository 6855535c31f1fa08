package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"commerce-dashboard/internal/config"
	"commerce-dashboard/internal/models"
	"commerce-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(opts ...Option) *Server {
	a := services.NewAnalytics(services.WithCacheDir(""), services.WithLogger(testLogger()))
	a.SetData([]models.OrderLine{
		{OrderID: "1", CustomerID: "A", OrderStatus: "delivered", Price: decimal.NewFromInt(10), PurchasedAt: time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC)},
		{OrderID: "2", CustomerID: "B", OrderStatus: "shipped", Price: decimal.NewFromInt(5), PurchasedAt: time.Date(2021, 1, 20, 0, 0, 0, 0, time.UTC)},
	})
	pages := &TemplateHandlers{
		Dashboard: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, "<html></html>")
		},
	}
	return NewServer(a, testLogger(), pages, opts...)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(WithMetricsHandler("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "# metrics")
	})))

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/health", http.StatusOK},
		{"/admin/stats", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/bounds", http.StatusOK},
		{"/api/report", http.StatusOK},
		{"/api/yearly-revenue", http.StatusOK},
		{"/api/status-revenue", http.StatusOK},
		{"/api/top-categories", http.StatusOK},
		{"/api/bottom-categories", http.StatusOK},
		{"/api/rfm", http.StatusOK},
		{"/api/rfm/summary?start=2021-01-01&end=2021-01-31", http.StatusOK},
		{"/api/rfm?start=yesterday", http.StatusBadRequest},
		{"/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestServer_NotFoundEnvelope(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Success || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/report", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestServer_SSERoute(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sse/report?start=2021-01-01&end=2021-12-31", nil))

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "summary-content") {
		t.Error("expected summary patch in stream")
	}
}

func testConfig() *config.Config {
	return &config.Config{Server: config.ServerConfig{ShutdownTimeout: time.Second}}
}

func TestGracefulServer_ShutdownRunsHooks(t *testing.T) {
	gs := NewGracefulServer(&http.Server{Addr: "127.0.0.1:0"}, testLogger(), testConfig())

	called := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		gs.RegisterShutdownHook(func(ctx context.Context) error {
			called <- struct{}{}
			return nil
		})
	}

	if err := gs.shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if len(called) != 2 {
		t.Errorf("hooks called %d times, want 2", len(called))
	}
}

func TestGracefulServer_ShutdownCombinesErrors(t *testing.T) {
	gs := NewGracefulServer(&http.Server{Addr: "127.0.0.1:0"}, testLogger(), testConfig())

	errFlush := errors.New("flush failed")
	errClose := errors.New("close failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return errFlush })
	gs.RegisterShutdownHook(func(ctx context.Context) error { return errClose })

	err := gs.shutdown(context.Background())
	if !errors.Is(err, errFlush) || !errors.Is(err, errClose) {
		t.Errorf("expected both hook errors, got %v", err)
	}
}

func TestGracefulServer_ServeStopsOnSignal(t *testing.T) {
	gs := NewGracefulServer(&http.Server{Addr: "127.0.0.1:0"}, testLogger(), testConfig())

	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- gs.serve(sig) }()

	sig <- syscall.SIGTERM
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after signal")
	}
}
