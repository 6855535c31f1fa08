package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"commerce-dashboard/internal/config"
	"commerce-dashboard/internal/middleware"
	"commerce-dashboard/internal/observability"
	"commerce-dashboard/internal/server"
	"commerce-dashboard/internal/services"
	"commerce-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

// dashboardHandler renders the page shell with the date picker bounded by
// the loaded dataset.
func dashboardHandler(analytics *services.Analytics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		bounds, _ := analytics.Bounds()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(bounds).Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err, "request_id", observability.GetRequestID(r.Context()))
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	var opts []server.Option
	if reg != nil {
		opts = append(opts, server.WithMetricsHandler(cfg.Metrics.Path,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError)})))
	}

	srv := server.NewServer(analytics, logger, &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics, logger),
	}, opts...)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, nil)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"addr", cfg.Address(),
		"csv_file", cfg.Data.CSVFile,
		"metrics", cfg.Metrics.Enabled,
	)

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	analytics := services.NewAnalytics(
		services.WithLogger(logger),
		services.WithMetrics(observability.NewMetrics(registerer(reg))),
		services.WithCacheDir(cfg.Data.CacheDir),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	start := time.Now()
	err = analytics.LoadFromCSV(ctx, cfg.Data.CSVFile)
	cancel()
	if err != nil {
		logger.Error("failed to load CSV data", "error", err)
		os.Exit(1)
	}
	logger.Info("CSV data loaded successfully", "duration", time.Since(start))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

// registerer keeps a nil registry a nil interface so metrics stay disabled.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}
