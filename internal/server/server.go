package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"commerce-dashboard/internal/errors"
	"commerce-dashboard/internal/handlers"
	"commerce-dashboard/internal/observability"
	"commerce-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	router      chi.Router
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

type Option func(*Server)

// WithMetricsHandler mounts a metrics exporter at path.
func WithMetricsHandler(path string, h http.Handler) Option {
	return func(s *Server) {
		s.router.Method(http.MethodGet, path, h)
	}
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers, opts ...Option) *Server {
	s := &Server{
		analytics:   analytics,
		router:      chi.NewRouter(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	r := s.router

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteError(w, s.logger, errors.NotFound("route not found"), observability.GetRequestID(req.Context()))
	})

	// Dashboard routes
	r.Get("/", templateHandlers.Dashboard)
	r.Get("/health", s.apiHandlers.HandleHealth)
	r.Get("/admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	r.Route("/api", func(r chi.Router) {
		r.Get("/bounds", s.apiHandlers.HandleBounds)
		r.Get("/report", s.apiHandlers.HandleReport)
		r.Get("/yearly-revenue", s.apiHandlers.HandleYearlyRevenue)
		r.Get("/status-revenue", s.apiHandlers.HandleStatusRevenue)
		r.Get("/top-categories", s.apiHandlers.HandleTopCategories)
		r.Get("/bottom-categories", s.apiHandlers.HandleBottomCategories)
		r.Get("/rfm", s.apiHandlers.HandleRFM)
		r.Get("/rfm/summary", s.apiHandlers.HandleRFMSummary)
	})

	// Datastar SSE endpoints
	r.Get("/sse/report", s.sseHandlers.HandleReport)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
