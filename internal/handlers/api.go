package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"commerce-dashboard/internal/errors"
	"commerce-dashboard/internal/models"
	"commerce-dashboard/internal/observability"
	"commerce-dashboard/internal/pipeline"
	"commerce-dashboard/internal/services"
)

const cacheControl = "private, max-age=60"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// window resolves the request's date range, writing the error response
// itself when the range is malformed.
func (h *APIHandlers) window(w http.ResponseWriter, r *http.Request) (models.Window, bool) {
	win, err := windowFromQuery(r).resolve(h.analytics.DefaultWindow())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return models.Window{}, false
	}
	return win, true
}

func writeTable(w http.ResponseWriter, data any) {
	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleBounds(w http.ResponseWriter, r *http.Request) {
	bounds, ok := h.analytics.Bounds()
	if !ok {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("no order data loaded"), observability.GetRequestID(r.Context()))
		return
	}
	writeTable(w, bounds)
}

func (h *APIHandlers) HandleYearlyRevenue(w http.ResponseWriter, r *http.Request) {
	win, ok := h.window(w, r)
	if !ok {
		return
	}
	writeTable(w, h.analytics.YearlyRevenue(r.Context(), win))
}

func (h *APIHandlers) HandleStatusRevenue(w http.ResponseWriter, r *http.Request) {
	win, ok := h.window(w, r)
	if !ok {
		return
	}
	writeTable(w, h.analytics.StatusRevenue(r.Context(), win))
}

func (h *APIHandlers) HandleTopCategories(w http.ResponseWriter, r *http.Request) {
	win, ok := h.window(w, r)
	if !ok {
		return
	}
	writeTable(w, h.analytics.TopCategories(r.Context(), win, pipeline.CategoryLimit))
}

func (h *APIHandlers) HandleBottomCategories(w http.ResponseWriter, r *http.Request) {
	win, ok := h.window(w, r)
	if !ok {
		return
	}
	writeTable(w, h.analytics.BottomCategories(r.Context(), win, pipeline.CategoryLimit))
}

func (h *APIHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	win, ok := h.window(w, r)
	if !ok {
		return
	}
	writeTable(w, h.analytics.RFM(r.Context(), win))
}

func (h *APIHandlers) HandleRFMSummary(w http.ResponseWriter, r *http.Request) {
	win, ok := h.window(w, r)
	if !ok {
		return
	}
	writeTable(w, h.analytics.RFMSummary(r.Context(), win))
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	win, ok := h.window(w, r)
	if !ok {
		return
	}
	writeTable(w, h.analytics.Report(r.Context(), win))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if _, ok := h.analytics.Bounds(); !ok {
		status = "empty"
	}

	errors.WriteSuccess(w, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
