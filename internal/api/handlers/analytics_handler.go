package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dentara/backend/internal/domain/entities"
)

// AnalyticsProvider defines the reporting operations used by the handler.
type AnalyticsProvider interface {
	GetReport(ctx context.Context, days int) (*entities.EnhancedReport, error)
	GetFunnel(ctx context.Context, days int) (*entities.FunnelData, error)
}

// AnalyticsHandler handles admin analytics HTTP requests
type AnalyticsHandler struct {
	analytics AnalyticsProvider
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics AnalyticsProvider) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetReport handles GET /api/admin/analytics
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.GetReport(r.Context(), parseDays(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to build analytics report")
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// GetFunnel handles GET /api/admin/analytics/funnel
func (h *AnalyticsHandler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	funnel, err := h.analytics.GetFunnel(r.Context(), parseDays(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to build funnel data")
		return
	}

	respondWithJSON(w, http.StatusOK, funnel)
}

// parseDays reads the days query parameter. Out-of-range values are
// normalized by the analytics service, so only syntax is checked here.
func parseDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		return 0
	}
	return days
}
