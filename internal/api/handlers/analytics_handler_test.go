package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dentara/backend/internal/api/handlers"
	"github.com/dentara/backend/internal/domain/entities"
)

type stubAnalyticsProvider struct {
	report  *entities.EnhancedReport
	funnel  *entities.FunnelData
	err     error
	gotDays int
}

func (s *stubAnalyticsProvider) GetReport(ctx context.Context, days int) (*entities.EnhancedReport, error) {
	s.gotDays = days
	return s.report, s.err
}

func (s *stubAnalyticsProvider) GetFunnel(ctx context.Context, days int) (*entities.FunnelData, error) {
	s.gotDays = days
	return s.funnel, s.err
}

func TestAnalyticsHandler_GetReport_Success(t *testing.T) {
	provider := &stubAnalyticsProvider{
		report: &entities.EnhancedReport{
			BasicData: entities.BasicReport{
				Overview: entities.Overview{TotalViews: 42, TotalArticles: 7},
			},
		},
	}
	handler := handlers.NewAnalyticsHandler(provider)

	req := httptest.NewRequest("GET", "/api/admin/analytics?days=30", nil)
	w := httptest.NewRecorder()

	handler.GetReport(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, provider.gotDays)

	var response entities.EnhancedReport
	err := json.NewDecoder(w.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), response.BasicData.Overview.TotalViews)
}

func TestAnalyticsHandler_GetReport_NonNumericDaysPassesZero(t *testing.T) {
	provider := &stubAnalyticsProvider{report: &entities.EnhancedReport{}}
	handler := handlers.NewAnalyticsHandler(provider)

	req := httptest.NewRequest("GET", "/api/admin/analytics?days=abc", nil)
	w := httptest.NewRecorder()

	handler.GetReport(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, provider.gotDays)
}

func TestAnalyticsHandler_GetReport_ServiceError(t *testing.T) {
	provider := &stubAnalyticsProvider{err: errors.New("database unavailable")}
	handler := handlers.NewAnalyticsHandler(provider)

	req := httptest.NewRequest("GET", "/api/admin/analytics", nil)
	w := httptest.NewRecorder()

	handler.GetReport(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]string
	err := json.NewDecoder(w.Body).Decode(&response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response["error"])
}

func TestAnalyticsHandler_GetFunnel_Success(t *testing.T) {
	provider := &stubAnalyticsProvider{
		funnel: &entities.FunnelData{Visitors: 1000, Signups: 120, Verified: 30},
	}
	handler := handlers.NewAnalyticsHandler(provider)

	req := httptest.NewRequest("GET", "/api/admin/analytics/funnel?days=90", nil)
	w := httptest.NewRecorder()

	handler.GetFunnel(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, provider.gotDays)

	var response entities.FunnelData
	err := json.NewDecoder(w.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), response.Visitors)
	assert.Equal(t, 30, response.Verified)
}
