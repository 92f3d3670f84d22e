package http

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository/memory"
	"LinkTrace-Backend/internal/service"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAnalytics(t *testing.T) (*AnalyticsHandler, *memory.MemStorage) {
	t.Helper()
	storage := memory.New()
	log := zap.NewNop()
	attribution := service.NewAttributionService(storage, log)
	refresh := service.NewRefreshService(storage, log, service.RefreshKeyDailyStats, storage.RebuildDailyStats)
	return NewAnalyticsHandler(attribution, refresh, log), storage
}

func TestHandleAttribution_ReturnsBuckets(t *testing.T) {
	handler, storage := setupAnalytics(t)

	date, _ := time.Parse("2006-01-02", "2026-08-01")
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: date, TrafficSource: "1", Views: 4, Clicks: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/attribution?start_date=2026-08-01&end_date=2026-08-02", nil)
	rec := httptest.NewRecorder()
	handler.HandleAttribution(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result service.TimelineResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Buckets, 1)
	assert.Equal(t, "2026-08-01", result.Buckets[0].Date)
	assert.Equal(t, int64(2), result.Buckets[0].Clicks)
	assert.Equal(t, 2, result.Summary.DaysInRange)
}

func TestHandleAttribution_InvalidDates(t *testing.T) {
	handler, _ := setupAnalytics(t)

	cases := []string{
		"/api/analytics/attribution",
		"/api/analytics/attribution?start_date=01.08.2026&end_date=2026-08-02",
		"/api/analytics/attribution?start_date=2026-08-01",
		"/api/analytics/attribution?start_date=2026-08-05&end_date=2026-08-01",
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		handler.HandleAttribution(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}

func TestHandleRefresh_StatusNeverInitially(t *testing.T) {
	handler, _ := setupAnalytics(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/refresh", nil)
	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status domain.RefreshStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.RefreshStatusNever, status.Status)
}

func TestHandleRefresh_TriggerSuccess(t *testing.T) {
	handler, _ := setupAnalytics(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analytics/refresh", nil)
	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status domain.RefreshStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.RefreshStatusSuccess, status.Status)
	assert.NotNil(t, status.DurationMs)
}

func TestHandleRefresh_ConflictWhileRunning(t *testing.T) {
	handler, storage := setupAnalytics(t)

	require.NoError(t, storage.SaveRefreshStatus(context.Background(), &domain.RefreshStatus{
		Key:       service.RefreshKeyDailyStats,
		Status:    domain.RefreshStatusInProgress,
		Timestamp: time.Now(),
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/analytics/refresh", nil)
	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh already in progress")
}

func TestHandleRefresh_MethodNotAllowed(t *testing.T) {
	handler, _ := setupAnalytics(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/analytics/refresh", nil)
	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
