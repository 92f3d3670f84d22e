package http

import (
	"LinkTrace-Backend/internal/analytics"
	"LinkTrace-Backend/internal/repository"
	"LinkTrace-Backend/internal/repository/memory"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupEvents(t *testing.T) (*EventsHandler, *memory.MemStorage) {
	t.Helper()
	storage := memory.New()
	recorder := analytics.NewRecorder(storage, zap.NewNop(), analytics.DefaultConfig())
	require.NoError(t, recorder.Start())
	t.Cleanup(func() { _ = recorder.Stop() })
	return NewEventsHandler(recorder, zap.NewNop()), storage
}

func countEvents(t *testing.T, storage *memory.MemStorage) int {
	t.Helper()
	rows, err := storage.ScanEventBuckets(context.Background(), repository.StatsFilter{
		From: time.Now().AddDate(0, 0, -1),
		To:   time.Now(),
	})
	require.NoError(t, err)
	total := 0
	for _, row := range rows {
		total += int(row.Views + row.Clicks)
	}
	return total
}

func TestHandleIngest_JSONBody(t *testing.T) {
	handler, storage := setupEvents(t)

	body := `{"event_type":"page_view","model_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	assert.Eventually(t, func() bool { return countEvents(t, storage) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleIngest_TextPlainBeacon(t *testing.T) {
	handler, _ := setupEvents(t)

	// sendBeacon шлет JSON с Content-Type text/plain
	body := `{"event_type":"story_view"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleIngest_QueryParamsOverrideBody(t *testing.T) {
	handler, _ := setupEvents(t)

	body := `{"event_type":"page_view"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events?event_type=bridge_view&tracking_link_id=3", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleIngest_QueryOnly(t *testing.T) {
	handler, _ := setupEvents(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events?event_type=page_view&model_id=5", nil)
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleIngest_MissingEventType(t *testing.T) {
	handler, _ := setupEvents(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"model_id":1}`))
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "event_type is required", resp.Error)
}

func TestHandleIngest_MalformedBodyWithQueryFallback(t *testing.T) {
	handler, _ := setupEvents(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events?event_type=page_view", strings.NewReader("not json at all"))
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleIngest_MethodNotAllowed(t *testing.T) {
	handler, _ := setupEvents(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleIngest_SubmitFailureHiddenFromClient(t *testing.T) {
	storage := memory.New()
	// Рекордер не запущен: Submit вернет ошибку
	recorder := analytics.NewRecorder(storage, zap.NewNop(), analytics.DefaultConfig())
	handler := NewEventsHandler(recorder, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"event_type":"page_view"}`))
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Error, "internal failure reason must not leak")
}
