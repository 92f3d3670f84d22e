package http

import (
	"LinkTrace-Backend/internal/analytics"
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler обработчик health checks
type HealthHandler struct {
	storage  repository.Storage
	recorder *analytics.Recorder
	log      *zap.Logger
}

// NewHealthHandler создает новый health handler
func NewHealthHandler(storage repository.Storage, recorder *analytics.Recorder, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  storage,
		recorder: recorder,
		log:      log,
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	DatabaseStatus string                 `json:"database_status"`
	Recorder       map[string]interface{} `json:"recorder"`
	Uptime         string                 `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health основной health check endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Простая проверка БД: запрашиваем заведомо несуществующий slug
	dbStatus := "healthy"
	_, err := h.storage.GetActiveLinkBySlug(ctx, "health-check-non-existent")
	if err != nil && !errors.Is(err, repository.ErrLinkNotFound) {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		DatabaseStatus: dbStatus,
		Recorder:       h.recorder.QueueStats(),
		Uptime:         time.Since(startTime).String(),
	})

	if status != "healthy" {
		h.log.Warn("health check failed", zap.String("database_status", dbStatus))
	}
}

// Ready readiness probe endpoint
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}
