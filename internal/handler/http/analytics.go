package http

import (
	"LinkTrace-Backend/internal/service"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// AnalyticsHandler обработчик запросов атрибуции и обновления агрегатов
type AnalyticsHandler struct {
	attribution *service.AttributionService
	refresh     *service.RefreshService
	log         *zap.Logger
}

// NewAnalyticsHandler создает новый обработчик аналитики
func NewAnalyticsHandler(attribution *service.AttributionService, refresh *service.RefreshService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		attribution: attribution,
		refresh:     refresh,
		log:         log,
	}
}

// HandleAttribution возвращает дневные бакеты за диапазон дат плюс сводку
//
//	@Summary		Attribution timeline
//	@Description	Daily view/click buckets for a date range with optional filters
//	@Tags			Analytics
//	@Produce		json
//	@Security		BearerAuth
//	@Param			start_date			query		string	true	"Range start (YYYY-MM-DD)"
//	@Param			end_date			query		string	true	"Range end (YYYY-MM-DD)"
//	@Param			source				query		string	false	"Traffic source name"
//	@Param			model_id			query		int		false	"Model filter"
//	@Param			tracking_link_id	query		int		false	"Tracking link filter"
//	@Success		200	{object}	service.TimelineResult	"Ordered daily buckets"
//	@Failure		400	{object}	map[string]string		"Invalid date range"
//	@Router			/api/analytics/attribution [get]
func (h *AnalyticsHandler) HandleAttribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	from, err := time.Parse("2006-01-02", query.Get("start_date"))
	if err != nil {
		writeError(w, "start_date must be in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", query.Get("end_date"))
	if err != nil {
		writeError(w, "end_date must be in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		writeError(w, "end_date must not be before start_date", http.StatusBadRequest)
		return
	}

	timelineQuery := service.TimelineQuery{From: from, To: to}
	if source := query.Get("source"); source != "" {
		timelineQuery.SourceName = &source
	}
	if id, ok := parseInt64Param(query.Get("model_id")); ok {
		timelineQuery.ModelID = &id
	}
	if id, ok := parseInt64Param(query.Get("tracking_link_id")); ok {
		timelineQuery.TrackingLinkID = &id
	}

	result, err := h.attribution.Timeline(r.Context(), timelineQuery)
	if err != nil {
		h.log.Error("failed to build attribution timeline", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleRefresh возвращает статус обновления (GET) или запускает
// пересчет агрегатов (POST)
//
//	@Summary		Aggregate refresh
//	@Description	GET returns the last refresh status, POST triggers a refresh
//	@Tags			Analytics
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	domain.RefreshStatus	"Refresh status"
//	@Failure		409	{object}	map[string]string		"Refresh already in progress"
//	@Router			/api/analytics/refresh [get]
func (h *AnalyticsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		status, err := h.refresh.GetStatus(r.Context())
		if err != nil {
			h.log.Error("failed to get refresh status", zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, status)

	case http.MethodPost:
		status, err := h.refresh.Trigger(r.Context())
		if err != nil {
			if errors.Is(err, service.ErrRefreshInProgress) {
				writeError(w, "refresh already in progress", http.StatusConflict)
				return
			}
			h.log.Error("refresh failed", zap.Error(err))
			writeError(w, "refresh failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, status)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// parseIDFromPath извлекает числовой ID из хвоста пути
func parseIDFromPath(path, prefix string) (int64, bool) {
	raw := path[len(prefix):]
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
