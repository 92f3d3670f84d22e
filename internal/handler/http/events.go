package http

import (
	"LinkTrace-Backend/internal/analytics"
	"LinkTrace-Backend/internal/domain"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Лимит на тело запроса от маяков
const maxEventBodySize = 16 * 1024

// EventsHandler обработчик приема аналитических событий
type EventsHandler struct {
	recorder *analytics.Recorder
	log      *zap.Logger
}

// NewEventsHandler создает новый обработчик приема событий
func NewEventsHandler(recorder *analytics.Recorder, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		recorder: recorder,
		log:      log,
	}
}

// eventPayload полезная нагрузка события из тела запроса
type eventPayload struct {
	EventType      string  `json:"event_type"`
	ModelID        *int64  `json:"model_id,omitempty"`
	TrackingLinkID *int64  `json:"tracking_link_id,omitempty"`
	SourceID       *int64  `json:"source_id,omitempty"`
	City           *string `json:"city,omitempty"`
}

// ingestResponse ответ приема события. Внутренние детали ошибок наружу
// не отдаются — по ответу нельзя отличить временный сбой от постоянного.
type ingestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HandleIngest принимает событие от маяка или фронтенда. Тело может быть
// JSON или text/plain (sendBeacon); параметры query-строки домердживаются
// поверх тела.
//
//	@Summary		Ingest an analytics event
//	@Description	Accept a fire-and-forget analytics event from a beacon
//	@Tags			Analytics
//	@Accept			json
//	@Produce		json
//	@Success		202	{object}	ingestResponse	"Event queued"
//	@Failure		400	{object}	ingestResponse	"Missing event_type"
//	@Router			/api/events [post]
func (h *EventsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload eventPayload

	// sendBeacon шлет text/plain, поэтому декодируем тело как JSON
	// независимо от Content-Type; пустое или нечитаемое тело не ошибка —
	// событие может прийти целиком в query-строке
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBodySize))
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			h.log.Debug("event body is not valid JSON, relying on query params", zap.Error(err))
		}
	}

	mergeQueryParams(r, &payload)

	if payload.EventType == "" {
		writeJSON(w, http.StatusBadRequest, ingestResponse{Success: false, Error: "event_type is required"})
		return
	}

	event := &domain.AnalyticsEvent{
		EventType:      payload.EventType,
		ModelID:        payload.ModelID,
		TrackingLinkID: payload.TrackingLinkID,
		SourceID:       payload.SourceID,
		City:           payload.City,
		CreatedAt:      time.Now(),
	}

	if ua := r.UserAgent(); ua != "" {
		event.UserAgent = &ua
		deviceType := classifyDevice(ua)
		event.DeviceType = &deviceType
	}
	if referrer := r.Referer(); referrer != "" {
		event.Referrer = &referrer
	}
	if country := extractCountry(r); country != "" {
		event.Country = &country
	}
	if ipStr := extractIPAddress(r); ipStr != "" {
		if ip := net.ParseIP(ipStr); ip != nil {
			event.IPAddress = &ip
		}
	}

	if err := h.recorder.Submit(event); err != nil {
		// Причину наружу не отдаем
		writeJSON(w, http.StatusOK, ingestResponse{Success: false})
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{Success: true})
}

// mergeQueryParams домердживает параметры query-строки поверх тела запроса
func mergeQueryParams(r *http.Request, payload *eventPayload) {
	query := r.URL.Query()

	if v := query.Get("event_type"); v != "" {
		payload.EventType = v
	}
	if id, ok := parseInt64Param(query.Get("model_id")); ok {
		payload.ModelID = &id
	}
	if id, ok := parseInt64Param(query.Get("tracking_link_id")); ok {
		payload.TrackingLinkID = &id
	}
	if id, ok := parseInt64Param(query.Get("source_id")); ok {
		payload.SourceID = &id
	}
}

func parseInt64Param(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
