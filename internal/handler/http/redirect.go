package http

import (
	"LinkTrace-Backend/internal/analytics"
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"LinkTrace-Backend/internal/service"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"LinkTrace-Backend/pkg/useragent"

	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов по трекинг-ссылкам
type RedirectHandler struct {
	resolver *service.ResolverService
	recorder *analytics.Recorder
	storage  repository.Storage
	log      *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(resolver *service.ResolverService, recorder *analytics.Recorder, storage repository.Storage, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: resolver,
		recorder: recorder,
		storage:  storage,
		log:      log,
	}
}

// HandleRedirect разрешает slug и отвечает редиректом. Запись события и
// инкремент счетчика кликов выполняются после отправки ответа и никогда
// не влияют на него.
//
//	@Summary		Redirect by tracking slug
//	@Description	Resolve an active tracking link and redirect the visitor
//	@Tags			Redirect
//	@Param			slug	path	string	true	"Tracking link slug"
//	@Success		307		"Redirect to destination"
//	@Failure		400		{object}	map[string]string	"Destination not configured"
//	@Failure		404		{object}	map[string]string	"Unknown or archived slug"
//	@Router			/go/{slug} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/go/")
	if slug == "" || strings.Contains(slug, "/") {
		http.NotFound(w, r)
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.log.Debug("slug not found", zap.String("slug", slug))
			http.NotFound(w, r)
			return
		}
		if errors.Is(err, service.ErrNoDestination) {
			writeError(w, "destination not configured", http.StatusBadRequest)
			return
		}
		h.log.Error("failed to resolve slug", zap.String("slug", slug), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Собираем данные для аналитики до записи ответа: после редиректа
	// объект запроса трогать уже нельзя
	event := h.buildClickEvent(r, resolution)

	http.Redirect(w, r, resolution.Destination, http.StatusTemporaryRedirect)

	// Ответ отправлен — дальше только отложенная, необязательная работа
	h.scheduleAnalytics(resolution.TrackingLinkID, slug, event)
}

// buildClickEvent собирает событие link_click из данных запроса
func (h *RedirectHandler) buildClickEvent(r *http.Request, resolution *service.Resolution) *domain.AnalyticsEvent {
	linkID := resolution.TrackingLinkID
	sourceID := resolution.SourceID

	event := &domain.AnalyticsEvent{
		EventType:      domain.EventTypeLinkClick,
		ModelID:        resolution.ModelID,
		TrackingLinkID: &linkID,
		SourceID:       &sourceID,
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

	return event
}

// scheduleAnalytics ставит событие в очередь и асинхронно инкрементирует
// счетчик кликов. Обе операции best-effort: ошибки только логируются.
func (h *RedirectHandler) scheduleAnalytics(linkID int64, slug string, event *domain.AnalyticsEvent) {
	if err := h.recorder.Submit(event); err != nil {
		h.log.Warn("failed to submit click event", zap.String("slug", slug), zap.Error(err))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.storage.IncrementClickCount(ctx, linkID); err != nil {
			h.log.Warn("failed to increment click count",
				zap.Int64("link_id", linkID),
				zap.String("slug", slug),
				zap.Error(err))
		}
	}()
}

// classifyDevice определяет тип устройства через uap-go, с эвристическим
// фолбэком, если файл регэкспов не был загружен
func classifyDevice(ua string) string {
	if parser := useragent.GetGlobalParser(); parser != nil {
		return parser.ParseUserAgent(ua).DeviceType
	}
	return useragent.Classify(ua)
}

// extractCountry извлекает ISO код страны из заголовков edge-прокси
func extractCountry(r *http.Request) string {
	for _, header := range []string{"CF-IPCountry", "X-Country"} {
		if country := strings.ToUpper(strings.TrimSpace(r.Header.Get(header))); len(country) == 2 && country != "XX" {
			return country
		}
	}
	return ""
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// X-Forwarded-For может содержать список IP через запятую
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
