package http

import (
	"LinkTrace-Backend/internal/auth"
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"LinkTrace-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// LinksHandler обработчик управления трекинг-ссылками
type LinksHandler struct {
	linkService *service.TrackingLinkService
	storage     repository.Storage
	log         *zap.Logger
}

// NewLinksHandler создает новый обработчик трекинг-ссылок
func NewLinksHandler(linkService *service.TrackingLinkService, storage repository.Storage, log *zap.Logger) *LinksHandler {
	return &LinksHandler{
		linkService: linkService,
		storage:     storage,
		log:         log,
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	ModelID        int64   `json:"model_id"`
	SourceID       int64   `json:"source_id"`
	SubtagID       *int64  `json:"subtag_id,omitempty"`
	DestinationURL *string `json:"destination_url,omitempty"`
}

// UpdateLinkRequest структура запроса обновления ссылки
type UpdateLinkRequest struct {
	DestinationURL *string `json:"destination_url,omitempty"`
	SourceID       *int64  `json:"source_id,omitempty"`
	SubtagID       *int64  `json:"subtag_id,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// HandleLinks обрабатывает /api/links
func (h *LinksHandler) HandleLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createLink(w, r)
	case http.MethodGet:
		h.listLinks(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createLink создает трекинг-ссылку; slug выдается аллокатором автоматически
//
//	@Summary		Create a tracking link
//	@Description	Allocate the next sequential slug and create a tracking link
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateLinkRequest	true	"Link creation request"
//	@Success		201		{object}	domain.TrackingLink	"Link created"
//	@Failure		400		{object}	map[string]string	"Invalid request data"
//	@Failure		404		{object}	map[string]string	"Model or source not found"
//	@Router			/api/links [post]
func (h *LinksHandler) createLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ModelID == 0 || req.SourceID == 0 {
		writeError(w, "model_id and source_id are required", http.StatusBadRequest)
		return
	}

	input := service.CreateLinkInput{
		ModelID:        req.ModelID,
		SourceID:       req.SourceID,
		SubtagID:       req.SubtagID,
		DestinationURL: req.DestinationURL,
	}
	// Ссылки, созданные через организационный API, принадлежат организации;
	// админские остаются без владельца
	if orgID, ok := auth.GetOrganizationIDFromContext(r.Context()); ok {
		input.OrganizationID = &orgID
	}

	link, err := h.linkService.CreateLink(r.Context(), input)
	if err != nil {
		if errors.Is(err, repository.ErrModelNotFound) || errors.Is(err, repository.ErrSourceNotFound) {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error("failed to create tracking link", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// listLinks возвращает неархивированные ссылки, опционально по модели
//
//	@Summary		List tracking links
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			model_id	query		int	false	"Model filter"
//	@Success		200			{array}		domain.TrackingLink
//	@Router			/api/links [get]
func (h *LinksHandler) listLinks(w http.ResponseWriter, r *http.Request) {
	var modelID *int64
	if id, ok := parseInt64Param(r.URL.Query().Get("model_id")); ok {
		modelID = &id
	}

	links, err := h.storage.ListTrackingLinks(r.Context(), modelID)
	if err != nil {
		h.log.Error("failed to list tracking links", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []*domain.TrackingLink{}
	}

	writeJSON(w, http.StatusOK, links)
}

// HandleLinkByID обрабатывает /api/links/{id}: GET, PUT и DELETE (архивация)
func (h *LinksHandler) HandleLinkByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDFromPath(r.URL.Path, "/api/links/")
	if !ok {
		writeError(w, "Invalid link id", http.StatusBadRequest)
		return
	}

	link, err := h.storage.GetTrackingLinkByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to get tracking link", zap.Int64("link_id", id), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, link)

	case http.MethodPut:
		h.updateLink(w, r, link)

	case http.MethodDelete:
		// Архивация, а не удаление: запись остается для аудита
		if err := h.storage.ArchiveTrackingLink(r.Context(), link.ModelID, link.Slug); err != nil {
			h.log.Error("failed to archive tracking link", zap.Int64("link_id", id), zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// updateLink обновляет изменяемые поля ссылки
func (h *LinksHandler) updateLink(w http.ResponseWriter, r *http.Request, link *domain.TrackingLink) {
	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.DestinationURL != nil {
		link.DestinationURL = req.DestinationURL
	}
	if req.SourceID != nil {
		link.SourceID = *req.SourceID
	}
	if req.SubtagID != nil {
		link.SubtagID = req.SubtagID
	}
	if req.IsActive != nil {
		link.IsActive = *req.IsActive
	}

	if err := h.storage.UpdateTrackingLink(r.Context(), link); err != nil {
		h.log.Error("failed to update tracking link", zap.Int64("link_id", link.ID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, link)
}
