package http

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"LinkTrace-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SourcesHandler обработчик источников трафика и сабтегов
type SourcesHandler struct {
	sourceService *service.SourceService
	storage       repository.Storage
	log           *zap.Logger
}

// NewSourcesHandler создает новый обработчик источников
func NewSourcesHandler(sourceService *service.SourceService, storage repository.Storage, log *zap.Logger) *SourcesHandler {
	return &SourcesHandler{
		sourceService: sourceService,
		storage:       storage,
		log:           log,
	}
}

// CreateSourceRequest структура запроса создания кастомного источника
type CreateSourceRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateSubtagRequest структура запроса создания сабтега
type CreateSubtagRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// HandleSources обрабатывает /api/sources
func (h *SourcesHandler) HandleSources(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSources(w, r)
	case http.MethodPost:
		h.createSource(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listSources возвращает все источники трафика
//
//	@Summary		List traffic sources
//	@Tags			Sources
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	domain.TrackingSource
//	@Router			/api/sources [get]
func (h *SourcesHandler) listSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.storage.ListSources(r.Context())
	if err != nil {
		h.log.Error("failed to list sources", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if sources == nil {
		sources = []*domain.TrackingSource{}
	}

	writeJSON(w, http.StatusOK, sources)
}

// createSource создает кастомный источник трафика
//
//	@Summary		Create a custom traffic source
//	@Tags			Sources
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateSourceRequest		true	"Source creation request"
//	@Success		201		{object}	domain.TrackingSource	"Source created"
//	@Failure		400		{object}	map[string]string		"Invalid request data"
//	@Router			/api/sources [post]
func (h *SourcesHandler) createSource(w http.ResponseWriter, r *http.Request) {
	var req CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Slug == "" {
		writeError(w, "name and slug are required", http.StatusBadRequest)
		return
	}

	source, err := h.sourceService.CreateCustom(r.Context(), req.Name, req.Slug)
	if err != nil {
		h.log.Error("failed to create source", zap.String("slug", req.Slug), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

// HandleSourceByID обрабатывает /api/sources/{id} и /api/sources/{id}/subtags
func (h *SourcesHandler) HandleSourceByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sources/")

	if tail, found := strings.CutSuffix(rest, "/subtags"); found {
		id, ok := parseInt64Param(tail)
		if !ok {
			writeError(w, "Invalid source id", http.StatusBadRequest)
			return
		}
		h.handleSubtags(w, r, id)
		return
	}

	id, ok := parseIDFromPath(r.URL.Path, "/api/sources/")
	if !ok {
		writeError(w, "Invalid source id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		source, err := h.storage.GetSourceByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrSourceNotFound) {
				writeError(w, "Source not found", http.StatusNotFound)
				return
			}
			h.log.Error("failed to get source", zap.Int64("source_id", id), zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, source)

	case http.MethodDelete:
		if err := h.sourceService.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, repository.ErrSourceNotFound):
				writeError(w, "Source not found", http.StatusNotFound)
			case errors.Is(err, service.ErrSourceProtected):
				writeError(w, "platform source cannot be deleted", http.StatusForbidden)
			default:
				h.log.Error("failed to delete source", zap.Int64("source_id", id), zap.Error(err))
				writeError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSubtags обрабатывает список и создание сабтегов источника
func (h *SourcesHandler) handleSubtags(w http.ResponseWriter, r *http.Request, sourceID int64) {
	switch r.Method {
	case http.MethodGet:
		subtags, err := h.storage.ListSubtagsBySource(r.Context(), sourceID)
		if err != nil {
			h.log.Error("failed to list subtags", zap.Int64("source_id", sourceID), zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if subtags == nil {
			subtags = []*domain.TrackingSubtag{}
		}
		writeJSON(w, http.StatusOK, subtags)

	case http.MethodPost:
		var req CreateSubtagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.Slug == "" {
			writeError(w, "name and slug are required", http.StatusBadRequest)
			return
		}

		subtag, err := h.sourceService.CreateSubtag(r.Context(), sourceID, req.Name, req.Slug)
		if err != nil {
			if errors.Is(err, repository.ErrSourceNotFound) {
				writeError(w, "Source not found", http.StatusNotFound)
				return
			}
			h.log.Error("failed to create subtag", zap.Int64("source_id", sourceID), zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, subtag)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
