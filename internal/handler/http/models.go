package http

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ModelsHandler обработчик управления моделями
type ModelsHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewModelsHandler создает новый обработчик моделей
func NewModelsHandler(storage repository.Storage, log *zap.Logger) *ModelsHandler {
	return &ModelsHandler{
		storage: storage,
		log:     log,
	}
}

// CreateModelRequest структура запроса создания модели
type CreateModelRequest struct {
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	OrganizationID *int64 `json:"organization_id,omitempty"`
}

// HandleModels обрабатывает /api/models
func (h *ModelsHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createModel(w, r)
	case http.MethodGet:
		h.listModels(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createModel создает модель
//
//	@Summary		Create a model
//	@Tags			Models
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateModelRequest	true	"Model creation request"
//	@Success		201		{object}	domain.Model		"Model created"
//	@Failure		400		{object}	map[string]string	"Invalid request data"
//	@Router			/api/models [post]
func (h *ModelsHandler) createModel(w http.ResponseWriter, r *http.Request) {
	var req CreateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Slug == "" || req.Name == "" {
		writeError(w, "slug and name are required", http.StatusBadRequest)
		return
	}
	if req.OrganizationID != nil {
		if _, err := h.storage.GetOrganizationByID(r.Context(), *req.OrganizationID); err != nil {
			if errors.Is(err, repository.ErrOrganizationNotFound) {
				writeError(w, "Organization not found", http.StatusNotFound)
				return
			}
			h.log.Error("failed to check organization", zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	model := &domain.Model{
		Slug:           req.Slug,
		Name:           req.Name,
		OrganizationID: req.OrganizationID,
		IsActive:       true,
	}
	if err := h.storage.CreateModel(r.Context(), model); err != nil {
		h.log.Error("failed to create model", zap.String("slug", req.Slug), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, model)
}

// listModels возвращает все модели
//
//	@Summary		List models
//	@Tags			Models
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	domain.Model
//	@Router			/api/models [get]
func (h *ModelsHandler) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.storage.ListModels(r.Context())
	if err != nil {
		h.log.Error("failed to list models", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if models == nil {
		models = []*domain.Model{}
	}

	writeJSON(w, http.StatusOK, models)
}

// HandleModelByID обрабатывает /api/models/{id}
func (h *ModelsHandler) HandleModelByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := parseIDFromPath(r.URL.Path, "/api/models/")
	if !ok {
		writeError(w, "Invalid model id", http.StatusBadRequest)
		return
	}

	model, err := h.storage.GetModelByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrModelNotFound) {
			writeError(w, "Model not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to get model", zap.Int64("model_id", id), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, model)
}
