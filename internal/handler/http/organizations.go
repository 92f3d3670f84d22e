package http

import (
	"LinkTrace-Backend/internal/repository"
	"LinkTrace-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// OrganizationsHandler обработчик управления организациями
type OrganizationsHandler struct {
	orgService *service.OrganizationService
	storage    repository.Storage
	log        *zap.Logger
}

// NewOrganizationsHandler создает новый обработчик организаций
func NewOrganizationsHandler(orgService *service.OrganizationService, storage repository.Storage, log *zap.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{
		orgService: orgService,
		storage:    storage,
		log:        log,
	}
}

// CreateOrganizationRequest структура запроса создания организации
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

// CreateOrganizationResponse ответ создания организации. API ключ возвращается
// только здесь, один раз: в остальных ответах он скрыт.
type CreateOrganizationResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

// HandleOrganizations обрабатывает /api/organizations
func (h *OrganizationsHandler) HandleOrganizations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	org, err := h.orgService.Create(r.Context(), req.Name)
	if err != nil {
		h.log.Error("failed to create organization", zap.String("name", req.Name), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrganizationResponse{
		ID:     org.ID,
		Name:   org.Name,
		APIKey: org.APIKey,
	})
}

// HandleOrganizationByID обрабатывает /api/organizations/{id}
func (h *OrganizationsHandler) HandleOrganizationByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDFromPath(r.URL.Path, "/api/organizations/")
	if !ok {
		writeError(w, "Invalid organization id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		org, err := h.storage.GetOrganizationByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrOrganizationNotFound) {
				writeError(w, "Organization not found", http.StatusNotFound)
				return
			}
			h.log.Error("failed to get organization", zap.Int64("organization_id", id), zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, org)

	case http.MethodDelete:
		if err := h.orgService.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, repository.ErrOrganizationNotFound):
				writeError(w, "Organization not found", http.StatusNotFound)
			case errors.Is(err, service.ErrOrganizationHasModels):
				writeError(w, "organization still has models assigned", http.StatusConflict)
			default:
				h.log.Error("failed to delete organization", zap.Int64("organization_id", id), zap.Error(err))
				writeError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
