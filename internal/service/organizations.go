package service

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrOrganizationHasModels удаление организации заблокировано, пока за ней
// закреплены модели
var ErrOrganizationHasModels = errors.New("organization still has models assigned")

// OrganizationService управляет организациями-арендаторами
type OrganizationService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewOrganizationService создает новый сервис организаций
func NewOrganizationService(storage repository.Storage, log *zap.Logger) *OrganizationService {
	return &OrganizationService{
		storage: storage,
		log:     log,
	}
}

// Create создает организацию с новым непрозрачным API ключом
func (s *OrganizationService) Create(ctx context.Context, name string) (*domain.Organization, error) {
	org := &domain.Organization{
		Name:   name,
		APIKey: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	if err := s.storage.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Delete удаляет организацию. Инвариант проверяется здесь, на границе
// сервиса, а не только в БД: пока за организацией закреплены модели,
// удаление запрещено.
func (s *OrganizationService) Delete(ctx context.Context, id int64) error {
	count, err := s.storage.CountModelsByOrganization(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check assigned models: %w", err)
	}
	if count > 0 {
		s.log.Warn("organization deletion blocked",
			zap.Int64("organization_id", id),
			zap.Int64("assigned_models", count))
		return ErrOrganizationHasModels
	}
	return s.storage.DeleteOrganization(ctx, id)
}
