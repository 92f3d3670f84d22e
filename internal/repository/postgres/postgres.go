package postgres

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Model Methods ---

// CreateModel создает новую модель
func (s *PostgresStorage) CreateModel(ctx context.Context, model *domain.Model) error {
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		s.log.Error("failed to create model", zap.String("slug", model.Slug), zap.Error(err))
		return fmt.Errorf("failed to create model: %w", err)
	}
	return nil
}

// GetModelByID получает модель по ID
func (s *PostgresStorage) GetModelByID(ctx context.Context, id int64) (*domain.Model, error) {
	var model domain.Model
	err := s.db.WithContext(ctx).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrModelNotFound
	}
	if err != nil {
		s.log.Error("failed to get model", zap.Int64("model_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return &model, nil
}

// GetModelBySlug получает модель по slug
func (s *PostgresStorage) GetModelBySlug(ctx context.Context, slug string) (*domain.Model, error) {
	var model domain.Model
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrModelNotFound
	}
	if err != nil {
		s.log.Error("failed to get model by slug", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to get model by slug: %w", err)
	}
	return &model, nil
}

// ListModels возвращает список всех моделей
func (s *PostgresStorage) ListModels(ctx context.Context) ([]*domain.Model, error) {
	var models []*domain.Model
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error
	if err != nil {
		s.log.Error("failed to list models", zap.Error(err))
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return models, nil
}

// CountModelsByOrganization возвращает количество моделей, закрепленных за организацией
func (s *PostgresStorage) CountModelsByOrganization(ctx context.Context, orgID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Model{}).
		Where("organization_id = ?", orgID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to count models by organization", zap.Int64("organization_id", orgID), zap.Error(err))
		return 0, fmt.Errorf("failed to count models: %w", err)
	}
	return count, nil
}

// --- Organization Methods ---

// CreateOrganization создает новую организацию
func (s *PostgresStorage) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	if err := s.db.WithContext(ctx).Create(org).Error; err != nil {
		s.log.Error("failed to create organization", zap.String("name", org.Name), zap.Error(err))
		return fmt.Errorf("failed to create organization: %w", err)
	}
	s.log.Info("created organization", zap.Int64("organization_id", org.ID), zap.String("name", org.Name))
	return nil
}

// GetOrganizationByID получает организацию по ID
func (s *PostgresStorage) GetOrganizationByID(ctx context.Context, id int64) (*domain.Organization, error) {
	var org domain.Organization
	err := s.db.WithContext(ctx).First(&org, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrOrganizationNotFound
	}
	if err != nil {
		s.log.Error("failed to get organization", zap.Int64("organization_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// GetOrganizationByAPIKey получает организацию по API ключу
func (s *PostgresStorage) GetOrganizationByAPIKey(ctx context.Context, apiKey string) (*domain.Organization, error) {
	var org domain.Organization
	err := s.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrOrganizationNotFound
	}
	if err != nil {
		s.log.Error("failed to get organization by api key", zap.Error(err))
		return nil, fmt.Errorf("failed to get organization by api key: %w", err)
	}
	return &org, nil
}

// DeleteOrganization удаляет организацию. Проверка на закрепленные модели
// выполняется на уровне сервиса до вызова этого метода.
func (s *PostgresStorage) DeleteOrganization(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&domain.Organization{}, id)
	if result.Error != nil {
		s.log.Error("failed to delete organization", zap.Int64("organization_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete organization: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrganizationNotFound
	}
	s.log.Info("deleted organization", zap.Int64("organization_id", id))
	return nil
}

// --- Tracking Source Methods ---

// CreateSource создает новый источник трафика
func (s *PostgresStorage) CreateSource(ctx context.Context, source *domain.TrackingSource) error {
	if err := s.db.WithContext(ctx).Create(source).Error; err != nil {
		s.log.Error("failed to create tracking source", zap.String("slug", source.Slug), zap.Error(err))
		return fmt.Errorf("failed to create tracking source: %w", err)
	}
	return nil
}

// GetSourceByID получает источник по ID
func (s *PostgresStorage) GetSourceByID(ctx context.Context, id int64) (*domain.TrackingSource, error) {
	var source domain.TrackingSource
	err := s.db.WithContext(ctx).First(&source, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSourceNotFound
	}
	if err != nil {
		s.log.Error("failed to get tracking source", zap.Int64("source_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get tracking source: %w", err)
	}
	return &source, nil
}

// GetSourceByName получает источник по имени
func (s *PostgresStorage) GetSourceByName(ctx context.Context, name string) (*domain.TrackingSource, error) {
	var source domain.TrackingSource
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSourceNotFound
	}
	if err != nil {
		s.log.Error("failed to get tracking source by name", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get tracking source by name: %w", err)
	}
	return &source, nil
}

// ListSources возвращает список всех источников
func (s *PostgresStorage) ListSources(ctx context.Context) ([]*domain.TrackingSource, error) {
	var sources []*domain.TrackingSource
	err := s.db.WithContext(ctx).Order("id ASC").Find(&sources).Error
	if err != nil {
		s.log.Error("failed to list tracking sources", zap.Error(err))
		return nil, fmt.Errorf("failed to list tracking sources: %w", err)
	}
	return sources, nil
}

// DeleteSource удаляет источник. Защита платформенных источников
// выполняется на уровне сервиса.
func (s *PostgresStorage) DeleteSource(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&domain.TrackingSource{}, id)
	if result.Error != nil {
		s.log.Error("failed to delete tracking source", zap.Int64("source_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete tracking source: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrSourceNotFound
	}
	return nil
}

// CreateSubtag создает сабтег внутри источника
func (s *PostgresStorage) CreateSubtag(ctx context.Context, subtag *domain.TrackingSubtag) error {
	if err := s.db.WithContext(ctx).Create(subtag).Error; err != nil {
		s.log.Error("failed to create tracking subtag",
			zap.Int64("source_id", subtag.SourceID),
			zap.String("slug", subtag.Slug),
			zap.Error(err))
		return fmt.Errorf("failed to create tracking subtag: %w", err)
	}
	return nil
}

// ListSubtagsBySource возвращает сабтеги источника
func (s *PostgresStorage) ListSubtagsBySource(ctx context.Context, sourceID int64) ([]*domain.TrackingSubtag, error) {
	var subtags []*domain.TrackingSubtag
	err := s.db.WithContext(ctx).Where("source_id = ?", sourceID).Order("id ASC").Find(&subtags).Error
	if err != nil {
		s.log.Error("failed to list tracking subtags", zap.Int64("source_id", sourceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list tracking subtags: %w", err)
	}
	return subtags, nil
}

// --- Tracking Link Methods ---

// CreateTrackingLink сохраняет новую трекинг-ссылку. При нарушении уникальности
// (model_id, slug) возвращает ErrSlugExists — проигравший гонку аллокации
// должен повторить попытку.
func (s *PostgresStorage) CreateTrackingLink(ctx context.Context, link *domain.TrackingLink) error {
	err := s.db.WithContext(ctx).Create(link).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrSlugExists
	}
	if err != nil {
		s.log.Error("failed to create tracking link",
			zap.String("slug", link.Slug),
			zap.Int64("model_id", link.ModelID),
			zap.Error(err))
		return fmt.Errorf("failed to create tracking link: %w", err)
	}
	s.log.Info("created tracking link", zap.String("slug", link.Slug), zap.Int64("model_id", link.ModelID))
	return nil
}

// GetTrackingLinkByID получает трекинг-ссылку по ID
func (s *PostgresStorage) GetTrackingLinkByID(ctx context.Context, id int64) (*domain.TrackingLink, error) {
	var link domain.TrackingLink
	err := s.db.WithContext(ctx).Preload("Model").First(&link, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get tracking link", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get tracking link: %w", err)
	}
	return &link, nil
}

// GetActiveLinkBySlug получает активную неархивированную ссылку по slug
// вместе с моделью для резервного назначения
func (s *PostgresStorage) GetActiveLinkBySlug(ctx context.Context, slug string) (*domain.TrackingLink, error) {
	var link domain.TrackingLink
	err := s.db.WithContext(ctx).
		Preload("Model").
		Where("slug = ? AND is_active = ? AND is_archived = ?", slug, true, false).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get active link by slug", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to get active link: %w", err)
	}
	return &link, nil
}

// ListLinkSlugs возвращает все slug ссылок модели, включая архивированные
func (s *PostgresStorage) ListLinkSlugs(ctx context.Context, modelID int64) ([]string, error) {
	var slugs []string
	err := s.db.WithContext(ctx).Model(&domain.TrackingLink{}).
		Where("model_id = ?", modelID).
		Pluck("slug", &slugs).Error
	if err != nil {
		s.log.Error("failed to list link slugs", zap.Int64("model_id", modelID), zap.Error(err))
		return nil, fmt.Errorf("failed to list link slugs: %w", err)
	}
	return slugs, nil
}

// ListTrackingLinks возвращает неархивированные ссылки, опционально по модели
func (s *PostgresStorage) ListTrackingLinks(ctx context.Context, modelID *int64) ([]*domain.TrackingLink, error) {
	query := s.db.WithContext(ctx).Preload("Source").Preload("Subtag").
		Where("is_archived = ?", false)
	if modelID != nil {
		query = query.Where("model_id = ?", *modelID)
	}

	var links []*domain.TrackingLink
	err := query.Order("created_at DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list tracking links", zap.Error(err))
		return nil, fmt.Errorf("failed to list tracking links: %w", err)
	}
	return links, nil
}

// UpdateTrackingLink обновляет изменяемые поля ссылки
func (s *PostgresStorage) UpdateTrackingLink(ctx context.Context, link *domain.TrackingLink) error {
	result := s.db.WithContext(ctx).Model(&domain.TrackingLink{}).
		Where("id = ?", link.ID).
		Updates(map[string]interface{}{
			"destination_url": link.DestinationURL,
			"source_id":       link.SourceID,
			"subtag_id":       link.SubtagID,
			"is_active":       link.IsActive,
		})
	if result.Error != nil {
		s.log.Error("failed to update tracking link", zap.Int64("link_id", link.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update tracking link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}
	return nil
}

// ArchiveTrackingLink архивирует ссылку (мягкое удаление, запись остается для аудита)
func (s *PostgresStorage) ArchiveTrackingLink(ctx context.Context, modelID int64, slug string) error {
	result := s.db.WithContext(ctx).Model(&domain.TrackingLink{}).
		Where("model_id = ? AND slug = ?", modelID, slug).
		Update("is_archived", true)
	if result.Error != nil {
		s.log.Error("failed to archive tracking link", zap.String("slug", slug), zap.Error(result.Error))
		return fmt.Errorf("failed to archive tracking link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}
	s.log.Info("archived tracking link", zap.String("slug", slug), zap.Int64("model_id", modelID))
	return nil
}

// IncrementClickCount атомарно увеличивает счетчик кликов на стороне БД.
// Никогда не реализуется как read-modify-write на клиенте.
func (s *PostgresStorage) IncrementClickCount(ctx context.Context, linkID int64) error {
	result := s.db.WithContext(ctx).Model(&domain.TrackingLink{}).
		Where("id = ?", linkID).
		UpdateColumn("click_count", gorm.Expr("click_count + 1"))
	if result.Error != nil {
		s.log.Error("failed to increment click count", zap.Int64("link_id", linkID), zap.Error(result.Error))
		return fmt.Errorf("failed to increment click count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}
	return nil
}
