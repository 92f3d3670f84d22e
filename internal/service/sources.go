package service

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrSourceProtected платформенные источники удалять нельзя
var ErrSourceProtected = errors.New("platform source cannot be deleted")

// SourceService управляет источниками трафика и их сабтегами
type SourceService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewSourceService создает новый сервис источников
func NewSourceService(storage repository.Storage, log *zap.Logger) *SourceService {
	return &SourceService{
		storage: storage,
		log:     log,
	}
}

// CreateCustom создает кастомный (организационный) источник
func (s *SourceService) CreateCustom(ctx context.Context, name, slug string) (*domain.TrackingSource, error) {
	source := &domain.TrackingSource{
		Name:     name,
		Slug:     slug,
		IsCustom: true,
	}
	if err := s.storage.CreateSource(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

// Delete удаляет источник. Платформенные источники защищены от удаления.
func (s *SourceService) Delete(ctx context.Context, id int64) error {
	source, err := s.storage.GetSourceByID(ctx, id)
	if err != nil {
		return err
	}
	if !source.IsCustom {
		s.log.Warn("attempt to delete platform source", zap.Int64("source_id", id), zap.String("slug", source.Slug))
		return ErrSourceProtected
	}
	return s.storage.DeleteSource(ctx, id)
}

// CreateSubtag создает сабтег внутри источника
func (s *SourceService) CreateSubtag(ctx context.Context, sourceID int64, name, slug string) (*domain.TrackingSubtag, error) {
	if _, err := s.storage.GetSourceByID(ctx, sourceID); err != nil {
		return nil, err
	}
	subtag := &domain.TrackingSubtag{
		SourceID: sourceID,
		Name:     name,
		Slug:     slug,
	}
	if err := s.storage.CreateSubtag(ctx, subtag); err != nil {
		return nil, err
	}
	return subtag, nil
}
