package service

import (
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoDestination активная ссылка без явного назначения и без модели
// для резервного URL
var ErrNoDestination = errors.New("destination not configured")

// Resolution результат разрешения slug в назначение редиректа
type Resolution struct {
	Destination    string
	TrackingLinkID int64
	ModelID        *int64
	SourceID       int64
	ModelSlug      string
}

// ResolverService разрешает slug трекинг-ссылки в URL назначения.
// Не выполняет никаких записей — вся аналитика идет отложенно после ответа.
type ResolverService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewResolverService создает новый резолвер
func NewResolverService(storage repository.Storage, log *zap.Logger) *ResolverService {
	return &ResolverService{
		storage: storage,
		log:     log,
	}
}

// Resolve находит активную неархивированную ссылку по slug и вычисляет
// назначение: явный destination_url имеет приоритет, иначе строится
// резервный URL /model/<modelSlug>?ref=<slug>. Если нет ни назначения,
// ни модели — ErrNoDestination.
func (s *ResolverService) Resolve(ctx context.Context, slug string) (*Resolution, error) {
	link, err := s.storage.GetActiveLinkBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	resolution := &Resolution{
		TrackingLinkID: link.ID,
		SourceID:       link.SourceID,
	}
	if link.ModelID != 0 {
		modelID := link.ModelID
		resolution.ModelID = &modelID
	}

	if link.DestinationURL != nil && *link.DestinationURL != "" {
		resolution.Destination = *link.DestinationURL
		if link.Model != nil {
			resolution.ModelSlug = link.Model.Slug
		}
		return resolution, nil
	}

	if link.Model == nil {
		s.log.Warn("tracking link has no destination and no model",
			zap.String("slug", slug),
			zap.Int64("link_id", link.ID))
		return nil, ErrNoDestination
	}

	resolution.ModelSlug = link.Model.Slug
	resolution.Destination = fmt.Sprintf("/model/%s?ref=%s", link.Model.Slug, slug)
	return resolution, nil
}
