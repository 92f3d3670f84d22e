package service

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

// Сколько раз повторяем аллокацию, если проиграли гонку за slug
const maxAllocAttempts = 5

var slugPattern = regexp.MustCompile(`^c(\d+)$`)

// TrackingLinkService отвечает за создание трекинг-ссылок и выдачу
// последовательных slug вида c<N>.
type TrackingLinkService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewTrackingLinkService создает новый сервис трекинг-ссылок
func NewTrackingLinkService(storage repository.Storage, log *zap.Logger) *TrackingLinkService {
	return &TrackingLinkService{
		storage: storage,
		log:     log,
	}
}

// CreateLinkInput параметры создания трекинг-ссылки
type CreateLinkInput struct {
	ModelID        int64
	SourceID       int64
	SubtagID       *int64
	DestinationURL *string
	OrganizationID *int64
}

// AllocateSlug выдает следующий свободный slug для модели: c<max+1> по всем
// существующим slug вида c<N>. Slug чужого формата игнорируются, это не ошибка.
// Чтение и запись не атомарны: при конкурентной аллокации два вызова могут
// получить одинаковый номер, проигравшего отсечет уникальный индекс БД.
func (s *TrackingLinkService) AllocateSlug(ctx context.Context, modelID int64) (string, error) {
	slugs, err := s.storage.ListLinkSlugs(ctx, modelID)
	if err != nil {
		return "", fmt.Errorf("failed to list slugs: %w", err)
	}

	var max int64
	for _, slug := range slugs {
		matches := slugPattern.FindStringSubmatch(slug)
		if matches == nil {
			continue
		}
		n, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	return "c" + strconv.FormatInt(max+1, 10), nil
}

// CreateLink аллоцирует slug и сохраняет ссылку. При ErrSlugExists (проигранная
// гонка аллокации) повторяет аллокацию до maxAllocAttempts раз.
func (s *TrackingLinkService) CreateLink(ctx context.Context, input CreateLinkInput) (*domain.TrackingLink, error) {
	if _, err := s.storage.GetModelByID(ctx, input.ModelID); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetSourceByID(ctx, input.SourceID); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		slug, err := s.AllocateSlug(ctx, input.ModelID)
		if err != nil {
			return nil, err
		}

		link := &domain.TrackingLink{
			Slug:           slug,
			ModelID:        input.ModelID,
			SourceID:       input.SourceID,
			SubtagID:       input.SubtagID,
			DestinationURL: input.DestinationURL,
			OrganizationID: input.OrganizationID,
			IsActive:       true,
		}

		err = s.storage.CreateTrackingLink(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, repository.ErrSlugExists) {
			return nil, err
		}

		lastErr = err
		s.log.Debug("slug allocation lost race, retrying",
			zap.String("slug", slug),
			zap.Int64("model_id", input.ModelID),
			zap.Int("attempt", attempt))
	}

	return nil, fmt.Errorf("failed to allocate slug after %d attempts: %w", maxAllocAttempts, lastErr)
}
