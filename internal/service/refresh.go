package service

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Ключ обновления дневных агрегатов
const RefreshKeyDailyStats = "daily_link_stats"

// ErrRefreshInProgress обновление по этому ключу уже выполняется
var ErrRefreshInProgress = errors.New("refresh already in progress")

// RefreshService оркестрирует пересчет предрассчитанных агрегатов:
// never -> in_progress -> {success, error} -> in_progress и так далее.
// Проверка "уже выполняется" и запись in_progress не атомарны — в рамках
// одного процесса этого достаточно, при нескольких процессах нужен
// advisory lock (см. DESIGN.md).
type RefreshService struct {
	storage   repository.Storage
	log       *zap.Logger
	key       string
	recompute func(ctx context.Context) error
	now       func() time.Time
}

// NewRefreshService создает оркестратор обновления. recompute — пересчет,
// который нужно выполнить под ключом; обычно это Storage.RebuildDailyStats.
func NewRefreshService(storage repository.Storage, log *zap.Logger, key string, recompute func(ctx context.Context) error) *RefreshService {
	return &RefreshService{
		storage:   storage,
		log:       log,
		key:       key,
		recompute: recompute,
		now:       time.Now,
	}
}

// GetStatus возвращает последнее известное состояние обновления.
// Отсутствие записи означает, что обновление еще ни разу не запускалось.
func (s *RefreshService) GetStatus(ctx context.Context) (*domain.RefreshStatus, error) {
	status, err := s.storage.GetRefreshStatus(ctx, s.key)
	if errors.Is(err, repository.ErrRefreshStatusNotFound) {
		return &domain.RefreshStatus{
			Key:    s.key,
			Status: domain.RefreshStatusNever,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Trigger запускает пересчет. Если обновление уже выполняется — сразу
// ErrRefreshInProgress, второй пересчет не стартует и не ставится в очередь.
// Ошибка пересчета сохраняется в статусе и пробрасывается вызывающему,
// чтобы на нее мог среагировать алертинг.
func (s *RefreshService) Trigger(ctx context.Context) (*domain.RefreshStatus, error) {
	current, err := s.GetStatus(ctx)
	if err != nil {
		return nil, err
	}
	if current.IsRunning() {
		s.log.Warn("refresh trigger rejected, already in progress", zap.String("key", s.key))
		return nil, ErrRefreshInProgress
	}

	started := s.now()
	running := &domain.RefreshStatus{
		Key:       s.key,
		Status:    domain.RefreshStatusInProgress,
		Timestamp: started,
	}
	if err := s.storage.SaveRefreshStatus(ctx, running); err != nil {
		return nil, fmt.Errorf("failed to mark refresh in progress: %w", err)
	}

	s.log.Info("refresh started", zap.String("key", s.key))
	recomputeErr := s.recompute(ctx)
	elapsed := s.now().Sub(started).Milliseconds()

	final := &domain.RefreshStatus{
		Key:        s.key,
		Timestamp:  s.now(),
		DurationMs: &elapsed,
	}

	if recomputeErr != nil {
		message := recomputeErr.Error()
		final.Status = domain.RefreshStatusError
		final.ErrorMessage = &message
		if err := s.storage.SaveRefreshStatus(ctx, final); err != nil {
			s.log.Error("failed to persist refresh error status", zap.String("key", s.key), zap.Error(err))
		}
		s.log.Error("refresh failed",
			zap.String("key", s.key),
			zap.Int64("duration_ms", elapsed),
			zap.Error(recomputeErr))
		return nil, fmt.Errorf("refresh failed: %w", recomputeErr)
	}

	final.Status = domain.RefreshStatusSuccess
	if err := s.storage.SaveRefreshStatus(ctx, final); err != nil {
		return nil, fmt.Errorf("failed to persist refresh success status: %w", err)
	}

	s.log.Info("refresh completed",
		zap.String("key", s.key),
		zap.Int64("duration_ms", elapsed))
	return final, nil
}
