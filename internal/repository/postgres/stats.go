package postgres

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statRow промежуточная структура для сканирования агрегированных строк
type statRow struct {
	Date   time.Time `gorm:"column:date"`
	Views  int64     `gorm:"column:views"`
	Clicks int64     `gorm:"column:clicks"`
}

// --- Analytics Event Methods ---

// SaveEvent сохраняет аналитическое событие. События неизменяемы,
// обновлений после вставки не бывает.
func (s *PostgresStorage) SaveEvent(ctx context.Context, event *domain.AnalyticsEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("failed to save analytics event",
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return fmt.Errorf("failed to save analytics event: %w", err)
	}
	return nil
}

// ScanEventBuckets агрегирует сырые события по дням. Группировка включает model_id,
// поэтому на одну дату может вернуться несколько частичных строк — слияние
// выполняет вызывающая сторона.
func (s *PostgresStorage) ScanEventBuckets(ctx context.Context, filter repository.StatsFilter) ([]repository.StatRow, error) {
	query := s.db.WithContext(ctx).Model(&domain.AnalyticsEvent{}).
		Select("DATE(created_at) AS date, "+
			"SUM(CASE WHEN event_type = ? THEN 0 ELSE 1 END) AS views, "+
			"SUM(CASE WHEN event_type = ? THEN 1 ELSE 0 END) AS clicks",
			domain.EventTypeLinkClick, domain.EventTypeLinkClick).
		Where("created_at >= ? AND created_at < ?", filter.From, filter.To.AddDate(0, 0, 1))

	if filter.ModelID != nil {
		query = query.Where("model_id = ?", *filter.ModelID)
	}
	if filter.TrackingLinkID != nil {
		query = query.Where("tracking_link_id = ?", *filter.TrackingLinkID)
	}
	if filter.SourceName != nil {
		query = query.Where("source_id IN (SELECT id FROM tracking_sources WHERE name = ?)", *filter.SourceName)
	}

	var rows []statRow
	err := query.Group("DATE(created_at), model_id").Order("date ASC").Find(&rows).Error
	if err != nil {
		s.log.Error("failed to scan event buckets", zap.Error(err))
		return nil, fmt.Errorf("failed to scan event buckets: %w", err)
	}

	return toStatRows(rows), nil
}

// --- Precomputed Aggregate Methods ---

// GetDailyStats возвращает строки предрассчитанного дневного агрегата. Строки
// разбиты по (date, traffic_source, country), слияние по дате выполняет
// вызывающая сторона.
func (s *PostgresStorage) GetDailyStats(ctx context.Context, filter repository.StatsFilter) ([]repository.StatRow, error) {
	query := s.db.WithContext(ctx).Model(&domain.DailyLinkStat{}).
		Select("date, views, clicks").
		Where("date >= ? AND date <= ?", filter.From, filter.To)

	if filter.ModelID != nil {
		query = query.Where("model_id = ?", *filter.ModelID)
	}
	if filter.TrackingLinkID != nil {
		query = query.Where("traffic_source = ?", strconv.FormatInt(*filter.TrackingLinkID, 10))
	}
	if filter.SourceName != nil {
		query = query.Where("traffic_source IN (SELECT CAST(tl.id AS TEXT) FROM tracking_links tl "+
			"JOIN tracking_sources ts ON ts.id = tl.source_id WHERE ts.name = ?)", *filter.SourceName)
	}

	var rows []statRow
	err := query.Order("date ASC").Find(&rows).Error
	if err != nil {
		s.log.Error("failed to get daily stats", zap.Error(err))
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return toStatRows(rows), nil
}

// RebuildDailyStats полностью пересчитывает таблицу daily_link_stats из сырых
// событий. Вызывается только оркестратором обновления.
func (s *PostgresStorage) RebuildDailyStats(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM daily_link_stats").Error; err != nil {
			return fmt.Errorf("failed to clear daily stats: %w", err)
		}

		insert := `
INSERT INTO daily_link_stats (date, traffic_source, model_id, country, views, clicks, updated_at)
SELECT DATE(created_at),
       CAST(tracking_link_id AS TEXT),
       model_id,
       country,
       SUM(CASE WHEN event_type = ? THEN 0 ELSE 1 END),
       SUM(CASE WHEN event_type = ? THEN 1 ELSE 0 END),
       NOW()
FROM analytics_events
WHERE tracking_link_id IS NOT NULL
GROUP BY DATE(created_at), tracking_link_id, model_id, country`

		if err := tx.Exec(insert, domain.EventTypeLinkClick, domain.EventTypeLinkClick).Error; err != nil {
			return fmt.Errorf("failed to rebuild daily stats: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to rebuild daily stats", zap.Error(err))
		return err
	}

	s.log.Info("rebuilt daily link stats")
	return nil
}

// --- Refresh Status Methods ---

// GetRefreshStatus получает статус обновления по ключу
func (s *PostgresStorage) GetRefreshStatus(ctx context.Context, key string) (*domain.RefreshStatus, error) {
	var status domain.RefreshStatus
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrRefreshStatusNotFound
	}
	if err != nil {
		s.log.Error("failed to get refresh status", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get refresh status: %w", err)
	}
	return &status, nil
}

// SaveRefreshStatus создает или обновляет статус обновления по ключу
func (s *PostgresStorage) SaveRefreshStatus(ctx context.Context, status *domain.RefreshStatus) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "timestamp", "duration_ms", "error_message"}),
	}).Create(status).Error
	if err != nil {
		s.log.Error("failed to save refresh status",
			zap.String("key", status.Key),
			zap.String("status", status.Status),
			zap.Error(err))
		return fmt.Errorf("failed to save refresh status: %w", err)
	}
	return nil
}

// toStatRows конвертирует промежуточные строки в тип репозитория
func toStatRows(rows []statRow) []repository.StatRow {
	result := make([]repository.StatRow, len(rows))
	for i, row := range rows {
		result[i] = repository.StatRow{
			Date:   row.Date,
			Views:  row.Views,
			Clicks: row.Clicks,
		}
	}
	return result
}
