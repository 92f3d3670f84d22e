package service

import (
	"LinkTrace-Backend/internal/repository"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// TimelineQuery диапазон дат и необязательные фильтры атрибуции
type TimelineQuery struct {
	From           time.Time
	To             time.Time
	SourceName     *string
	ModelID        *int64
	TrackingLinkID *int64
}

// DailyBucket агрегат за один день
type DailyBucket struct {
	Date   string `json:"date"`
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

// TimelineSummary сводка по всему диапазону
type TimelineSummary struct {
	TotalClicks     int64   `json:"total_clicks"`
	TotalViews      int64   `json:"total_views"`
	AvgClicksPerDay float64 `json:"avg_clicks_per_day"`
	DaysInRange     int     `json:"days_in_range"`
}

// TimelineResult дневные бакеты по возрастанию даты плюс сводка
type TimelineResult struct {
	Buckets []DailyBucket   `json:"buckets"`
	Summary TimelineSummary `json:"summary"`
}

// AttributionService сопоставляет сырые события и предрассчитанные агрегаты
// с источниками/моделями/трекинг-ссылками.
type AttributionService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewAttributionService создает новый сервис атрибуции
func NewAttributionService(storage repository.Storage, log *zap.Logger) *AttributionService {
	return &AttributionService{
		storage: storage,
		log:     log,
	}
}

// Timeline возвращает дневные бакеты за диапазон. Сначала читается
// предрассчитанный агрегат daily_link_stats; если за диапазон нет ни одной
// строки — скан сырых событий. Несколько частичных строк на одну дату
// суммируются в один бакет.
func (s *AttributionService) Timeline(ctx context.Context, query TimelineQuery) (*TimelineResult, error) {
	filter := repository.StatsFilter{
		From:           query.From,
		To:             query.To,
		SourceName:     query.SourceName,
		ModelID:        query.ModelID,
		TrackingLinkID: query.TrackingLinkID,
	}

	rows, err := s.storage.GetDailyStats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read precomputed stats: %w", err)
	}

	if len(rows) == 0 {
		s.log.Debug("no precomputed stats for range, falling back to raw events",
			zap.Time("from", query.From),
			zap.Time("to", query.To))
		rows, err = s.storage.ScanEventBuckets(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw events: %w", err)
		}
	}

	buckets := mergeBuckets(rows)

	days := int(query.To.Sub(query.From).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	summary := TimelineSummary{
		TotalClicks: lo.SumBy(buckets, func(b DailyBucket) int64 { return b.Clicks }),
		TotalViews:  lo.SumBy(buckets, func(b DailyBucket) int64 { return b.Views }),
		DaysInRange: days,
	}
	summary.AvgClicksPerDay = float64(summary.TotalClicks) / float64(days)

	return &TimelineResult{Buckets: buckets, Summary: summary}, nil
}

// mergeBuckets сливает частичные строки по дате (суммирование, не замена)
// и сортирует бакеты по возрастанию даты
func mergeBuckets(rows []repository.StatRow) []DailyBucket {
	merged := make(map[string]*DailyBucket)
	for _, row := range rows {
		date := row.Date.Format(dateLayout)
		bucket, ok := merged[date]
		if !ok {
			bucket = &DailyBucket{Date: date}
			merged[date] = bucket
		}
		bucket.Views += row.Views
		bucket.Clicks += row.Clicks
	}

	buckets := make([]DailyBucket, 0, len(merged))
	for _, bucket := range merged {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets
}
