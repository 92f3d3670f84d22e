package service

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestTimeline_MergesPartialRowsPerDate(t *testing.T) {
	storage := memory.New()
	svc := NewAttributionService(storage, zap.NewNop())

	// Две частичные строки за одну дату (разные страны) плюс одна за другую
	us := "US"
	de := "DE"
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-01"), TrafficSource: "1", Country: &us, Views: 10, Clicks: 3})
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-01"), TrafficSource: "1", Country: &de, Views: 5, Clicks: 2})
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-02"), TrafficSource: "1", Country: &us, Views: 7, Clicks: 1})

	result, err := svc.Timeline(context.Background(), TimelineQuery{From: day("2026-08-01"), To: day("2026-08-03")})
	require.NoError(t, err)

	require.Len(t, result.Buckets, 2)
	assert.Equal(t, DailyBucket{Date: "2026-08-01", Views: 15, Clicks: 5}, result.Buckets[0])
	assert.Equal(t, DailyBucket{Date: "2026-08-02", Views: 7, Clicks: 1}, result.Buckets[1])

	assert.Equal(t, int64(6), result.Summary.TotalClicks)
	assert.Equal(t, int64(22), result.Summary.TotalViews)
	assert.Equal(t, 3, result.Summary.DaysInRange)
	assert.InDelta(t, 2.0, result.Summary.AvgClicksPerDay, 0.001)
}

func TestTimeline_BucketsSortedAscending(t *testing.T) {
	storage := memory.New()
	svc := NewAttributionService(storage, zap.NewNop())

	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-05"), TrafficSource: "1", Views: 1, Clicks: 1})
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-02"), TrafficSource: "1", Views: 1, Clicks: 1})
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-04"), TrafficSource: "1", Views: 1, Clicks: 1})

	result, err := svc.Timeline(context.Background(), TimelineQuery{From: day("2026-08-01"), To: day("2026-08-07")})
	require.NoError(t, err)

	require.Len(t, result.Buckets, 3)
	assert.Equal(t, "2026-08-02", result.Buckets[0].Date)
	assert.Equal(t, "2026-08-04", result.Buckets[1].Date)
	assert.Equal(t, "2026-08-05", result.Buckets[2].Date)
}

func TestTimeline_FallsBackToRawEvents(t *testing.T) {
	storage := memory.New()
	svc := NewAttributionService(storage, zap.NewNop())
	ctx := context.Background()

	// Предрассчитанных строк нет вообще, но есть сырые события
	linkID := int64(1)
	click := &domain.AnalyticsEvent{EventType: domain.EventTypeLinkClick, TrackingLinkID: &linkID, CreatedAt: day("2026-08-01").Add(10 * time.Hour)}
	view := &domain.AnalyticsEvent{EventType: domain.EventTypePageView, TrackingLinkID: &linkID, CreatedAt: day("2026-08-01").Add(11 * time.Hour)}
	require.NoError(t, storage.SaveEvent(ctx, click))
	require.NoError(t, storage.SaveEvent(ctx, view))

	result, err := svc.Timeline(ctx, TimelineQuery{From: day("2026-08-01"), To: day("2026-08-02")})
	require.NoError(t, err)

	require.Len(t, result.Buckets, 1)
	assert.Equal(t, DailyBucket{Date: "2026-08-01", Views: 1, Clicks: 1}, result.Buckets[0])
}

func TestTimeline_PrecomputedTakesPriorityOverRaw(t *testing.T) {
	storage := memory.New()
	svc := NewAttributionService(storage, zap.NewNop())
	ctx := context.Background()

	// И агрегат, и сырое событие за дату: скан событий не должен выполняться
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-01"), TrafficSource: "1", Views: 100, Clicks: 50})
	linkID := int64(1)
	require.NoError(t, storage.SaveEvent(ctx, &domain.AnalyticsEvent{
		EventType:      domain.EventTypeLinkClick,
		TrackingLinkID: &linkID,
		CreatedAt:      day("2026-08-01").Add(time.Hour),
	}))

	result, err := svc.Timeline(ctx, TimelineQuery{From: day("2026-08-01"), To: day("2026-08-01")})
	require.NoError(t, err)

	require.Len(t, result.Buckets, 1)
	assert.Equal(t, int64(50), result.Buckets[0].Clicks)
	assert.Equal(t, int64(100), result.Buckets[0].Views)
}

func TestTimeline_EmptyRange(t *testing.T) {
	storage := memory.New()
	svc := NewAttributionService(storage, zap.NewNop())

	result, err := svc.Timeline(context.Background(), TimelineQuery{From: day("2026-08-01"), To: day("2026-08-07")})
	require.NoError(t, err)

	assert.Empty(t, result.Buckets)
	assert.Equal(t, int64(0), result.Summary.TotalClicks)
	assert.Equal(t, 7, result.Summary.DaysInRange)
	assert.Equal(t, 0.0, result.Summary.AvgClicksPerDay)
}

func TestTimeline_FiltersByTrackingLink(t *testing.T) {
	storage := memory.New()
	svc := NewAttributionService(storage, zap.NewNop())

	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-01"), TrafficSource: "1", Views: 3, Clicks: 2})
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: day("2026-08-01"), TrafficSource: "2", Views: 9, Clicks: 9})

	linkID := int64(1)
	result, err := svc.Timeline(context.Background(), TimelineQuery{
		From:           day("2026-08-01"),
		To:             day("2026-08-01"),
		TrackingLinkID: &linkID,
	})
	require.NoError(t, err)

	require.Len(t, result.Buckets, 1)
	assert.Equal(t, int64(2), result.Buckets[0].Clicks)
	assert.Equal(t, int64(3), result.Buckets[0].Views)
}
