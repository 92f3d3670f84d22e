package memory

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTrackingLink_SlugUniquePerModel(t *testing.T) {
	storage := New()
	ctx := context.Background()

	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{Slug: "c1", ModelID: 1, SourceID: 1}))

	err := storage.CreateTrackingLink(ctx, &domain.TrackingLink{Slug: "c1", ModelID: 1, SourceID: 1})
	assert.ErrorIs(t, err, repository.ErrSlugExists)

	// Тот же slug у другой модели допустим
	assert.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{Slug: "c1", ModelID: 2, SourceID: 1}))
}

func TestGetActiveLinkBySlug_PreloadsModel(t *testing.T) {
	storage := New()
	ctx := context.Background()

	model := &domain.Model{Slug: "alice", Name: "Alice"}
	require.NoError(t, storage.CreateModel(ctx, model))
	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{
		Slug: "c1", ModelID: model.ID, SourceID: 1, IsActive: true,
	}))

	link, err := storage.GetActiveLinkBySlug(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, link.Model)
	assert.Equal(t, "alice", link.Model.Slug)
}

func TestListTrackingLinks_SkipsArchived(t *testing.T) {
	storage := New()
	ctx := context.Background()

	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{Slug: "c1", ModelID: 1, SourceID: 1}))
	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{Slug: "c2", ModelID: 1, SourceID: 1}))
	require.NoError(t, storage.ArchiveTrackingLink(ctx, 1, "c1"))

	links, err := storage.ListTrackingLinks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "c2", links[0].Slug)
}

func TestIncrementClickCount(t *testing.T) {
	storage := New()
	ctx := context.Background()

	link := &domain.TrackingLink{Slug: "c1", ModelID: 1, SourceID: 1}
	require.NoError(t, storage.CreateTrackingLink(ctx, link))

	require.NoError(t, storage.IncrementClickCount(ctx, link.ID))
	require.NoError(t, storage.IncrementClickCount(ctx, link.ID))

	updated, err := storage.GetTrackingLinkByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.ClickCount)

	assert.ErrorIs(t, storage.IncrementClickCount(ctx, 9999), repository.ErrLinkNotFound)
}

func TestScanEventBuckets_GroupsByDateAndSplitsByModel(t *testing.T) {
	storage := New()
	ctx := context.Background()

	date, _ := time.Parse("2006-01-02", "2026-08-01")
	modelA, modelB := int64(1), int64(2)

	events := []*domain.AnalyticsEvent{
		{EventType: domain.EventTypeLinkClick, ModelID: &modelA, CreatedAt: date.Add(time.Hour)},
		{EventType: domain.EventTypePageView, ModelID: &modelA, CreatedAt: date.Add(2 * time.Hour)},
		{EventType: domain.EventTypePageView, ModelID: &modelB, CreatedAt: date.Add(3 * time.Hour)},
	}
	for _, event := range events {
		require.NoError(t, storage.SaveEvent(ctx, event))
	}

	rows, err := storage.ScanEventBuckets(ctx, repository.StatsFilter{From: date, To: date})
	require.NoError(t, err)

	// Две частичные строки за одну дату, по одной на модель
	require.Len(t, rows, 2)
	var views, clicks int64
	for _, row := range rows {
		views += row.Views
		clicks += row.Clicks
	}
	assert.Equal(t, int64(2), views)
	assert.Equal(t, int64(1), clicks)
}

func TestRebuildDailyStats_ReplacesAggregate(t *testing.T) {
	storage := New()
	ctx := context.Background()

	// Старый агрегат, который должен быть вытеснен пересчетом
	staleDate, _ := time.Parse("2006-01-02", "2020-01-01")
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: staleDate, TrafficSource: "42", Views: 100, Clicks: 100})

	date, _ := time.Parse("2006-01-02", "2026-08-01")
	linkID := int64(7)
	require.NoError(t, storage.SaveEvent(ctx, &domain.AnalyticsEvent{
		EventType:      domain.EventTypeLinkClick,
		TrackingLinkID: &linkID,
		CreatedAt:      date.Add(time.Hour),
	}))

	require.NoError(t, storage.RebuildDailyStats(ctx))

	stale, err := storage.GetDailyStats(ctx, repository.StatsFilter{From: staleDate, To: staleDate})
	require.NoError(t, err)
	assert.Empty(t, stale, "stale aggregate rows must be gone after rebuild")

	fresh, err := storage.GetDailyStats(ctx, repository.StatsFilter{From: date, To: date})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, int64(1), fresh[0].Clicks)
}

func TestGetDailyStats_FilterByTrackingLink(t *testing.T) {
	storage := New()
	ctx := context.Background()

	date, _ := time.Parse("2006-01-02", "2026-08-01")
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: date, TrafficSource: "1", Views: 1, Clicks: 1})
	storage.SeedDailyStat(&domain.DailyLinkStat{Date: date, TrafficSource: "2", Views: 9, Clicks: 9})

	linkID := int64(2)
	rows, err := storage.GetDailyStats(ctx, repository.StatsFilter{From: date, To: date, TrackingLinkID: &linkID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(9), rows[0].Clicks)
}

func TestRefreshStatusRoundTrip(t *testing.T) {
	storage := New()
	ctx := context.Background()

	_, err := storage.GetRefreshStatus(ctx, "daily_link_stats")
	assert.ErrorIs(t, err, repository.ErrRefreshStatusNotFound)

	duration := int64(120)
	require.NoError(t, storage.SaveRefreshStatus(ctx, &domain.RefreshStatus{
		Key:        "daily_link_stats",
		Status:     domain.RefreshStatusSuccess,
		Timestamp:  time.Now(),
		DurationMs: &duration,
	}))

	status, err := storage.GetRefreshStatus(ctx, "daily_link_stats")
	require.NoError(t, err)
	assert.Equal(t, domain.RefreshStatusSuccess, status.Status)
	require.NotNil(t, status.DurationMs)
	assert.Equal(t, int64(120), *status.DurationMs)
}
