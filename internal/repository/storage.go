package repository

import (
	"LinkTrace-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrLinkNotFound          = errors.New("tracking link not found")
	ErrSlugExists            = errors.New("slug already exists for model")
	ErrModelNotFound         = errors.New("model not found")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrSourceNotFound        = errors.New("tracking source not found")
	ErrSubtagNotFound        = errors.New("tracking subtag not found")
	ErrRefreshStatusNotFound = errors.New("refresh status not found")
)

// StatsFilter задает диапазон дат и необязательные фильтры для выборки статистики.
type StatsFilter struct {
	From           time.Time
	To             time.Time
	SourceName     *string
	ModelID        *int64
	TrackingLinkID *int64
}

// StatRow одна (возможно частичная) строка статистики за день.
// Для одной даты может вернуться несколько строк, например при разбивке по странам.
type StatRow struct {
	Date   time.Time
	Views  int64
	Clicks int64
}

type Storage interface {
	// Model methods
	CreateModel(ctx context.Context, model *domain.Model) error
	GetModelByID(ctx context.Context, id int64) (*domain.Model, error)
	GetModelBySlug(ctx context.Context, slug string) (*domain.Model, error)
	ListModels(ctx context.Context) ([]*domain.Model, error)
	CountModelsByOrganization(ctx context.Context, orgID int64) (int64, error)

	// Organization methods
	CreateOrganization(ctx context.Context, org *domain.Organization) error
	GetOrganizationByID(ctx context.Context, id int64) (*domain.Organization, error)
	GetOrganizationByAPIKey(ctx context.Context, apiKey string) (*domain.Organization, error)
	DeleteOrganization(ctx context.Context, id int64) error

	// Tracking source methods
	CreateSource(ctx context.Context, source *domain.TrackingSource) error
	GetSourceByID(ctx context.Context, id int64) (*domain.TrackingSource, error)
	GetSourceByName(ctx context.Context, name string) (*domain.TrackingSource, error)
	ListSources(ctx context.Context) ([]*domain.TrackingSource, error)
	DeleteSource(ctx context.Context, id int64) error
	CreateSubtag(ctx context.Context, subtag *domain.TrackingSubtag) error
	ListSubtagsBySource(ctx context.Context, sourceID int64) ([]*domain.TrackingSubtag, error)

	// Tracking link methods
	CreateTrackingLink(ctx context.Context, link *domain.TrackingLink) error
	GetTrackingLinkByID(ctx context.Context, id int64) (*domain.TrackingLink, error)
	GetActiveLinkBySlug(ctx context.Context, slug string) (*domain.TrackingLink, error)
	ListLinkSlugs(ctx context.Context, modelID int64) ([]string, error)
	ListTrackingLinks(ctx context.Context, modelID *int64) ([]*domain.TrackingLink, error)
	UpdateTrackingLink(ctx context.Context, link *domain.TrackingLink) error
	ArchiveTrackingLink(ctx context.Context, modelID int64, slug string) error
	IncrementClickCount(ctx context.Context, linkID int64) error

	// Analytics event methods
	SaveEvent(ctx context.Context, event *domain.AnalyticsEvent) error
	ScanEventBuckets(ctx context.Context, filter StatsFilter) ([]StatRow, error)

	// Precomputed aggregate methods
	GetDailyStats(ctx context.Context, filter StatsFilter) ([]StatRow, error)
	RebuildDailyStats(ctx context.Context) error

	// Refresh status methods
	GetRefreshStatus(ctx context.Context, key string) (*domain.RefreshStatus, error)
	SaveRefreshStatus(ctx context.Context, status *domain.RefreshStatus) error
}
