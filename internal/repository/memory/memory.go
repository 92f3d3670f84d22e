package memory

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemStorage потокобезопасная реализация Storage в памяти для тестов
// и локальной разработки.
type MemStorage struct {
	mu              sync.RWMutex
	models          map[int64]*domain.Model
	organizations   map[int64]*domain.Organization
	sources         map[int64]*domain.TrackingSource
	subtags         map[int64]*domain.TrackingSubtag
	links           map[int64]*domain.TrackingLink
	events          []*domain.AnalyticsEvent
	dailyStats      []*domain.DailyLinkStat
	refreshStatuses map[string]*domain.RefreshStatus
	counter         int64
}

func New() *MemStorage {
	return &MemStorage{
		models:          make(map[int64]*domain.Model),
		organizations:   make(map[int64]*domain.Organization),
		sources:         make(map[int64]*domain.TrackingSource),
		subtags:         make(map[int64]*domain.TrackingSubtag),
		links:           make(map[int64]*domain.TrackingLink),
		refreshStatuses: make(map[string]*domain.RefreshStatus),
	}
}

func (s *MemStorage) nextID() int64 {
	s.counter++
	return s.counter
}

// --- Model Methods ---

func (s *MemStorage) CreateModel(_ context.Context, model *domain.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	model.ID = s.nextID()
	model.CreatedAt = time.Now()
	s.models[model.ID] = model
	return nil
}

func (s *MemStorage) GetModelByID(_ context.Context, id int64) (*domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[id]
	if !ok {
		return nil, repository.ErrModelNotFound
	}
	return model, nil
}

func (s *MemStorage) GetModelBySlug(_ context.Context, slug string) (*domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, model := range s.models {
		if model.Slug == slug {
			return model, nil
		}
	}
	return nil, repository.ErrModelNotFound
}

func (s *MemStorage) ListModels(_ context.Context) ([]*domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	models := make([]*domain.Model, 0, len(s.models))
	for _, model := range s.models {
		models = append(models, model)
	}
	return models, nil
}

func (s *MemStorage) CountModelsByOrganization(_ context.Context, orgID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, model := range s.models {
		if model.OrganizationID != nil && *model.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

// --- Organization Methods ---

func (s *MemStorage) CreateOrganization(_ context.Context, org *domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org.ID = s.nextID()
	org.CreatedAt = time.Now()
	s.organizations[org.ID] = org
	return nil
}

func (s *MemStorage) GetOrganizationByID(_ context.Context, id int64) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.organizations[id]
	if !ok {
		return nil, repository.ErrOrganizationNotFound
	}
	return org, nil
}

func (s *MemStorage) GetOrganizationByAPIKey(_ context.Context, apiKey string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.organizations {
		if org.APIKey == apiKey {
			return org, nil
		}
	}
	return nil, repository.ErrOrganizationNotFound
}

func (s *MemStorage) DeleteOrganization(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.organizations[id]; !ok {
		return repository.ErrOrganizationNotFound
	}
	delete(s.organizations, id)
	return nil
}

// --- Tracking Source Methods ---

func (s *MemStorage) CreateSource(_ context.Context, source *domain.TrackingSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	source.ID = s.nextID()
	s.sources[source.ID] = source
	return nil
}

func (s *MemStorage) GetSourceByID(_ context.Context, id int64) (*domain.TrackingSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	source, ok := s.sources[id]
	if !ok {
		return nil, repository.ErrSourceNotFound
	}
	return source, nil
}

func (s *MemStorage) GetSourceByName(_ context.Context, name string) (*domain.TrackingSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, source := range s.sources {
		if source.Name == name {
			return source, nil
		}
	}
	return nil, repository.ErrSourceNotFound
}

func (s *MemStorage) ListSources(_ context.Context) ([]*domain.TrackingSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sources := make([]*domain.TrackingSource, 0, len(s.sources))
	for _, source := range s.sources {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	return sources, nil
}

func (s *MemStorage) DeleteSource(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[id]; !ok {
		return repository.ErrSourceNotFound
	}
	delete(s.sources, id)
	return nil
}

func (s *MemStorage) CreateSubtag(_ context.Context, subtag *domain.TrackingSubtag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[subtag.SourceID]; !ok {
		return repository.ErrSourceNotFound
	}
	subtag.ID = s.nextID()
	s.subtags[subtag.ID] = subtag
	return nil
}

func (s *MemStorage) ListSubtagsBySource(_ context.Context, sourceID int64) ([]*domain.TrackingSubtag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var subtags []*domain.TrackingSubtag
	for _, subtag := range s.subtags {
		if subtag.SourceID == sourceID {
			subtags = append(subtags, subtag)
		}
	}
	sort.Slice(subtags, func(i, j int) bool { return subtags[i].ID < subtags[j].ID })
	return subtags, nil
}

// --- Tracking Link Methods ---

func (s *MemStorage) CreateTrackingLink(_ context.Context, link *domain.TrackingLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Эмулируем уникальный индекс (model_id, slug)
	for _, existing := range s.links {
		if existing.ModelID == link.ModelID && existing.Slug == link.Slug {
			return repository.ErrSlugExists
		}
	}
	link.ID = s.nextID()
	link.CreatedAt = time.Now()
	s.links[link.ID] = link
	return nil
}

func (s *MemStorage) GetTrackingLinkByID(_ context.Context, id int64) (*domain.TrackingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return s.withModel(link), nil
}

func (s *MemStorage) GetActiveLinkBySlug(_ context.Context, slug string) (*domain.TrackingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, link := range s.links {
		if link.Slug == slug && link.IsActive && !link.IsArchived {
			return s.withModel(link), nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (s *MemStorage) ListLinkSlugs(_ context.Context, modelID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var slugs []string
	for _, link := range s.links {
		if link.ModelID == modelID {
			slugs = append(slugs, link.Slug)
		}
	}
	return slugs, nil
}

func (s *MemStorage) ListTrackingLinks(_ context.Context, modelID *int64) ([]*domain.TrackingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var links []*domain.TrackingLink
	for _, link := range s.links {
		if link.IsArchived {
			continue
		}
		if modelID != nil && link.ModelID != *modelID {
			continue
		}
		links = append(links, link)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	return links, nil
}

func (s *MemStorage) UpdateTrackingLink(_ context.Context, link *domain.TrackingLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.links[link.ID]
	if !ok {
		return repository.ErrLinkNotFound
	}
	existing.DestinationURL = link.DestinationURL
	existing.SourceID = link.SourceID
	existing.SubtagID = link.SubtagID
	existing.IsActive = link.IsActive
	return nil
}

func (s *MemStorage) ArchiveTrackingLink(_ context.Context, modelID int64, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, link := range s.links {
		if link.ModelID == modelID && link.Slug == slug {
			link.IsArchived = true
			return nil
		}
	}
	return repository.ErrLinkNotFound
}

func (s *MemStorage) IncrementClickCount(_ context.Context, linkID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[linkID]
	if !ok {
		return repository.ErrLinkNotFound
	}
	link.ClickCount++
	return nil
}

// withModel подставляет связанную модель, как Preload("Model") в postgres реализации
func (s *MemStorage) withModel(link *domain.TrackingLink) *domain.TrackingLink {
	copied := *link
	if model, ok := s.models[link.ModelID]; ok {
		copied.Model = model
	}
	return &copied
}

// --- Analytics Event Methods ---

func (s *MemStorage) SaveEvent(_ context.Context, event *domain.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.nextID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.events = append(s.events, event)
	return nil
}

func (s *MemStorage) ScanEventBuckets(_ context.Context, filter repository.StatsFilter) ([]repository.StatRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Группируем по (дата, модель), чтобы форма результата совпадала
	// с частичными строками postgres реализации
	type bucketKey struct {
		date    string
		modelID int64
	}
	buckets := make(map[bucketKey]*repository.StatRow)

	for _, event := range s.events {
		if event.CreatedAt.Before(filter.From) || !event.CreatedAt.Before(filter.To.AddDate(0, 0, 1)) {
			continue
		}
		if filter.ModelID != nil && (event.ModelID == nil || *event.ModelID != *filter.ModelID) {
			continue
		}
		if filter.TrackingLinkID != nil && (event.TrackingLinkID == nil || *event.TrackingLinkID != *filter.TrackingLinkID) {
			continue
		}
		if filter.SourceName != nil {
			if event.SourceID == nil {
				continue
			}
			source, ok := s.sources[*event.SourceID]
			if !ok || source.Name != *filter.SourceName {
				continue
			}
		}

		day := event.CreatedAt.Truncate(24 * time.Hour)
		key := bucketKey{date: day.Format("2006-01-02")}
		if event.ModelID != nil {
			key.modelID = *event.ModelID
		}
		row, ok := buckets[key]
		if !ok {
			row = &repository.StatRow{Date: day}
			buckets[key] = row
		}
		if event.IsClick() {
			row.Clicks++
		} else {
			row.Views++
		}
	}

	rows := make([]repository.StatRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

// --- Precomputed Aggregate Methods ---

// SeedDailyStat добавляет строку предрассчитанного агрегата (только для тестов)
func (s *MemStorage) SeedDailyStat(stat *domain.DailyLinkStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyStats = append(s.dailyStats, stat)
}

func (s *MemStorage) GetDailyStats(_ context.Context, filter repository.StatsFilter) ([]repository.StatRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []repository.StatRow
	for _, stat := range s.dailyStats {
		if stat.Date.Before(filter.From) || stat.Date.After(filter.To) {
			continue
		}
		if filter.ModelID != nil && (stat.ModelID == nil || *stat.ModelID != *filter.ModelID) {
			continue
		}
		if filter.TrackingLinkID != nil && stat.TrafficSource != strconv.FormatInt(*filter.TrackingLinkID, 10) {
			continue
		}
		if filter.SourceName != nil && !s.trafficSourceMatches(stat.TrafficSource, *filter.SourceName) {
			continue
		}
		rows = append(rows, repository.StatRow{Date: stat.Date, Views: stat.Views, Clicks: stat.Clicks})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

func (s *MemStorage) trafficSourceMatches(trafficSource, sourceName string) bool {
	linkID, err := strconv.ParseInt(trafficSource, 10, 64)
	if err != nil {
		return false
	}
	link, ok := s.links[linkID]
	if !ok {
		return false
	}
	source, ok := s.sources[link.SourceID]
	return ok && source.Name == sourceName
}

func (s *MemStorage) RebuildDailyStats(ctx context.Context) error {
	rows, err := s.scanForRebuild(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyStats = rows
	return nil
}

func (s *MemStorage) scanForRebuild(_ context.Context) ([]*domain.DailyLinkStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type bucketKey struct {
		date          string
		trafficSource string
		country       string
	}
	buckets := make(map[bucketKey]*domain.DailyLinkStat)

	for _, event := range s.events {
		if event.TrackingLinkID == nil {
			continue
		}
		day := event.CreatedAt.Truncate(24 * time.Hour)
		key := bucketKey{
			date:          day.Format("2006-01-02"),
			trafficSource: strconv.FormatInt(*event.TrackingLinkID, 10),
		}
		if event.Country != nil {
			key.country = *event.Country
		}
		stat, ok := buckets[key]
		if !ok {
			stat = &domain.DailyLinkStat{
				Date:          day,
				TrafficSource: key.trafficSource,
				ModelID:       event.ModelID,
				Country:       event.Country,
			}
			buckets[key] = stat
		}
		if event.IsClick() {
			stat.Clicks++
		} else {
			stat.Views++
		}
	}

	rows := make([]*domain.DailyLinkStat, 0, len(buckets))
	for _, stat := range buckets {
		rows = append(rows, stat)
	}
	return rows, nil
}

// --- Refresh Status Methods ---

func (s *MemStorage) GetRefreshStatus(_ context.Context, key string) (*domain.RefreshStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.refreshStatuses[key]
	if !ok {
		return nil, repository.ErrRefreshStatusNotFound
	}
	copied := *status
	return &copied, nil
}

func (s *MemStorage) SaveRefreshStatus(_ context.Context, status *domain.RefreshStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *status
	s.refreshStatuses[status.Key] = &copied
	return nil
}
