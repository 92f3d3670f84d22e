package service

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"LinkTrace-Backend/internal/repository/memory"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupResolver(t *testing.T) (*ResolverService, *memory.MemStorage, *domain.Model, *domain.TrackingSource) {
	t.Helper()
	storage := memory.New()
	resolver := NewResolverService(storage, zap.NewNop())

	model := &domain.Model{Slug: "alice", Name: "Alice", IsActive: true}
	require.NoError(t, storage.CreateModel(context.Background(), model))

	source := &domain.TrackingSource{Name: "Instagram", Slug: "instagram"}
	require.NoError(t, storage.CreateSource(context.Background(), source))

	return resolver, storage, model, source
}

func TestResolve_FallbackToModelPage(t *testing.T) {
	resolver, storage, model, source := setupResolver(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{
		Slug:     "c1",
		ModelID:  model.ID,
		SourceID: source.ID,
		IsActive: true,
	}))

	resolution, err := resolver.Resolve(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "/model/alice?ref=c1", resolution.Destination)
	assert.Equal(t, "alice", resolution.ModelSlug)
	require.NotNil(t, resolution.ModelID)
	assert.Equal(t, model.ID, *resolution.ModelID)
}

func TestResolve_ExplicitDestinationWins(t *testing.T) {
	resolver, storage, model, source := setupResolver(t)
	ctx := context.Background()

	dest := "https://example.com/landing"
	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{
		Slug:           "c1",
		ModelID:        model.ID,
		SourceID:       source.ID,
		DestinationURL: &dest,
		IsActive:       true,
	}))

	resolution, err := resolver.Resolve(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, dest, resolution.Destination)
}

func TestResolve_EmptyDestinationFallsBack(t *testing.T) {
	resolver, storage, model, source := setupResolver(t)
	ctx := context.Background()

	empty := ""
	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{
		Slug:           "c1",
		ModelID:        model.ID,
		SourceID:       source.ID,
		DestinationURL: &empty,
		IsActive:       true,
	}))

	resolution, err := resolver.Resolve(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "/model/alice?ref=c1", resolution.Destination)
}

func TestResolve_InactiveLink(t *testing.T) {
	resolver, storage, model, source := setupResolver(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{
		Slug:     "c1",
		ModelID:  model.ID,
		SourceID: source.ID,
		IsActive: false,
	}))

	_, err := resolver.Resolve(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestResolve_ArchivedLink(t *testing.T) {
	resolver, storage, model, source := setupResolver(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{
		Slug:       "c1",
		ModelID:    model.ID,
		SourceID:   source.ID,
		IsActive:   true,
		IsArchived: true,
	}))

	_, err := resolver.Resolve(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestResolve_UnknownSlug(t *testing.T) {
	resolver, _, _, _ := setupResolver(t)

	_, err := resolver.Resolve(context.Background(), "c404")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestResolve_NoDestinationAndNoModel(t *testing.T) {
	resolver, storage, _, source := setupResolver(t)
	ctx := context.Background()

	// Ссылка указывает на несуществующую модель и не имеет явного назначения
	require.NoError(t, storage.CreateTrackingLink(ctx, &domain.TrackingLink{
		Slug:     "c1",
		ModelID:  9999,
		SourceID: source.ID,
		IsActive: true,
	}))

	_, err := resolver.Resolve(ctx, "c1")
	assert.ErrorIs(t, err, ErrNoDestination)
}
