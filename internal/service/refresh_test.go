package service

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository/memory"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRefreshGetStatus_NeverBeforeFirstRun(t *testing.T) {
	storage := memory.New()
	svc := NewRefreshService(storage, zap.NewNop(), RefreshKeyDailyStats, func(context.Context) error { return nil })

	status, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RefreshStatusNever, status.Status)
	assert.Equal(t, RefreshKeyDailyStats, status.Key)
	assert.Nil(t, status.DurationMs)
}

func TestRefreshTrigger_Success(t *testing.T) {
	storage := memory.New()
	recomputed := 0
	svc := NewRefreshService(storage, zap.NewNop(), RefreshKeyDailyStats, func(context.Context) error {
		recomputed++
		return nil
	})

	status, err := svc.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, recomputed)
	assert.Equal(t, domain.RefreshStatusSuccess, status.Status)
	require.NotNil(t, status.DurationMs)
	assert.GreaterOrEqual(t, *status.DurationMs, int64(0))
	assert.Nil(t, status.ErrorMessage)

	// Статус сохранен и читается обратно
	persisted, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RefreshStatusSuccess, persisted.Status)
}

func TestRefreshTrigger_ErrorPersistedAndReraised(t *testing.T) {
	storage := memory.New()
	recomputeErr := errors.New("aggregate table locked")
	svc := NewRefreshService(storage, zap.NewNop(), RefreshKeyDailyStats, func(context.Context) error {
		return recomputeErr
	})

	_, err := svc.Trigger(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, recomputeErr)

	status, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RefreshStatusError, status.Status)
	require.NotNil(t, status.ErrorMessage)
	assert.Equal(t, "aggregate table locked", *status.ErrorMessage)
	require.NotNil(t, status.DurationMs)
}

func TestRefreshTrigger_ConflictWhileRunning(t *testing.T) {
	storage := memory.New()
	recomputed := 0
	svc := NewRefreshService(storage, zap.NewNop(), RefreshKeyDailyStats, func(context.Context) error {
		recomputed++
		return nil
	})

	// Эмулируем уже идущее обновление
	require.NoError(t, storage.SaveRefreshStatus(context.Background(), &domain.RefreshStatus{
		Key:       RefreshKeyDailyStats,
		Status:    domain.RefreshStatusInProgress,
		Timestamp: time.Now(),
	}))

	_, err := svc.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)
	assert.Equal(t, 0, recomputed, "recompute must not run while another refresh is in progress")
}

func TestRefreshTrigger_RunsAgainAfterError(t *testing.T) {
	storage := memory.New()
	calls := 0
	svc := NewRefreshService(storage, zap.NewNop(), RefreshKeyDailyStats, func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient failure")
		}
		return nil
	})

	_, err := svc.Trigger(context.Background())
	require.Error(t, err)

	status, err := svc.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, domain.RefreshStatusSuccess, status.Status)
}

func TestRefreshTrigger_DurationMeasured(t *testing.T) {
	storage := memory.New()
	svc := NewRefreshService(storage, zap.NewNop(), RefreshKeyDailyStats, func(context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	status, err := svc.Trigger(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.DurationMs)
	assert.GreaterOrEqual(t, *status.DurationMs, int64(20))
}
