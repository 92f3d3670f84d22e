package analytics

import (
	"LinkTrace-Backend/internal/domain"
	"LinkTrace-Backend/internal/repository"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RecorderConfig holds configuration for the event recorder
type RecorderConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of attempts per event (including the first)
	RetryBaseDelay  time.Duration // Delay grows linearly: base * attemptNumber
	AttemptTimeout  time.Duration // Per-attempt storage timeout
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() RecorderConfig {
	return RecorderConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryBaseDelay:  time.Second,
		AttemptTimeout:  10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Recorder persists analytics events asynchronously with bounded retry.
// Submission never blocks the HTTP response path: the redirect or page
// response is already flushed before an event reaches the queue, so a
// recording failure can never become a visible error for the visitor.
type Recorder struct {
	config   RecorderConfig
	storage  repository.Storage
	log      *zap.Logger
	jobQueue chan *domain.AnalyticsEvent
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewRecorder creates a new event recorder
func NewRecorder(storage repository.Storage, log *zap.Logger, config RecorderConfig) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())

	return &Recorder{
		config:   config,
		storage:  storage,
		log:      log,
		jobQueue: make(chan *domain.AnalyticsEvent, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recorder already started")
	}

	r.log.Info("starting event recorder",
		zap.Int("workers", r.config.WorkerCount),
		zap.Int("buffer_size", r.config.BufferSize),
		zap.Int("retry_attempts", r.config.RetryAttempts),
	)

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	return nil
}

// Stop gracefully shuts down the recorder. Events still queued when the
// shutdown timeout expires are lost — at-most-once is the accepted contract.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	r.log.Info("stopping event recorder")
	r.cancel()
	close(r.jobQueue)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("event recorder stopped gracefully")
	case <-time.After(r.config.ShutdownTimeout):
		r.log.Warn("event recorder shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	r.started = false
	return nil
}

// Submit queues an event for asynchronous recording. Returns an error only
// when the queue is full or the recorder is shutting down; callers treat
// that as a logged drop, never as a request failure.
func (r *Recorder) Submit(event *domain.AnalyticsEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	select {
	case r.jobQueue <- event:
		return nil
	case <-r.ctx.Done():
		return fmt.Errorf("recorder is shutting down")
	default:
		r.log.Error("event queue is full, dropping event",
			zap.String("event_type", event.EventType),
			zap.Int("queue_size", len(r.jobQueue)),
		)
		return fmt.Errorf("event queue is full")
	}
}

// worker drains the queue until shutdown
func (r *Recorder) worker(workerID int) {
	defer r.wg.Done()

	log := r.log.With(zap.Int("worker_id", workerID))
	log.Debug("event recorder worker started")

	for {
		select {
		case event := <-r.jobQueue:
			if event == nil {
				// Channel closed, worker should exit
				log.Debug("event recorder worker stopped")
				return
			}
			r.record(log, event)

		case <-r.ctx.Done():
			log.Debug("event recorder worker received shutdown signal")
			return
		}
	}
}

// record attempts to persist an event with a bounded number of retries and a
// linearly increasing delay (base*1, base*2, ...). Returns false when all
// attempts are exhausted; the event is dropped and only logged.
func (r *Recorder) record(log *zap.Logger, event *domain.AnalyticsEvent) bool {
	var lastErr error

	for attempt := 1; attempt <= r.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.AttemptTimeout)
		err := r.storage.SaveEvent(ctx, event)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("event recorded after retry",
					zap.String("event_type", event.EventType),
					zap.Int("attempt", attempt),
				)
			}
			return true
		}

		lastErr = err
		log.Warn("event recording failed",
			zap.String("event_type", event.EventType),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == r.config.RetryAttempts {
			break
		}

		select {
		case <-time.After(r.config.RetryBaseDelay * time.Duration(attempt)):
		case <-r.ctx.Done():
			log.Debug("worker shutdown during retry delay")
			return false
		}
	}

	log.Error("event dropped after all retries",
		zap.String("event_type", event.EventType),
		zap.Int("attempts", r.config.RetryAttempts),
		zap.Error(lastErr),
	)
	return false
}

// QueueStats returns current queue metrics for the health endpoint
func (r *Recorder) QueueStats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"started":        r.started,
		"queue_length":   len(r.jobQueue),
		"queue_capacity": cap(r.jobQueue),
		"worker_count":   r.config.WorkerCount,
		"retry_attempts": r.config.RetryAttempts,
	}
}
