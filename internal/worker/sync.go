package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/playerboard/internal/config"
)

// ScoreSource reads the durable scores (PostgreSQL)
type ScoreSource interface {
	AllScores(ctx context.Context) (map[int64]int64, error)
}

// RankSink receives a full mirror replacement (Redis)
type RankSink interface {
	ReplaceAll(ctx context.Context, scores map[int64]int64) error
}

// SyncWorker periodically rebuilds the Redis rank mirror from PostgreSQL.
// The database is the source of truth; sync only ever flows toward Redis.
type SyncWorker struct {
	source  ScoreSource
	sink    RankSink
	config  *config.SyncConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(source ScoreSource, sink RankSink, cfg *config.SyncConfig, logger *slog.Logger) *SyncWorker {
	return &SyncWorker{
		source: source,
		sink:   sink,
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background sync process
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background sync process
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

// run is the main worker loop
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.Rebuild(ctx); err != nil {
				w.logger.Error("mirror rebuild failed", "error", err)
			}
		}
	}
}

// Rebuild replaces the Redis mirror with the current database contents.
// It is also called once at startup to recover after a Redis restart.
func (w *SyncWorker) Rebuild(ctx context.Context) error {
	startTime := time.Now()

	scores, err := w.source.AllScores(ctx)
	if err != nil {
		return err
	}

	if err := w.sink.ReplaceAll(ctx, scores); err != nil {
		return err
	}

	w.logger.Info("mirror rebuilt",
		"players", len(scores),
		"duration", time.Since(startTime),
	)
	return nil
}
