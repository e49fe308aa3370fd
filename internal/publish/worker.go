package publish

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/terra-clan/swim-timer/internal/models"
)

// Source provides snapshots and a change counter
type Source interface {
	Version() uint64
	Snapshot() *models.Snapshot
}

// Worker periodically publishes results whenever they changed
type Worker struct {
	source   Source
	registry *Registry
	interval time.Duration

	mu        sync.Mutex
	published uint64
	hasRun    bool
}

// NewWorker creates a new publishing worker
func NewWorker(source Source, registry *Registry, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &Worker{
		source:   source,
		registry: registry,
		interval: interval,
	}
}

// Start begins the publishing loop in a goroutine
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	slog.Info("publish worker started", "interval", w.interval, "sinks", w.registry.List())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("publish worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Flush(ctx); err != nil {
				slog.Error("failed to publish results", "error", err)
			}
		}
	}
}

// Flush publishes the current snapshot if it changed since the last successful
// publish. It reports whether anything was published.
func (w *Worker) Flush(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.registry.Len() == 0 {
		return false, nil
	}

	version := w.source.Version()
	if w.hasRun && version == w.published {
		return false, nil
	}

	snap := w.source.Snapshot()
	if snap.RaceID == "" {
		// nothing to publish before the first start or after a reset
		w.published, w.hasRun = snap.Version, true
		return false, nil
	}

	pub, err := NewPublication(snap)
	if err != nil {
		return false, err
	}

	if err := w.registry.PublishAll(ctx, pub); err != nil {
		return false, err
	}

	w.published, w.hasRun = snap.Version, true
	slog.Info("results published",
		"race_id", snap.RaceID,
		"version", snap.Version,
		"finishers", len(snap.Overall),
	)
	return true, nil
}
