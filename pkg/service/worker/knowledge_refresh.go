package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

// Ingester re-indexes the knowledge base from its configured location
type Ingester interface {
	Ingest(ctx context.Context, location string, clearExisting bool) (*model.IngestResult, error)
}

// KnowledgeRefreshWorker re-ingests the knowledge base periodically so that
// edits to the source documents reach the copilot without a restart.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Chunk IDs are content-addressed, so unchanged documents are rewritten in place
type KnowledgeRefreshWorker struct {
	ingester Ingester
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu       sync.RWMutex
	last     *model.IngestResult
	lastRun  time.Time
	failures int
}

// NewKnowledgeRefreshWorker creates a new worker for refreshing the knowledge base
func NewKnowledgeRefreshWorker(ingester Ingester, interval time.Duration) *KnowledgeRefreshWorker {
	return &KnowledgeRefreshWorker{
		ingester: ingester,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. The first refresh runs
// immediately in the background and does not block server startup.
func (w *KnowledgeRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", w.interval.String()))
	}

	logging.Default().Info("Knowledge refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *KnowledgeRefreshWorker) Stop() {
	logging.Default().Info("Knowledge refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Knowledge refresh worker stopped")
}

// LastResult returns the outcome of the latest successful refresh
func (w *KnowledgeRefreshWorker) LastResult() (*model.IngestResult, time.Time, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return nil, time.Time{}, false
	}
	result := *w.last
	return &result, w.lastRun, true
}

// Failures returns the number of failed refresh cycles
func (w *KnowledgeRefreshWorker) Failures() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.failures
}

func (w *KnowledgeRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.refresh(ctx); err != nil {
		logging.Default().Error("Initial knowledge refresh failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				logging.Default().Error("Knowledge refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Knowledge refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Knowledge refresh worker context cancelled")
			return
		}
	}
}

// refresh performs a single cycle. Existing chunks are kept on failure.
func (w *KnowledgeRefreshWorker) refresh(ctx context.Context) error {
	startTime := time.Now()

	result, err := w.ingester.Ingest(ctx, "", false)
	if err != nil {
		w.mu.Lock()
		w.failures++
		w.mu.Unlock()
		return goerr.Wrap(err, "failed to refresh knowledge base")
	}

	w.mu.Lock()
	w.last = result
	w.lastRun = startTime
	w.mu.Unlock()

	logging.Default().Info("Knowledge refresh completed",
		"files", result.FilesIndexed,
		"chunks", result.ChunksIndexed,
		"duration", time.Since(startTime).String())

	return nil
}
