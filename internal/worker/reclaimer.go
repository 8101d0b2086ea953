package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fritakagp.app/backend/common/logger"
)

type ReclaimerConfig struct {
	Lease    time.Duration
	Interval time.Duration
}

// Reclaimer periodically returns jobs stuck in PROCESSING to the queue.
// This handles the crash recovery scenario where a worker dies after taking
// a job but before recording its outcome.
type Reclaimer struct {
	source StaleReclaimer
	cfg    ReclaimerConfig

	mu        sync.Mutex
	started   bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReclaimer(source StaleReclaimer, cfg ReclaimerConfig) *Reclaimer {
	return &Reclaimer{
		source:    source,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the reclaimer loop. Blocks until Stop() is called.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "fritakagp.worker.reclaimer",
	})

	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"lease", r.cfg.Lease)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			r.ReclaimOnce(ctx)
		}
	}
}

// Stop signals the reclaimer to stop and waits for a running loop to exit.
// It is safe to call more than once and before Run.
func (r *Reclaimer) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		<-r.stoppedCh
	}
}

func (r *Reclaimer) ReclaimOnce(ctx context.Context) int64 {
	n, err := r.source.ReclaimStale(ctx, r.cfg.Lease)
	if err != nil {
		slog.ErrorContext(ctx, "reclaim cycle error", "error", err)
		return 0
	}
	return n
}
