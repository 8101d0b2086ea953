package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fritakagp.app/backend/common/logger"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/store"
)

// PostgresConsumer hands out due jobs from the background_jobs table and
// records their outcome.
type PostgresConsumer struct {
	jobs store.JobStore
	now  func() time.Time
}

func NewPostgresConsumer(jobs store.JobStore) *PostgresConsumer {
	return &PostgresConsumer{jobs: jobs, now: time.Now}
}

// Read claims the next due job. Returns nil when nothing is due.
func (c *PostgresConsumer) Read(ctx context.Context) (*model.Job, error) {
	job, err := c.jobs.TakeNextDue(ctx, c.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("taking next due job: %w", err)
	}
	return job, nil
}

func (c *PostgresConsumer) Ack(ctx context.Context, job *model.Job) error {
	if err := c.jobs.MarkDone(ctx, job); err != nil {
		return fmt.Errorf("marking job done: %w", err)
	}
	job.Status = model.JobStatusDone
	job.LastError = nil

	slog.DebugContext(ctx, "job acknowledged")
	return nil
}

// Requeue puts the job back to PENDING with the attempts and run_at already set on it.
func (c *PostgresConsumer) Requeue(ctx context.Context, job *model.Job, errMsg string) error {
	job.Status = model.JobStatusPending
	job.LastError = errorText(errMsg)
	if err := c.jobs.UpdateState(ctx, job); err != nil {
		return fmt.Errorf("requeueing job: %w", err)
	}

	slog.InfoContext(ctx, "job requeued for retry",
		"attempts", job.Attempts,
		"run_at", job.RunAt,
		"reason", errMsg)
	return nil
}

func (c *PostgresConsumer) SendDLQ(ctx context.Context, job *model.Job, errMsg string) error {
	job.Status = model.JobStatusFailed
	job.LastError = errorText(errMsg)
	if err := c.jobs.UpdateState(ctx, job); err != nil {
		return fmt.Errorf("marking job failed: %w", err)
	}

	slog.ErrorContext(ctx, "job failed permanently",
		"attempts", job.Attempts,
		"final_error", errMsg)
	return nil
}

// ReclaimStale returns jobs stuck in PROCESSING for longer than lease to
// PENDING. Their old lease is void, so a late outcome from the original worker
// is rejected with store.ErrLeaseLost.
func (c *PostgresConsumer) ReclaimStale(ctx context.Context, lease time.Duration) (int64, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "fritakagp.queue.consumer"})

	n, err := c.jobs.ReclaimStale(ctx, c.now().Add(-lease))
	if err != nil {
		return 0, fmt.Errorf("reclaiming stale jobs: %w", err)
	}
	if n > 0 {
		slog.WarnContext(ctx, "reclaimed stale jobs", "count", n, "lease", lease)
	}
	return n, nil
}

func errorText(msg string) *string {
	if msg == "" {
		return nil
	}
	msg = logger.Truncate(msg, 4000)
	return &msg
}
