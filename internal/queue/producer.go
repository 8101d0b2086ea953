package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fritakagp.app/backend/internal/model"
)

// JobSaver is the slice of store.JobStore the producer needs. Passing the
// transaction-bound store makes the job insert atomic with the caller's writes.
type JobSaver interface {
	Save(ctx context.Context, job *model.Job) error
}

type Producer interface {
	Enqueue(ctx context.Context, jobs JobSaver, task Task) (*model.Job, error)
}

type jobProducer struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewProducer(logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobProducer{
		logger: logger,
		now:    time.Now,
	}
}

func (p *jobProducer) Enqueue(ctx context.Context, jobs JobSaver, task Task) (*model.Job, error) {
	if task.Type == "" {
		return nil, fmt.Errorf("enqueue: missing task type for %s", task.Payload.Kind)
	}
	maxAttempts := task.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = FanOutMaxAttempts
	}

	job := model.NewJob(string(task.Type), task.Payload.Encode(), maxAttempts, p.now())
	if err := jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type, err)
	}

	p.logger.InfoContext(ctx, "enqueued job",
		"job_id", job.ID,
		"job_type", job.Type,
		"submission_id", task.Payload.SubmissionID,
		"max_attempts", maxAttempts)
	return job, nil
}
