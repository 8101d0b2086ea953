package worker

import (
	"context"
	"time"

	"fritakagp.app/backend/internal/model"
)

// Consumer abstracts the job queue for testability.
type Consumer interface {
	Read(ctx context.Context) (*model.Job, error)
	Ack(ctx context.Context, job *model.Job) error
	Requeue(ctx context.Context, job *model.Job, errMsg string) error
	SendDLQ(ctx context.Context, job *model.Job, errMsg string) error
}

// Processor runs one job type. A nil error marks the job DONE.
type Processor interface {
	Process(ctx context.Context, job *model.Job) error
}

// PermanentFailureHandler is implemented by processors that need to react once
// a job has used up its attempts, typically by handing the work to a human.
type PermanentFailureHandler interface {
	OnPermanentFailure(ctx context.Context, job *model.Job) error
}

// FailureReporter receives terminal job failures, e.g. for error tracking.
type FailureReporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

// StaleReclaimer returns jobs stuck in PROCESSING to the queue.
type StaleReclaimer interface {
	ReclaimStale(ctx context.Context, lease time.Duration) (int64, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job *model.Job) error

func (f ProcessorFunc) Process(ctx context.Context, job *model.Job) error {
	return f(ctx, job)
}
