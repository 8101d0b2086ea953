package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fritakagp.app/backend/common/logger"
	"fritakagp.app/backend/internal/model"
)

type Config struct {
	Concurrency   int
	PollInterval  time.Duration
	ShutdownGrace time.Duration
	Backoff       BackoffConfig
}

// Dispatcher polls the queue with a fixed pool of loops and runs each job with
// the processor registered for its type.
type Dispatcher struct {
	consumer Consumer
	cfg      Config
	reporter FailureReporter
	now      func() time.Time

	mu         sync.RWMutex
	processors map[string]Processor
	started    bool
	cancelJobs context.CancelFunc

	wg        sync.WaitGroup
	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, cfg Config) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Dispatcher{
		consumer:   consumer,
		cfg:        cfg,
		now:        time.Now,
		processors: make(map[string]Processor),
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// WithReporter sets where terminal failures are reported.
func (d *Dispatcher) WithReporter(r FailureReporter) *Dispatcher {
	d.reporter = r
	return d
}

// Register binds a processor to a job type. Must be called before Run.
func (d *Dispatcher) Register(jobType string, p Processor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return fmt.Errorf("registering %q: dispatcher already started", jobType)
	}
	if _, exists := d.processors[jobType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProcessor, jobType)
	}
	d.processors[jobType] = p
	return nil
}

// Types lists the registered job types.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	types := make([]string, 0, len(d.processors))
	for t := range d.processors {
		types = append(types, t)
	}
	return types
}

// Run starts the worker loops and blocks until Stop is called or ctx ends.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "fritakagp.worker.dispatcher",
	})
	defer close(d.stoppedCh)

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.mu.Lock()
	select {
	case <-d.stopCh:
		d.mu.Unlock()
		return nil
	default:
	}
	d.started = true
	d.cancelJobs = cancel
	d.wg.Add(d.cfg.Concurrency)
	d.mu.Unlock()

	slog.InfoContext(ctx, "dispatcher started",
		"concurrency", d.cfg.Concurrency,
		"poll_interval", d.cfg.PollInterval,
		"job_types", len(d.processors))

	for i := 0; i < d.cfg.Concurrency; i++ {
		go d.loop(jobCtx)
	}

	d.wg.Wait()
	slog.InfoContext(ctx, "dispatcher stopped")

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Stop stops polling and waits for in-flight jobs. Jobs still running after
// the grace period have their context cancelled.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })

	d.mu.RLock()
	started := d.started
	cancel := d.cancelJobs
	d.mu.RUnlock()
	if !started {
		return
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	if d.cfg.ShutdownGrace > 0 {
		select {
		case <-done:
		case <-time.After(d.cfg.ShutdownGrace):
			slog.Warn("shutdown grace period exceeded, cancelling in-flight jobs",
				"grace", d.cfg.ShutdownGrace)
			cancel()
		}
	}

	<-d.stoppedCh
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		default:
		}

		processed, err := d.RunOnce(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "polling for jobs failed", "error", err)
		}
		if processed {
			continue
		}

		timer := time.NewTimer(d.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-d.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce takes at most one due job and processes it. Reports whether a job was found.
func (d *Dispatcher) RunOnce(ctx context.Context) (bool, error) {
	job, err := d.consumer.Read(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	d.ProcessJob(ctx, job)
	return true, nil
}

// ProcessJob runs a job that is already PROCESSING and records the outcome.
func (d *Dispatcher) ProcessJob(ctx context.Context, job *model.Job) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		JobID:   logger.Ptr(job.ID.String()),
		JobType: logger.Ptr(job.Type),
		Attempt: logger.Ptr(job.Attempts + 1),
	})

	sc := logger.StartSpan(ctx, "worker.process_job",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("job.id", job.ID.String()),
			attribute.String("job.type", job.Type),
			attribute.Int("job.attempt", job.Attempts+1),
		))
	defer sc.End()
	ctx = sc.Context()

	// Outcome writes must land even when shutdown has cancelled the job.
	recordCtx := context.WithoutCancel(ctx)

	d.mu.RLock()
	p, ok := d.processors[job.Type]
	d.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownJobType, job.Type)
		slog.ErrorContext(ctx, "job has no registered processor, failing without retry",
			"error", err)
		if dlqErr := d.consumer.SendDLQ(recordCtx, job, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to mark job failed", "error", dlqErr)
		}
		d.report(recordCtx, job, err)
		return
	}

	// Reclaimed runs count as attempts, so a job that keeps killing its worker
	// arrives here with none left.
	if job.MaxAttempts > 0 && job.Attempts >= job.MaxAttempts {
		d.failExhausted(ctx, recordCtx, p, job, fmt.Errorf("%w: %d of %d used", ErrAttemptsExhausted, job.Attempts, job.MaxAttempts))
		return
	}

	slog.InfoContext(ctx, "processing job", "max_attempts", job.MaxAttempts)

	start := time.Now()
	err := d.processSafe(ctx, p, job)
	if err == nil {
		if ackErr := d.consumer.Ack(recordCtx, job); ackErr != nil {
			// The reclaimer will hand the job out again; processors are idempotent.
			slog.WarnContext(ctx, "failed to mark job done", "error", ackErr)
			return
		}
		slog.InfoContext(ctx, "job processed", "duration_ms", time.Since(start).Milliseconds())
		return
	}

	sc.RecordError(err)
	d.handleFailedJob(ctx, recordCtx, p, job, err)
}

func (d *Dispatcher) processSafe(ctx context.Context, p Processor, job *model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in job processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Process(ctx, job)
}

func (d *Dispatcher) handleFailedJob(ctx, recordCtx context.Context, p Processor, job *model.Job, err error) {
	var deferred *DeferredError
	if errors.As(err, &deferred) {
		job.RunAt = d.now().Add(deferred.After)
		slog.InfoContext(ctx, "job deferred", "reason", deferred.Reason, "run_at", job.RunAt)
		if requeueErr := d.consumer.Requeue(recordCtx, job, ""); requeueErr != nil {
			slog.ErrorContext(ctx, "failed to requeue deferred job", "error", requeueErr)
		}
		return
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		job.RunAt = d.now()
		slog.WarnContext(ctx, "job interrupted by shutdown, returning to queue")
		if requeueErr := d.consumer.Requeue(recordCtx, job, err.Error()); requeueErr != nil {
			slog.ErrorContext(ctx, "failed to requeue interrupted job", "error", requeueErr)
		}
		return
	}

	job.Attempts++

	if IsPermanent(err) || job.Attempts >= job.MaxAttempts {
		slog.ErrorContext(ctx, "job failed, no attempts left",
			"error", err,
			"attempts", job.Attempts,
			"permanent", IsPermanent(err))
		d.failExhausted(ctx, recordCtx, p, job, err)
		return
	}

	job.RunAt = d.now().Add(d.cfg.Backoff.Delay(job.Attempts))
	slog.WarnContext(ctx, "job failed, will retry",
		"error", err,
		"attempts", job.Attempts,
		"run_at", job.RunAt)
	if requeueErr := d.consumer.Requeue(recordCtx, job, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue job", "error", requeueErr)
	}
}

// failExhausted marks the job FAILED and, only if that write lands, runs the
// hook and reports. A rejected write means the job is no longer ours: either
// the reclaimer gave it to another worker or the write failed and the reclaimer
// will hand it out again.
func (d *Dispatcher) failExhausted(ctx, recordCtx context.Context, p Processor, job *model.Job, err error) {
	if dlqErr := d.consumer.SendDLQ(recordCtx, job, err.Error()); dlqErr != nil {
		slog.ErrorContext(ctx, "failed to mark job failed", "error", dlqErr)
		return
	}
	d.runFailureHook(recordCtx, p, job)
	d.report(recordCtx, job, err)
}

func (d *Dispatcher) runFailureHook(ctx context.Context, p Processor, job *model.Job) {
	h, ok := p.(PermanentFailureHandler)
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in permanent failure hook", "panic", r)
		}
	}()

	if err := h.OnPermanentFailure(ctx, job); err != nil {
		slog.ErrorContext(ctx, "permanent failure hook failed", "error", err)
	}
}

func (d *Dispatcher) report(ctx context.Context, job *model.Job, err error) {
	if d.reporter == nil {
		return
	}
	d.reporter.Report(ctx, err, map[string]string{
		"job_id":   job.ID.String(),
		"job_type": job.Type,
	})
}
