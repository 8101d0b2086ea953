package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fritakagp.app/backend/common/id"
	"fritakagp.app/backend/common/logger"
	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/lock"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/store"
	"fritakagp.app/backend/internal/worker"
)

// Deps are the collaborators shared by every processor.
type Deps struct {
	Stores         StoreProvider
	Tx             TxRunner
	Producer       queue.Producer
	Locker         lock.Locker
	Archive        integration.Archive
	Tasks          integration.TaskClient
	Files          integration.FileStorage
	Renderer       integration.Renderer
	Persons        integration.PersonLookup
	Orgs           integration.OrgLookup
	Publisher      integration.Publisher
	Correspondence integration.Correspondence
	Metrics        *Metrics

	Now        func() time.Time
	NewEventID func() string
}

type Config struct {
	FrontendURL       string
	ClaimTopic        string
	ApplicationTopic  string
	NotificationTopic string
	// LockRetryAfter is how long a job waits when another job holds its submission.
	LockRetryAfter time.Duration
	// ArchiveWaitAfter is how long a withdrawal waits for the claim's processing job.
	ArchiveWaitAfter time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = lock.Noop{}
	}
	if d.Metrics == nil {
		d.Metrics = noopMetrics()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewEventID == nil {
		d.NewEventID = id.NewString
	}
	if d.Producer == nil {
		d.Producer = queue.NewProducer(nil)
	}
	return d
}

func (c Config) withDefaults() Config {
	if c.LockRetryAfter <= 0 {
		c.LockRetryAfter = 30 * time.Second
	}
	if c.ArchiveWaitAfter <= 0 {
		c.ArchiveWaitAfter = time.Minute
	}
	return c
}

func kindOf[T model.Record]() model.SubmissionKind {
	var zero T
	return zero.Kind()
}

// decode reads the job payload. A malformed payload or one addressed to a
// different kind can never succeed, so both are permanent.
func decode[T model.Record](ctx context.Context, job *model.Job) (context.Context, queue.Payload, error) {
	payload, err := queue.ParsePayload(job.Data)
	if err != nil {
		return ctx, payload, worker.Permanent(err)
	}
	if want := kindOf[T](); payload.Kind != want {
		return ctx, payload, worker.Permanent(fmt.Errorf("payload is for %s, processor handles %s", payload.Kind, want))
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SubmissionID:   logger.Ptr(payload.SubmissionID.String()),
		SubmissionKind: logger.Ptr(string(payload.Kind)),
	})
	return ctx, payload, nil
}

func load[T model.Record](ctx context.Context, stores store.SubmissionStores, id uuid.UUID) (T, error) {
	record, err := store.Submissions[T](stores).GetByID(ctx, id)
	if err != nil {
		// Not found stays retryable: the row may belong to a transaction we raced.
		return record, fmt.Errorf("loading %s %s: %w", kindOf[T](), id, err)
	}
	return record, nil
}

// modify applies fn to the stored submission and returns the result. Writes go
// through the store's version check, so a withdrawal committed while a job was
// archiving is kept rather than overwritten by the job's older copy.
func modify[T model.Record](ctx context.Context, stores store.SubmissionStores, id uuid.UUID, fn func(record T) error) (T, error) {
	record, err := store.Submissions[T](stores).Modify(ctx, id, fn)
	if err != nil {
		return record, fmt.Errorf("saving %s %s: %w", kindOf[T](), id, err)
	}
	return record, nil
}

// loadAny fetches a submission when only the payload kind is known.
func loadAny(ctx context.Context, stores store.SubmissionStores, payload queue.Payload) (model.Record, error) {
	switch payload.Kind {
	case model.KindChronicClaim:
		return load[*model.ChronicClaim](ctx, stores, payload.SubmissionID)
	case model.KindChronicApplication:
		return load[*model.ChronicApplication](ctx, stores, payload.SubmissionID)
	case model.KindPregnancyClaim:
		return load[*model.PregnancyClaim](ctx, stores, payload.SubmissionID)
	case model.KindPregnancyApplication:
		return load[*model.PregnancyApplication](ctx, stores, payload.SubmissionID)
	}
	return nil, worker.Permanent(fmt.Errorf("unknown kind %q", payload.Kind))
}

// lockSubmission serializes marker-mutating jobs for one submission. A held
// lock defers the job without spending an attempt.
func (d Deps) lockSubmission(ctx context.Context, id uuid.UUID, retryAfter time.Duration) (func(), error) {
	release, err := d.Locker.Acquire(ctx, id.String())
	if errors.Is(err, lock.ErrHeld) {
		return nil, worker.Deferred("submission is being processed by another job", retryAfter)
	}
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.WarnContext(ctx, "failed to release submission lock", "error", err)
		}
	}, nil
}

// taskDescription is the JSON body robots read from a case-task. The
// discriminator tells them which benefit the submission belongs to.
func taskDescription(record model.Record, discriminator string) (string, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encoding task description: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("encoding task description: %w", err)
	}
	fields["kravType"] = discriminator
	out, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding task description: %w", err)
	}
	return string(out), nil
}

func (d Deps) dueDate() time.Time {
	return d.Now().AddDate(0, 0, 7)
}

// createDistributionTask hands a submission to a human after the automated
// pipeline gave up on it.
func (d Deps) createDistributionTask(ctx context.Context, record model.Record, description, archiveRef string) error {
	base := record.Base()

	req := integration.TaskRequest{
		TaskType:    integration.TaskTypeDistribution,
		Description: description,
		ArchiveRef:  archiveRef,
		DueDate:     d.dueDate(),
	}
	if person, err := d.Persons.Lookup(ctx, base.PersonID); err != nil {
		slog.WarnContext(ctx, "person lookup failed, creating distribution task without routing", "error", err)
	} else {
		req.ActorID = person.ActorID
		req.GeoArea = person.GeoArea
	}

	taskID, err := d.Tasks.CreateTask(ctx, req)
	if err != nil {
		return fmt.Errorf("creating distribution task: %w", err)
	}
	inc(ctx, d.Metrics.distributed, record.Kind())
	slog.InfoContext(ctx, "distribution task created", "task_id", taskID)
	return nil
}
