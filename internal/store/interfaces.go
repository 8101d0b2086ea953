package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fritakagp.app/backend/internal/model"
)

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrLeaseLost is returned when a job outcome is written after the job was
	// reclaimed and handed to another worker.
	ErrLeaseLost = errors.New("job lease lost")
	// ErrConflict is returned when a submission kept changing underneath Modify.
	ErrConflict = errors.New("concurrent update")
)

// JobStore defines the contract for background job persistence.
type JobStore interface {
	// Save inserts the job or overwrites it when the id exists.
	Save(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	// TakeNextDue moves the oldest due PENDING job to PROCESSING under a fresh
	// lease token and returns it. Returns ErrNotFound when nothing is due.
	TakeNextDue(ctx context.Context, now time.Time) (*model.Job, error)
	// MarkDone and UpdateState only apply while job still holds its lease;
	// otherwise they return ErrLeaseLost.
	MarkDone(ctx context.Context, job *model.Job) error
	UpdateState(ctx context.Context, job *model.Job) error
	// ReclaimStale returns PROCESSING jobs untouched since before to PENDING and
	// counts the lost run as an attempt.
	ReclaimStale(ctx context.Context, before time.Time) (int64, error)
	// HasOpen reports whether a PENDING or PROCESSING job of jobType exists for the submission.
	HasOpen(ctx context.Context, jobType string, submissionID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error)
}

// SubmissionStore defines the contract for one kind of application or claim.
type SubmissionStore[T model.Record] interface {
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	Insert(ctx context.Context, record T) error
	// Modify loads the current row, applies fn and writes the result back only
	// if nobody wrote the row in between, reloading and reapplying fn when
	// someone did. An error from fn aborts without writing. Returns the stored record.
	Modify(ctx context.Context, id uuid.UUID, fn func(record T) error) (T, error)
	Count(ctx context.Context) (int64, error)
}

// SubmissionStores exposes one store per submission kind.
type SubmissionStores interface {
	ChronicClaims() SubmissionStore[*model.ChronicClaim]
	ChronicApplications() SubmissionStore[*model.ChronicApplication]
	PregnancyClaims() SubmissionStore[*model.PregnancyClaim]
	PregnancyApplications() SubmissionStore[*model.PregnancyApplication]
}
