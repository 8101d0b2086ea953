package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fritakagp.app/backend/core/db/sqlc"
	"fritakagp.app/backend/internal/model"
)

type jobStore struct {
	queries *sqlc.Queries
}

func newJobStore(queries *sqlc.Queries) JobStore {
	return &jobStore{queries: queries}
}

func (s *jobStore) Save(ctx context.Context, job *model.Job) error {
	status := job.Status
	if status == "" {
		status = model.JobStatusPending
	}
	runAt := job.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}

	return s.queries.UpsertJob(ctx, sqlc.UpsertJobParams{
		ID:          job.ID,
		Type:        job.Type,
		Data:        job.Data,
		Status:      string(status),
		Attempts:    int32(job.Attempts),
		MaxAttempts: int32(job.MaxAttempts),
		RunAt:       runAt,
		LastError:   job.LastError,
	})
}

func (s *jobStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	row, err := s.queries.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toJobModel(row), nil
}

func (s *jobStore) TakeNextDue(ctx context.Context, now time.Time) (*model.Job, error) {
	row, err := s.queries.TakeNextDueJob(ctx, sqlc.TakeNextDueJobParams{Now: now, LeaseToken: uuid.New()})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toJobModel(row), nil
}

func (s *jobStore) MarkDone(ctx context.Context, job *model.Job) error {
	n, err := s.queries.MarkJobDone(ctx, job.ID, job.LeaseToken)
	return leaseResult(n, err)
}

func (s *jobStore) UpdateState(ctx context.Context, job *model.Job) error {
	n, err := s.queries.UpdateJobState(ctx, sqlc.UpdateJobStateParams{
		ID:         job.ID,
		Status:     string(job.Status),
		Attempts:   int32(job.Attempts),
		RunAt:      job.RunAt,
		LastError:  job.LastError,
		LeaseToken: job.LeaseToken,
	})
	return leaseResult(n, err)
}

func leaseResult(affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (s *jobStore) HasOpen(ctx context.Context, jobType string, submissionID uuid.UUID) (bool, error) {
	return s.queries.HasOpenJob(ctx, jobType, submissionID)
}

func (s *jobStore) ReclaimStale(ctx context.Context, before time.Time) (int64, error) {
	return s.queries.ReclaimStaleJobs(ctx, before)
}

func (s *jobStore) CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error) {
	rows, err := s.queries.CountJobsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[model.JobStatus]int64, len(rows))
	for _, row := range rows {
		counts[model.JobStatus(row.Status)] = row.Total
	}
	return counts, nil
}

func toJobModel(row sqlc.BackgroundJob) *model.Job {
	job := &model.Job{
		ID:          row.ID,
		Type:        row.Type,
		Data:        row.Data,
		Status:      model.JobStatus(row.Status),
		Attempts:    int(row.Attempts),
		MaxAttempts: int(row.MaxAttempts),
		RunAt:       row.RunAt,
		LastError:   row.LastError,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.LeaseToken != nil {
		job.LeaseToken = *row.LeaseToken
	}
	return job
}
