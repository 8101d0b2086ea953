package sqlc

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const upsertJob = `-- name: UpsertJob :exec
INSERT INTO background_jobs (id, type, data, status, attempts, max_attempts, run_at, last_error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    type = EXCLUDED.type,
    data = EXCLUDED.data,
    status = EXCLUDED.status,
    attempts = EXCLUDED.attempts,
    max_attempts = EXCLUDED.max_attempts,
    run_at = EXCLUDED.run_at,
    last_error = EXCLUDED.last_error,
    updated_at = now()
`

type UpsertJobParams struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Data        []byte    `json:"data"`
	Status      string    `json:"status"`
	Attempts    int32     `json:"attempts"`
	MaxAttempts int32     `json:"max_attempts"`
	RunAt       time.Time `json:"run_at"`
	LastError   *string   `json:"last_error"`
}

func (q *Queries) UpsertJob(ctx context.Context, arg UpsertJobParams) error {
	_, err := q.db.Exec(ctx, upsertJob,
		arg.ID,
		arg.Type,
		arg.Data,
		arg.Status,
		arg.Attempts,
		arg.MaxAttempts,
		arg.RunAt,
		arg.LastError,
	)
	return err
}

const getJob = `-- name: GetJob :one
SELECT id, type, data, status, attempts, max_attempts, run_at, last_error, created_at, updated_at, lease_token
FROM background_jobs
WHERE id = $1
`

func (q *Queries) GetJob(ctx context.Context, id uuid.UUID) (BackgroundJob, error) {
	row := q.db.QueryRow(ctx, getJob, id)
	return scanJob(row)
}

const takeNextDueJob = `-- name: TakeNextDueJob :one
UPDATE background_jobs
SET status = 'PROCESSING', lease_token = $2, updated_at = now()
WHERE id = (
    SELECT id FROM background_jobs
    WHERE status = 'PENDING' AND run_at <= $1
    ORDER BY run_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING id, type, data, status, attempts, max_attempts, run_at, last_error, created_at, updated_at, lease_token
`

type TakeNextDueJobParams struct {
	Now        time.Time `json:"now"`
	LeaseToken uuid.UUID `json:"lease_token"`
}

func (q *Queries) TakeNextDueJob(ctx context.Context, arg TakeNextDueJobParams) (BackgroundJob, error) {
	row := q.db.QueryRow(ctx, takeNextDueJob, arg.Now, arg.LeaseToken)
	return scanJob(row)
}

const markJobDone = `-- name: MarkJobDone :execrows
UPDATE background_jobs
SET status = 'DONE', last_error = NULL, lease_token = NULL, updated_at = now()
WHERE id = $1 AND status = 'PROCESSING' AND lease_token = $2
`

func (q *Queries) MarkJobDone(ctx context.Context, id uuid.UUID, leaseToken uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, markJobDone, id, leaseToken)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateJobState = `-- name: UpdateJobState :execrows
UPDATE background_jobs
SET status = $2, attempts = $3, run_at = $4, last_error = $5, lease_token = NULL, updated_at = now()
WHERE id = $1 AND status = 'PROCESSING' AND lease_token = $6
`

type UpdateJobStateParams struct {
	ID         uuid.UUID `json:"id"`
	Status     string    `json:"status"`
	Attempts   int32     `json:"attempts"`
	RunAt      time.Time `json:"run_at"`
	LastError  *string   `json:"last_error"`
	LeaseToken uuid.UUID `json:"lease_token"`
}

func (q *Queries) UpdateJobState(ctx context.Context, arg UpdateJobStateParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateJobState,
		arg.ID,
		arg.Status,
		arg.Attempts,
		arg.RunAt,
		arg.LastError,
		arg.LeaseToken,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const reclaimStaleJobs = `-- name: ReclaimStaleJobs :execrows
UPDATE background_jobs
SET status = 'PENDING',
    attempts = attempts + 1,
    lease_token = NULL,
    last_error = 'lease expired before the job reported an outcome',
    run_at = now(),
    updated_at = now()
WHERE status = 'PROCESSING' AND updated_at < $1
`

func (q *Queries) ReclaimStaleJobs(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.Exec(ctx, reclaimStaleJobs, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const hasOpenJob = `-- name: HasOpenJob :one
SELECT EXISTS (
    SELECT 1 FROM background_jobs
    WHERE type = $1
      AND data ->> 'submissionId' = $2::text
      AND status IN ('PENDING', 'PROCESSING')
)
`

func (q *Queries) HasOpenJob(ctx context.Context, jobType string, submissionID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, hasOpenJob, jobType, submissionID.String()).Scan(&exists)
	return exists, err
}

const countJobsByStatus = `-- name: CountJobsByStatus :many
SELECT status, count(*) AS total
FROM background_jobs
GROUP BY status
`

type CountJobsByStatusRow struct {
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

func (q *Queries) CountJobsByStatus(ctx context.Context) ([]CountJobsByStatusRow, error) {
	rows, err := q.db.Query(ctx, countJobsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountJobsByStatusRow
	for rows.Next() {
		var i CountJobsByStatusRow
		if err := rows.Scan(&i.Status, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (BackgroundJob, error) {
	var i BackgroundJob
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Data,
		&i.Status,
		&i.Attempts,
		&i.MaxAttempts,
		&i.RunAt,
		&i.LastError,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.LeaseToken,
	)
	return i, err
}
