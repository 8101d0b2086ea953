package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fritakagp.app/backend/core/db/sqlc"
	"fritakagp.app/backend/internal/model"
)

// submissionStore persists a submission kind as a JSONB document keyed by id.
type submissionStore[T model.Record] struct {
	queries *sqlc.Queries
	table   sqlc.SubmissionTable
	newFn   func() T
}

func newSubmissionStore[T model.Record](queries *sqlc.Queries, table sqlc.SubmissionTable, newFn func() T) SubmissionStore[T] {
	return &submissionStore[T]{queries: queries, table: table, newFn: newFn}
}

const maxModifyAttempts = 5

func (s *submissionStore[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	record, _, err := s.load(ctx, id)
	return record, err
}

func (s *submissionStore[T]) load(ctx context.Context, id uuid.UUID) (T, int64, error) {
	var zero T

	row, err := s.queries.GetSubmission(ctx, s.table, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, 0, ErrNotFound
		}
		return zero, 0, err
	}

	record := s.newFn()
	if err := json.Unmarshal(row.Data, record); err != nil {
		return zero, 0, fmt.Errorf("decoding %s %s: %w", s.table, id, err)
	}
	return record, row.Version, nil
}

func (s *submissionStore[T]) Insert(ctx context.Context, record T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.table, err)
	}
	return s.queries.InsertSubmission(ctx, s.table, record.Base().ID, data)
}

func (s *submissionStore[T]) Modify(ctx context.Context, id uuid.UUID, fn func(record T) error) (T, error) {
	var zero T
	for attempt := 0; attempt < maxModifyAttempts; attempt++ {
		record, version, err := s.load(ctx, id)
		if err != nil {
			return zero, err
		}
		if err := fn(record); err != nil {
			return zero, err
		}

		data, err := json.Marshal(record)
		if err != nil {
			return zero, fmt.Errorf("encoding %s: %w", s.table, err)
		}
		affected, err := s.queries.UpdateSubmission(ctx, s.table, id, data, version)
		if err != nil {
			return zero, err
		}
		if affected == 1 {
			return record, nil
		}
	}
	return zero, fmt.Errorf("updating %s %s: %w", s.table, id, ErrConflict)
}

func (s *submissionStore[T]) Count(ctx context.Context) (int64, error) {
	return s.queries.CountSubmissions(ctx, s.table)
}
