package sqlc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// The submission tables share one shape, so these queries take the table as a
// parameter. Only SubmissionTable constants are accepted.

func (q *Queries) GetSubmission(ctx context.Context, table SubmissionTable, id uuid.UUID) (Submission, error) {
	if !table.Valid() {
		return Submission{}, fmt.Errorf("unknown submission table %q", table)
	}
	query := fmt.Sprintf(`SELECT id, data, created_at, version FROM %s WHERE id = $1`, table)

	var i Submission
	err := q.db.QueryRow(ctx, query, id).Scan(&i.ID, &i.Data, &i.CreatedAt, &i.Version)
	return i, err
}

func (q *Queries) InsertSubmission(ctx context.Context, table SubmissionTable, id uuid.UUID, data []byte) error {
	if !table.Valid() {
		return fmt.Errorf("unknown submission table %q", table)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, data) VALUES ($1, $2)`, table)

	_, err := q.db.Exec(ctx, query, id, data)
	return err
}

// UpdateSubmission writes data only if the row is still at version. Zero rows
// touched means the row is gone or someone else wrote it first.
func (q *Queries) UpdateSubmission(ctx context.Context, table SubmissionTable, id uuid.UUID, data []byte, version int64) (int64, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("unknown submission table %q", table)
	}
	query := fmt.Sprintf(`UPDATE %s SET data = $2, version = version + 1 WHERE id = $1 AND version = $3`, table)

	result, err := q.db.Exec(ctx, query, id, data, version)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (q *Queries) CountSubmissions(ctx context.Context, table SubmissionTable) (int64, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("unknown submission table %q", table)
	}
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, table)

	var total int64
	err := q.db.QueryRow(ctx, query).Scan(&total)
	return total, err
}
