package processing

import (
	"context"

	"fritakagp.app/backend/core/db"
	"fritakagp.app/backend/core/db/sqlc"
	"fritakagp.app/backend/internal/store"
)

// StoreProvider exposes the stores processors read and write.
// Mirrors service.StoreProvider - defined here to avoid import cycles.
type StoreProvider interface {
	store.SubmissionStores
	Jobs() store.JobStore
}

// TxRunner runs functions within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		return fn(store.NewStores(q))
	})
}
