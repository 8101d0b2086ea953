package db

import (
	"context"
	"fmt"
	"time"

	"fritakagp.app/backend/core/db/sqlc"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared Postgres pool for submissions and background jobs.
type DB struct {
	pool *pgxpool.Pool
}

type Config struct {
	DSN             string        `env:"DATABASE_URL"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	ApplicationName string        `env:"DB_APPLICATION_NAME" envDefault:"fritakagp"`
}

// New opens the pool and verifies connectivity.
func New(ctx context.Context, cfg Config) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = max(cfg.MaxConns, 1)
	poolCfg.MinConns = min(max(cfg.MinConns, 0), poolCfg.MaxConns)
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	// Shows up in pg_stat_activity next to the job queries.
	if cfg.ApplicationName != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// Queries runs outside any transaction.
func (db *DB) Queries() *sqlc.Queries {
	return sqlc.New(db.pool)
}

// WithTx runs fn with queries bound to one transaction. A submission insert
// and the jobs that drive it commit together or not at all:
//
//	err := db.WithTx(ctx, func(q *sqlc.Queries) error {
//	    if err := q.InsertSubmission(ctx, sqlc.TableChronicClaim, id, data); err != nil {
//	        return err
//	    }
//	    return q.UpsertJob(ctx, params)
//	})
func (db *DB) WithTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(sqlc.New(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
