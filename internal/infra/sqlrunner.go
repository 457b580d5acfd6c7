package infra

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor is the query surface repositories run against.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// SQLRunner wraps the pgx pool with per-query debug logging and duration
// tracking. Scan errors surface at the repository; only execution is
// observed here.
type SQLRunner struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	tag, err := r.Pool.Exec(ctx, query, args...)
	r.log("exec", start, err)
	return tag, err
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	start := time.Now()
	row := r.Pool.QueryRow(ctx, query, args...)
	r.log("query_row", start, nil)
	return row
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	start := time.Now()
	rows, err := r.Pool.Query(ctx, query, args...)
	r.log("query", start, err)
	return rows, err
}

func (r *SQLRunner) log(op string, start time.Time, err error) {
	evt := r.Logger.Debug()
	if err != nil {
		evt = r.Logger.Error().Err(err)
	}
	evt.Str("op", op).Dur("duration", time.Since(start)).Msg("sql")
}

var _ SQLExecutor = (*SQLRunner)(nil)
