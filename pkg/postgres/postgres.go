// Package postgres wraps a pgx connection pool together with a squirrel
// statement builder so repositories can build and run queries through one
// handle.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	_defaultMaxPoolSize  = 10
	_defaultConnAttempts = 5
	_defaultConnDelay    = 2 * time.Second
)

type Postgres struct {
	squirrel.StatementBuilderType

	Pool *pgxpool.Pool

	maxPoolSize  int32
	connAttempts int
	connDelay    time.Duration
}

// New opens a connection pool, retrying the initial ping a bounded number
// of times before giving up.
func New(ctx context.Context, dsn string, log *zap.Logger, opts ...Option) (*Postgres, error) {
	const op = "postgres.New"

	pg := &Postgres{
		StatementBuilderType: Builder(),
		maxPoolSize:          _defaultMaxPoolSize,
		connAttempts:         _defaultConnAttempts,
		connDelay:            _defaultConnDelay,
	}

	for _, opt := range opts {
		opt(pg)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: parse config: %w", op, err)
	}
	poolCfg.MaxConns = pg.maxPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: new pool: %w", op, err)
	}

	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt >= pg.connAttempts {
			pool.Close()
			return nil, fmt.Errorf("%s: ping after %d attempts: %w", op, attempt, err)
		}
		log.Warn("database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", pg.connDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(pg.connDelay):
		}
	}

	pg.Pool = pool
	return pg, nil
}

// Builder is the statement builder used for every query in this module.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (p *Postgres) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.Pool.Exec(ctx, sql, args...)
}

func (p *Postgres) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.Pool.Query(ctx, sql, args...)
}

func (p *Postgres) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.Pool.QueryRow(ctx, sql, args...)
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
