package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pushdispatcher/pkg/postgres"

	"github.com/jackc/pgx/v5"
)

// MarkerRepository persists the single engine_runs row that serializes
// dispatcher cycles across processes.
type MarkerRepository struct {
	db *postgres.Postgres
}

func NewMarkerRepository(db *postgres.Postgres) *MarkerRepository {
	return &MarkerRepository{db: db}
}

// LastRun returns the timestamp of the most recent recorded cycle, or nil
// when no cycle has ever been recorded.
func (r *MarkerRepository) LastRun(ctx context.Context) (*time.Time, error) {
	const op = "repository.MarkerRepository.LastRun"

	sql, args, err := r.db.Select("last_exec").
		From("engine_runs").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	var last time.Time
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	return &last, nil
}

// RecordRun stamps the marker row with ts, creating it on first run.
func (r *MarkerRepository) RecordRun(ctx context.Context, ts time.Time) error {
	const op = "repository.MarkerRepository.RecordRun"

	sql, args, err := r.db.Insert("engine_runs").
		Columns("id", "last_exec").
		Values(1, ts).
		Suffix("ON CONFLICT (id) DO UPDATE SET last_exec = EXCLUDED.last_exec").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}
