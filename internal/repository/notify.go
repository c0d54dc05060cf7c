package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pushdispatcher/internal/entity"
	"pushdispatcher/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const notificationColumns = "id, user_id, title, message, data, type, priority, status, is_read, read_at, read_device_id, created_at, updated_at, processed_at"

// NotifyRepository reads and writes notification rows. Every method is an
// independent store transaction; nothing here spans calls.
type NotifyRepository struct {
	db *postgres.Postgres
}

func NewNotifyRepository(db *postgres.Postgres) *NotifyRepository {
	return &NotifyRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *NotifyRepository) scanNotification(scanner rowScanner) (*entity.Notification, error) {
	var n entity.Notification
	var data []byte
	var readAt pgtype.Timestamptz
	var readDeviceID pgtype.Text
	var processedAt pgtype.Timestamptz

	err := scanner.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&data,
		&n.Type,
		&n.Priority,
		&n.Status,
		&n.IsRead,
		&readAt,
		&readDeviceID,
		&n.CreatedAt,
		&n.UpdatedAt,
		&processedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Data, err = entity.ParsePayload(data)
	if err != nil {
		return nil, err
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	if readDeviceID.Valid {
		n.ReadDeviceID = readDeviceID.String
	}
	if processedAt.Valid {
		n.ProcessedAt = &processedAt.Time
	}

	return &n, nil
}

func (r *NotifyRepository) pendingSQL(limit uint64) (string, []any, error) {
	q := r.db.Select(notificationColumns).
		From("notifications").
		Where(squirrel.Eq{"status": entity.StatusPending}).
		OrderBy("priority DESC", "created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q.ToSql()
}

// FetchPending returns pending notifications, highest priority first, ties
// broken by oldest creation time. limit 0 fetches all pending rows.
func (r *NotifyRepository) FetchPending(ctx context.Context, limit uint64) ([]entity.Notification, error) {
	const op = "repository.NotifyRepository.FetchPending"

	sql, args, err := r.pendingSQL(limit)
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var results []entity.Notification
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		results = append(results, *n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return results, nil
}

// UpdateStatus moves a notification forward in its lifecycle. processedAt
// is supplied only for the terminal processed state.
func (r *NotifyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status, processedAt *time.Time) error {
	const op = "repository.NotifyRepository.UpdateStatus"

	update := r.db.Update("notifications").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	if processedAt != nil {
		update = update.Set("processed_at", *processedAt)
	}

	sql, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrDataNotFound)
	}

	return nil
}

func (r *NotifyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	const op = "repository.NotifyRepository.GetByID"

	sql, args, err := r.db.Select(notificationColumns).
		From("notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	n, err := r.scanNotification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrDataNotFound)
		}
		return nil, fmt.Errorf("%s: scan row: %w", op, err)
	}

	return n, nil
}

// ListByUser returns one page of a user's notifications, newest and most
// urgent first, with the total and unread counts for pagination.
func (r *NotifyRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) ([]entity.Notification, int64, int64, error) {
	const op = "repository.NotifyRepository.ListByUser"

	where := squirrel.Eq{"user_id": userID}

	countQ := r.db.Select("COUNT(*)").From("notifications").Where(where)
	if unreadOnly {
		countQ = countQ.Where(squirrel.Eq{"is_read": false})
	}
	sql, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: building count query: %w", op, err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	unread, err := r.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	listQ := r.db.Select(notificationColumns).
		From("notifications").
		Where(where).
		OrderBy("priority DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))
	if unreadOnly {
		listQ = listQ.Where(squirrel.Eq{"is_read": false})
	}
	sql, args, err = listQ.ToSql()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: building list query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var results []entity.Notification
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("%s: scan row: %w", op, err)
		}
		results = append(results, *n)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return results, total, unread, nil
}

func (r *NotifyRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "repository.NotifyRepository.UnreadCount"

	sql, args, err := r.db.Select("COUNT(*)").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: building query: %w", op, err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: query: %w", op, err)
	}
	return count, nil
}

func (r *NotifyRepository) markReadSQL(id uuid.UUID, deviceID string) (string, []any, error) {
	return r.db.Update("notifications").
		Set("is_read", true).
		Set("read_at", squirrel.Expr("NOW()")).
		Set("read_device_id", deviceID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "is_read": false}).
		ToSql()
}

// MarkRead flags a notification as read by deviceID. Returns false without
// error when the row was already read.
func (r *NotifyRepository) MarkRead(ctx context.Context, id uuid.UUID, deviceID string) (bool, error) {
	const op = "repository.NotifyRepository.MarkRead"

	sql, args, err := r.markReadSQL(id, deviceID)
	if err != nil {
		return false, fmt.Errorf("%s: building query: %w", op, err)
	}

	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("%s: exec: %w", op, err)
	}
	return res.RowsAffected() > 0, nil
}

// MarkAllRead flags every unread notification of userID and returns how
// many rows changed.
func (r *NotifyRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error) {
	const op = "repository.NotifyRepository.MarkAllRead"

	sql, args, err := r.db.Update("notifications").
		Set("is_read", true).
		Set("read_at", squirrel.Expr("NOW()")).
		Set("read_device_id", deviceID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: building query: %w", op, err)
	}

	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: exec: %w", op, err)
	}
	return res.RowsAffected(), nil
}

func (r *NotifyRepository) Stats(ctx context.Context, userID uuid.UUID) (*entity.Stats, error) {
	const op = "repository.NotifyRepository.Stats"

	sql, args, err := r.db.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE is_read = false)",
		"COUNT(*) FILTER (WHERE type = 'job')",
		"COUNT(*) FILTER (WHERE type = 'alert')",
		"COUNT(*) FILTER (WHERE type = 'system')",
		fmt.Sprintf("COUNT(*) FILTER (WHERE priority = %d)", entity.PriorityUrgent),
	).
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	var stats entity.Stats
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&stats.Total,
		&stats.Unread,
		&stats.Job,
		&stats.Alert,
		&stats.System,
		&stats.Urgent,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	return &stats, nil
}
