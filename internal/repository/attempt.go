package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"pushdispatcher/internal/entity"
	"pushdispatcher/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AttemptRepository struct {
	db *postgres.Postgres
}

func NewAttemptRepository(db *postgres.Postgres) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create inserts a pending send attempt for one notification/device pair
// and returns its id. The token is snapshotted so the attempt row stays
// meaningful even if the device is later re-registered.
func (r *AttemptRepository) Create(ctx context.Context, notificationID, deviceID uuid.UUID, token string) (uuid.UUID, error) {
	const op = "repository.AttemptRepository.Create"

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: generating id: %w", op, err)
	}

	sql, args, err := r.db.Insert("notification_sends").
		Columns("id", "notification_id", "device_id", "token", "status", "created_at", "updated_at").
		Values(id, notificationID, deviceID, token, entity.SendPending, squirrel.Expr("NOW()"), squirrel.Expr("NOW()")).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return uuid.Nil, fmt.Errorf("%s: exec: %w", op, err)
	}

	return id, nil
}

// ListByNotification returns every send attempt recorded for one
// notification, oldest first.
func (r *AttemptRepository) ListByNotification(ctx context.Context, notificationID uuid.UUID) ([]entity.SendAttempt, error) {
	const op = "repository.AttemptRepository.ListByNotification"

	sql, args, err := r.db.Select("id, notification_id, device_id, token, status, result, error_message, retry_count, sent_at, created_at, updated_at").
		From("notification_sends").
		Where(squirrel.Eq{"notification_id": notificationID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var attempts []entity.SendAttempt
	for rows.Next() {
		var a entity.SendAttempt
		var result []byte
		var errorMessage pgtype.Text
		var sentAt pgtype.Timestamptz
		err := rows.Scan(
			&a.ID,
			&a.NotificationID,
			&a.DeviceID,
			&a.Token,
			&a.Status,
			&result,
			&errorMessage,
			&a.RetryCount,
			&sentAt,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		a.Result = json.RawMessage(result)
		a.ErrorMessage = errorMessage.String
		if sentAt.Valid {
			a.SentAt = &sentAt.Time
		}
		attempts = append(attempts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return attempts, nil
}

// RecordOutcome finalizes an attempt. Successful outcomes store the gateway
// result and timestamp the send; failed outcomes store the error text and
// how many retries were spent.
func (r *AttemptRepository) RecordOutcome(ctx context.Context, id uuid.UUID, status entity.SendStatus, result json.RawMessage, errorMessage string, retryCount int) error {
	const op = "repository.AttemptRepository.RecordOutcome"

	update := r.db.Update("notification_sends").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	switch status {
	case entity.SendSent, entity.SendDelivered:
		update = update.
			Set("result", []byte(result)).
			Set("sent_at", squirrel.Expr("NOW()"))
	case entity.SendFailed:
		update = update.
			Set("error_message", errorMessage).
			Set("retry_count", retryCount)
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
