package repository

import (
	"context"
	"fmt"

	"pushdispatcher/internal/entity"
	"pushdispatcher/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DeviceRepository struct {
	db *postgres.Postgres
}

func NewDeviceRepository(db *postgres.Postgres) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// FetchActive returns every active device registered to userID. Inactive
// devices are filtered at the store so they never reach the sender.
func (r *DeviceRepository) FetchActive(ctx context.Context, userID uuid.UUID) ([]entity.Device, error) {
	const op = "repository.DeviceRepository.FetchActive"

	sql, args, err := r.db.Select("id, user_id, token, name, active").
		From("devices").
		Where(squirrel.Eq{"user_id": userID, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var devices []entity.Device
	for rows.Next() {
		var d entity.Device
		var name pgtype.Text
		if err := rows.Scan(&d.ID, &d.UserID, &d.Token, &name, &d.Active); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		d.Name = name.String
		devices = append(devices, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return devices, nil
}
