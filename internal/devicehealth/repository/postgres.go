package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"family-tracker/backend/internal/db/sqlc/gen"
	"family-tracker/backend/internal/devicehealth/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a CooldownStore backed by device_status_notifications.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

func (r *PostgresRepository) Recent(ctx context.Context, userID string, kind domain.Kind, since time.Time) (*domain.Notification, error) {
	row, err := r.queries.GetLatestDeviceNotificationSince(ctx, gen.GetLatestDeviceNotificationSinceParams{
		UserID:           userID,
		NotificationType: string(kind),
		SentAt:           since,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genNotificationToDomain(&row), nil
}

func (r *PostgresRepository) Record(ctx context.Context, n *domain.Notification) error {
	_, err := r.queries.CreateDeviceNotification(ctx, gen.CreateDeviceNotificationParams{
		ID:               n.ID,
		UserID:           n.UserID,
		NotificationType: string(n.Kind),
		SentAt:           n.SentAt,
		BatteryLevel:     nullInt32(n.BatteryLevel),
		MinutesOffline:   nullInt32(n.MinutesOffline),
	})
	return err
}

func nullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func genNotificationToDomain(n *gen.DeviceStatusNotification) *domain.Notification {
	out := &domain.Notification{
		ID:     n.ID,
		UserID: n.UserID,
		Kind:   domain.Kind(n.NotificationType),
		SentAt: n.SentAt,
	}
	if n.BatteryLevel.Valid {
		v := int(n.BatteryLevel.Int32)
		out.BatteryLevel = &v
	}
	if n.MinutesOffline.Valid {
		v := int(n.MinutesOffline.Int32)
		out.MinutesOffline = &v
	}
	return out
}
