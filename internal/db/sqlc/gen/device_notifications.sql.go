// Query methods for internal/db/queries/device_notifications.sql.

package gen

import (
	"context"
	"database/sql"
	"time"
)

const createDeviceNotification = `-- name: CreateDeviceNotification :one
INSERT INTO device_status_notifications (id, user_id, notification_type, sent_at, battery_level, minutes_offline)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, notification_type, sent_at, battery_level, minutes_offline
`

type CreateDeviceNotificationParams struct {
	ID               string
	UserID           string
	NotificationType string
	SentAt           time.Time
	BatteryLevel     sql.NullInt32
	MinutesOffline   sql.NullInt32
}

func (q *Queries) CreateDeviceNotification(ctx context.Context, arg CreateDeviceNotificationParams) (DeviceStatusNotification, error) {
	row := q.db.QueryRowContext(ctx, createDeviceNotification,
		arg.ID,
		arg.UserID,
		arg.NotificationType,
		arg.SentAt,
		arg.BatteryLevel,
		arg.MinutesOffline,
	)
	var i DeviceStatusNotification
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.NotificationType,
		&i.SentAt,
		&i.BatteryLevel,
		&i.MinutesOffline,
	)
	return i, err
}

const getLatestDeviceNotificationSince = `-- name: GetLatestDeviceNotificationSince :one
SELECT id, user_id, notification_type, sent_at, battery_level, minutes_offline
FROM device_status_notifications
WHERE user_id = $1
  AND notification_type = $2
  AND sent_at > $3
ORDER BY sent_at DESC
LIMIT 1
`

type GetLatestDeviceNotificationSinceParams struct {
	UserID           string
	NotificationType string
	SentAt           time.Time
}

func (q *Queries) GetLatestDeviceNotificationSince(ctx context.Context, arg GetLatestDeviceNotificationSinceParams) (DeviceStatusNotification, error) {
	row := q.db.QueryRowContext(ctx, getLatestDeviceNotificationSince, arg.UserID, arg.NotificationType, arg.SentAt)
	var i DeviceStatusNotification
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.NotificationType,
		&i.SentAt,
		&i.BatteryLevel,
		&i.MinutesOffline,
	)
	return i, err
}
