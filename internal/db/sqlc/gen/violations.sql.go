// Query methods for internal/db/queries/violations.sql.

package gen

import (
	"context"
	"database/sql"
	"time"
)

const createGeofenceViolation = `-- name: CreateGeofenceViolation :one
INSERT INTO geofence_violations (id, geofence_id, user_id, violation_type, latitude, longitude, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, geofence_id, user_id, violation_type, latitude, longitude, occurred_at, notified, notification_sent_at, created_at
`

type CreateGeofenceViolationParams struct {
	ID            string
	GeofenceID    string
	UserID        string
	ViolationType string
	Latitude      float64
	Longitude     float64
	OccurredAt    time.Time
}

func (q *Queries) CreateGeofenceViolation(ctx context.Context, arg CreateGeofenceViolationParams) (GeofenceViolation, error) {
	row := q.db.QueryRowContext(ctx, createGeofenceViolation,
		arg.ID,
		arg.GeofenceID,
		arg.UserID,
		arg.ViolationType,
		arg.Latitude,
		arg.Longitude,
		arg.OccurredAt,
	)
	var i GeofenceViolation
	err := row.Scan(
		&i.ID,
		&i.GeofenceID,
		&i.UserID,
		&i.ViolationType,
		&i.Latitude,
		&i.Longitude,
		&i.OccurredAt,
		&i.Notified,
		&i.NotificationSentAt,
		&i.CreatedAt,
	)
	return i, err
}

const listUnnotifiedGeofenceViolations = `-- name: ListUnnotifiedGeofenceViolations :many
SELECT id, geofence_id, user_id, violation_type, latitude, longitude, occurred_at, notified, notification_sent_at, created_at
FROM geofence_violations
WHERE notified = FALSE
ORDER BY created_at
LIMIT $1
`

func (q *Queries) ListUnnotifiedGeofenceViolations(ctx context.Context, limit int32) ([]GeofenceViolation, error) {
	rows, err := q.db.QueryContext(ctx, listUnnotifiedGeofenceViolations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GeofenceViolation
	for rows.Next() {
		var i GeofenceViolation
		if err := rows.Scan(
			&i.ID,
			&i.GeofenceID,
			&i.UserID,
			&i.ViolationType,
			&i.Latitude,
			&i.Longitude,
			&i.OccurredAt,
			&i.Notified,
			&i.NotificationSentAt,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markGeofenceViolationNotified = `-- name: MarkGeofenceViolationNotified :exec
UPDATE geofence_violations
SET notified = TRUE, notification_sent_at = $2
WHERE id = $1
`

type MarkGeofenceViolationNotifiedParams struct {
	ID                 string
	NotificationSentAt sql.NullTime
}

func (q *Queries) MarkGeofenceViolationNotified(ctx context.Context, arg MarkGeofenceViolationNotifiedParams) error {
	_, err := q.db.ExecContext(ctx, markGeofenceViolationNotified, arg.ID, arg.NotificationSentAt)
	return err
}
