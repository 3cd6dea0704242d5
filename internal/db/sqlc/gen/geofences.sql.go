// Query methods for internal/db/queries/geofences.sql.

package gen

import (
	"context"
	"database/sql"
	"time"
)

const createGeofence = `-- name: CreateGeofence :one
INSERT INTO geofences (id, family_id, name, latitude, longitude, radius, user_id, is_active, notify_on_exit, notify_on_enter, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, family_id, name, latitude, longitude, radius, user_id, is_active, notify_on_exit, notify_on_enter, created_by, created_at, updated_at
`

type CreateGeofenceParams struct {
	ID            string
	FamilyID      string
	Name          string
	Latitude      float64
	Longitude     float64
	Radius        int32
	UserID        sql.NullString
	IsActive      bool
	NotifyOnExit  bool
	NotifyOnEnter bool
	CreatedBy     sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (q *Queries) CreateGeofence(ctx context.Context, arg CreateGeofenceParams) (Geofence, error) {
	row := q.db.QueryRowContext(ctx, createGeofence,
		arg.ID,
		arg.FamilyID,
		arg.Name,
		arg.Latitude,
		arg.Longitude,
		arg.Radius,
		arg.UserID,
		arg.IsActive,
		arg.NotifyOnExit,
		arg.NotifyOnEnter,
		arg.CreatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Geofence
	err := row.Scan(
		&i.ID,
		&i.FamilyID,
		&i.Name,
		&i.Latitude,
		&i.Longitude,
		&i.Radius,
		&i.UserID,
		&i.IsActive,
		&i.NotifyOnExit,
		&i.NotifyOnEnter,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listActiveGeofencesForUser = `-- name: ListActiveGeofencesForUser :many
SELECT id, family_id, name, latitude, longitude, radius, user_id, is_active, notify_on_exit, notify_on_enter, created_by, created_at, updated_at
FROM geofences
WHERE family_id = $1
  AND is_active = TRUE
  AND (user_id IS NULL OR user_id = $2)
ORDER BY id
`

type ListActiveGeofencesForUserParams struct {
	FamilyID string
	UserID   sql.NullString
}

func (q *Queries) ListActiveGeofencesForUser(ctx context.Context, arg ListActiveGeofencesForUserParams) ([]Geofence, error) {
	rows, err := q.db.QueryContext(ctx, listActiveGeofencesForUser, arg.FamilyID, arg.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Geofence
	for rows.Next() {
		var i Geofence
		if err := rows.Scan(
			&i.ID,
			&i.FamilyID,
			&i.Name,
			&i.Latitude,
			&i.Longitude,
			&i.Radius,
			&i.UserID,
			&i.IsActive,
			&i.NotifyOnExit,
			&i.NotifyOnEnter,
			&i.CreatedBy,
			&i.CreatedAt,
			&i.UpdatedAt,
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
