// Query methods for internal/db/queries/locations.sql.

package gen

import (
	"context"
	"database/sql"
	"time"
)

const createLocation = `-- name: CreateLocation :one
INSERT INTO locations (user_id, latitude, longitude, accuracy, altitude, battery, captured_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, latitude, longitude, accuracy, altitude, battery, captured_at, created_at
`

type CreateLocationParams struct {
	UserID     string
	Latitude   float64
	Longitude  float64
	Accuracy   sql.NullFloat64
	Altitude   sql.NullFloat64
	Battery    sql.NullInt32
	CapturedAt time.Time
}

func (q *Queries) CreateLocation(ctx context.Context, arg CreateLocationParams) (Location, error) {
	row := q.db.QueryRowContext(ctx, createLocation,
		arg.UserID,
		arg.Latitude,
		arg.Longitude,
		arg.Accuracy,
		arg.Altitude,
		arg.Battery,
		arg.CapturedAt,
	)
	var i Location
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Latitude,
		&i.Longitude,
		&i.Accuracy,
		&i.Altitude,
		&i.Battery,
		&i.CapturedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getLatestLocation = `-- name: GetLatestLocation :one
SELECT id, user_id, latitude, longitude, accuracy, altitude, battery, captured_at, created_at
FROM locations
WHERE user_id = $1
ORDER BY captured_at DESC
LIMIT 1
`

func (q *Queries) GetLatestLocation(ctx context.Context, userID string) (Location, error) {
	row := q.db.QueryRowContext(ctx, getLatestLocation, userID)
	var i Location
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Latitude,
		&i.Longitude,
		&i.Accuracy,
		&i.Altitude,
		&i.Battery,
		&i.CapturedAt,
		&i.CreatedAt,
	)
	return i, err
}
