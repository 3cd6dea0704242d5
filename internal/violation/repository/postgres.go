package repository

import (
	"context"
	"database/sql"
	"time"

	"family-tracker/backend/internal/db/sqlc/gen"
	"family-tracker/backend/internal/geo"
	geofencedomain "family-tracker/backend/internal/geofence/domain"
	"family-tracker/backend/internal/violation/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a violation repository backed by geofence_violations.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

func (r *PostgresRepository) Create(ctx context.Context, v *domain.Violation) error {
	row, err := r.queries.CreateGeofenceViolation(ctx, gen.CreateGeofenceViolationParams{
		ID:            v.ID,
		GeofenceID:    v.GeofenceID,
		UserID:        v.UserID,
		ViolationType: string(v.Kind),
		Latitude:      v.Coordinate.Latitude,
		Longitude:     v.Coordinate.Longitude,
		OccurredAt:    v.OccurredAt,
	})
	if err != nil {
		return err
	}
	v.CreatedAt = row.CreatedAt
	return nil
}

func (r *PostgresRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	return r.queries.MarkGeofenceViolationNotified(ctx, gen.MarkGeofenceViolationNotifiedParams{
		ID:                 id,
		NotificationSentAt: sql.NullTime{Time: at, Valid: true},
	})
}

func (r *PostgresRepository) ListUnnotified(ctx context.Context, limit int) ([]*domain.Violation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.queries.ListUnnotifiedGeofenceViolations(ctx, int32(limit))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Violation, 0, len(rows))
	for i := range rows {
		out = append(out, genViolationToDomain(&rows[i]))
	}
	return out, nil
}

func genViolationToDomain(v *gen.GeofenceViolation) *domain.Violation {
	out := &domain.Violation{
		ID:         v.ID,
		GeofenceID: v.GeofenceID,
		UserID:     v.UserID,
		Kind:       geofencedomain.TransitionKind(v.ViolationType),
		Coordinate: geo.Coordinate{Latitude: v.Latitude, Longitude: v.Longitude},
		OccurredAt: v.OccurredAt,
		Notified:   v.Notified,
		CreatedAt:  v.CreatedAt,
	}
	if v.NotificationSentAt.Valid {
		t := v.NotificationSentAt.Time
		out.NotifiedAt = &t
	}
	return out
}
