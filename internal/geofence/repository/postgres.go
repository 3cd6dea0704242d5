package repository

import (
	"context"
	"database/sql"

	"family-tracker/backend/internal/db/sqlc/gen"
	"family-tracker/backend/internal/geo"
	"family-tracker/backend/internal/geofence/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a geofence repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// ListActiveForUser is read on every location sample; results are never cached.
func (r *PostgresRepository) ListActiveForUser(ctx context.Context, familyID, userID string) ([]*domain.Geofence, error) {
	rows, err := r.queries.ListActiveGeofencesForUser(ctx, gen.ListActiveGeofencesForUserParams{
		FamilyID: familyID,
		UserID:   sql.NullString{String: userID, Valid: userID != ""},
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Geofence, 0, len(rows))
	for i := range rows {
		out = append(out, genGeofenceToDomain(&rows[i]))
	}
	return out, nil
}

// Create persists the geofence. The geofence must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, g *domain.Geofence) error {
	_, err := r.queries.CreateGeofence(ctx, gen.CreateGeofenceParams{
		ID:            g.ID,
		FamilyID:      g.FamilyID,
		Name:          g.Name,
		Latitude:      g.Center.Latitude,
		Longitude:     g.Center.Longitude,
		Radius:        int32(g.RadiusMeters),
		UserID:        sql.NullString{String: g.UserID, Valid: g.UserID != ""},
		IsActive:      g.Active,
		NotifyOnExit:  g.NotifyOnExit,
		NotifyOnEnter: g.NotifyOnEnter,
		CreatedBy:     sql.NullString{String: g.CreatedBy, Valid: g.CreatedBy != ""},
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	})
	return err
}

func genGeofenceToDomain(g *gen.Geofence) *domain.Geofence {
	return &domain.Geofence{
		ID:            g.ID,
		FamilyID:      g.FamilyID,
		Name:          g.Name,
		Center:        geo.Coordinate{Latitude: g.Latitude, Longitude: g.Longitude},
		RadiusMeters:  int(g.Radius),
		UserID:        g.UserID.String,
		Active:        g.IsActive,
		NotifyOnEnter: g.NotifyOnEnter,
		NotifyOnExit:  g.NotifyOnExit,
		CreatedBy:     g.CreatedBy.String,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}
