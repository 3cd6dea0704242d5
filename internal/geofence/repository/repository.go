package repository

import (
	"context"

	"family-tracker/backend/internal/geofence/domain"
)

// Repository defines persistence for geofences.
type Repository interface {
	// ListActiveForUser returns active fences of the family that apply to userID
	// (unscoped or scoped to that user), ordered by fence id.
	ListActiveForUser(ctx context.Context, familyID, userID string) ([]*domain.Geofence, error)
	Create(ctx context.Context, g *domain.Geofence) error
}
