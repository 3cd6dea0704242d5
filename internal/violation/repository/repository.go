package repository

import (
	"context"
	"time"

	"family-tracker/backend/internal/violation/domain"
)

// Repository defines persistence for geofence violations.
type Repository interface {
	// Create persists v with notified=false. v.ID must be set.
	Create(ctx context.Context, v *domain.Violation) error
	// MarkNotified sets notified=true and the sent time for id.
	MarkNotified(ctx context.Context, id string, at time.Time) error
	// ListUnnotified returns up to limit violations whose notification was never sent, oldest first.
	ListUnnotified(ctx context.Context, limit int) ([]*domain.Violation, error)
}
