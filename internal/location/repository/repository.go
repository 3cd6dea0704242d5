package repository

import (
	"context"

	"family-tracker/backend/internal/location/domain"
)

// Repository defines persistence for location samples.
type Repository interface {
	// Create persists the sample and sets its ID.
	Create(ctx context.Context, s *domain.Sample) error
	// CreateBatch persists all samples in one transaction; either all are stored or none.
	CreateBatch(ctx context.Context, samples []*domain.Sample) error
	// Latest returns the most recent sample for the user by capture time, or nil if the user has none.
	Latest(ctx context.Context, userID string) (*domain.Sample, error)
}
