package repository

import (
	"context"

	"family-tracker/backend/internal/message/domain"
)

// Repository defines persistence for family chat messages.
type Repository interface {
	// Create persists m and sets its ID and CreatedAt.
	Create(ctx context.Context, m *domain.Message) error
}
