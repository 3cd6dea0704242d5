package repository

import (
	"context"

	"family-tracker/backend/internal/settings/domain"
)

// Repository reads the notification configuration. Implementations must not cache:
// every call reflects the latest stored row.
type Repository interface {
	// Get returns the latest configuration, or nil if none has been stored.
	Get(ctx context.Context) (*domain.Notification, error)
	Create(ctx context.Context, n *domain.Notification) error
}
