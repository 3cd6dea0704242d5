package repository

import (
	"context"
	"time"

	"family-tracker/backend/internal/devicehealth/domain"
)

// CooldownStore records sent device health notifications and answers cooldown queries.
type CooldownStore interface {
	// Recent returns the newest notification of kind for userID sent after since, or nil if none.
	Recent(ctx context.Context, userID string, kind domain.Kind, since time.Time) (*domain.Notification, error)
	// Record persists a sent notification. n.ID must be set.
	Record(ctx context.Context, n *domain.Notification) error
}
