package domain

import (
	"time"

	"family-tracker/backend/internal/geo"
	geofencedomain "family-tracker/backend/internal/geofence/domain"
)

// Violation is a recorded geofence transition. It is append-only except for the
// notification flag, which is set once after a successful dispatch.
type Violation struct {
	ID         string
	GeofenceID string
	UserID     string
	Kind       geofencedomain.TransitionKind
	Coordinate geo.Coordinate
	OccurredAt time.Time
	Notified   bool
	NotifiedAt *time.Time // nil until notified
	CreatedAt  time.Time
}
