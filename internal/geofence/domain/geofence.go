package domain

import (
	"errors"
	"strings"
	"time"

	"family-tracker/backend/internal/geo"
)

// Radius bounds accepted for a geofence, in meters.
const (
	MinRadiusMeters = 10
	MaxRadiusMeters = 100000
)

// Geofence is a circular region owned by a family. An empty UserID applies it to every member.
type Geofence struct {
	ID            string
	FamilyID      string
	Name          string
	Center        geo.Coordinate
	RadiusMeters  int
	UserID        string
	Active        bool
	NotifyOnEnter bool
	NotifyOnExit  bool
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Contains reports whether c is inside the fence; the boundary counts as inside.
func (g *Geofence) Contains(c geo.Coordinate) bool {
	return geo.Contains(c, g.Center, float64(g.RadiusMeters))
}

// AppliesTo reports whether the fence is evaluated for userID.
func (g *Geofence) AppliesTo(userID string) bool {
	return g.UserID == "" || g.UserID == userID
}

// Validate validates the geofence for persistence. Returns an error describing the first validation failure.
func (g *Geofence) Validate() error {
	if g.FamilyID == "" {
		return errors.New("family id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("name is required")
	}
	if !g.Center.Valid() {
		return errors.New("center must be a valid coordinate")
	}
	if g.RadiusMeters < MinRadiusMeters || g.RadiusMeters > MaxRadiusMeters {
		return errors.New("radius must be between 10 and 100000 meters")
	}
	return nil
}

// TransitionKind is the direction of a boundary crossing.
type TransitionKind string

const (
	TransitionEnter TransitionKind = "enter"
	TransitionExit  TransitionKind = "exit"
)

// PastTense returns "entered" or "exited", as used in alert text.
func (k TransitionKind) PastTense() string {
	if k == TransitionEnter {
		return "entered"
	}
	return "exited"
}

// TransitionIntent is a detected boundary crossing that should be recorded and announced.
type TransitionIntent struct {
	GeofenceID   string
	GeofenceName string
	UserID       string
	FamilyID     string
	Kind         TransitionKind
	Coordinate   geo.Coordinate
	OccurredAt   time.Time
}
