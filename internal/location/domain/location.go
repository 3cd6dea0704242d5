package domain

import (
	"errors"
	"time"

	"family-tracker/backend/internal/geo"
)

// Sample is a single reported device position.
type Sample struct {
	ID         int64
	UserID     string
	Coordinate geo.Coordinate
	Accuracy   *float64 // meters; nil if the device did not report it
	Altitude   *float64
	Battery    *int // percent 0..100
	CapturedAt time.Time
}

// Validate checks the coordinate and battery ranges. Returns the first failure.
func (s *Sample) Validate() error {
	if s.UserID == "" {
		return errors.New("user id is required")
	}
	if s.Coordinate.Latitude < -90 || s.Coordinate.Latitude > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if s.Coordinate.Longitude < -180 || s.Coordinate.Longitude > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	if !s.Coordinate.Valid() {
		return errors.New("coordinate is not a number")
	}
	if s.Battery != nil && (*s.Battery < 0 || *s.Battery > 100) {
		return errors.New("battery must be between 0 and 100")
	}
	if s.Accuracy != nil && *s.Accuracy < 0 {
		return errors.New("accuracy must not be negative")
	}
	if s.CapturedAt.IsZero() {
		return errors.New("captured_at is required")
	}
	return nil
}
