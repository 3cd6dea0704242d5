package domain

import (
	"errors"
	"time"
)

// UnknownUserName is shown in alerts when a user's display name cannot be resolved.
const UnknownUserName = "Unknown User"

// User is a family member whose devices report locations.
type User struct {
	ID        string
	Email     string
	Name      string
	IsAdmin   bool
	FamilyID  string // empty when the user has not joined a family
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InFamily reports whether the user belongs to a family.
func (u *User) InFamily() bool {
	return u != nil && u.FamilyID != ""
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// Family groups users that share locations, chat, and geofences.
type Family struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
