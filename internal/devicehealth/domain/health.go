package domain

import "time"

// CooldownWindow is the minimum spacing between two notifications of the same kind for one user.
const CooldownWindow = 6 * time.Hour

// Kind is a device health notification type.
type Kind string

const (
	KindLowBattery    Kind = "low_battery"
	KindDeviceOffline Kind = "device_offline"
)

// Snapshot is a user's device state derived from their latest location sample. It is not persisted.
type Snapshot struct {
	UserID       string
	UserName     string
	UserEmail    string
	FamilyID     string
	Battery      *int // nil if the sample carried no battery level
	LastSampleAt time.Time
	// SinceLastSample is the time elapsed between LastSampleAt and the sweep time.
	SinceLastSample time.Duration
}

// MinutesOffline returns whole minutes since the last sample.
func (s *Snapshot) MinutesOffline() int {
	if s.SinceLastSample <= 0 {
		return 0
	}
	return int(s.SinceLastSample / time.Minute)
}

// LowBattery reports whether the battery is known and at or below threshold percent.
func (s *Snapshot) LowBattery(threshold int) bool {
	return s.Battery != nil && *s.Battery <= threshold
}

// Offline reports whether at least thresholdMinutes have passed since the last sample.
func (s *Snapshot) Offline(thresholdMinutes int) bool {
	return s.SinceLastSample >= time.Duration(thresholdMinutes)*time.Minute
}

// Notification is a sent device health alert; it gates the cooldown for (UserID, Kind).
type Notification struct {
	ID             string
	UserID         string
	Kind           Kind
	SentAt         time.Time
	BatteryLevel   *int // set for KindLowBattery
	MinutesOffline *int // set for KindDeviceOffline
}
