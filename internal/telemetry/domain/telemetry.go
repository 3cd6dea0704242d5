package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the tracker pipeline.
const (
	EventLocationIngested  = "location_ingested"
	EventGeofenceViolation = "geofence_violation"
	EventViolationNotified = "geofence_violation_notified"
	EventDeviceLowBattery  = "device_low_battery"
	EventDeviceOffline     = "device_offline"
	EventClientConnected   = "realtime_client_connected"
	EventClientRejected    = "realtime_client_rejected"
	EventHTTPRequest       = "http_request"
)

// Event is a pipeline telemetry event (family-scoped, optional user).
// It is serialized as JSON onto Kafka and read back by the Loki worker.
type Event struct {
	FamilyID  string          `json:"familyId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent returns an event stamped with the current UTC time. metadata is marshaled
// as JSON; a value that fails to marshal is dropped.
func NewEvent(eventType, source, familyID, userID string, metadata any) *Event {
	ev := &Event{
		FamilyID:  familyID,
		UserID:    userID,
		EventType: eventType,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			ev.Metadata = b
		}
	}
	return ev
}
