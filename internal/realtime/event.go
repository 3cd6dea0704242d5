// Package realtime fans out family events to connected WebSocket clients.
package realtime

import "encoding/json"

// Event kinds sent to clients.
const (
	KindConnected      = "connected"
	KindLocationUpdate = "location_update"
	KindChatMessage    = "chat_message"
)

// Envelope is the wire frame for every event: {"type": ..., "data": ...}.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Encode marshals an envelope for kind and payload.
func Encode(kind string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Type: kind, Data: payload})
}

// Welcome is the payload of the connected frame sent after admission.
type Welcome struct {
	Message  string `json:"message"`
	FamilyID string `json:"familyId"`
}

const welcomeMessage = "Connected to Family Tracker"
