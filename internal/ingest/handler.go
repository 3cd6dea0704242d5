package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"family-tracker/backend/internal/geo"
	locationdomain "family-tracker/backend/internal/location/domain"
	messagedomain "family-tracker/backend/internal/message/domain"
	"family-tracker/backend/internal/metrics"
	"family-tracker/backend/internal/realtime"
	"family-tracker/backend/internal/security"
	"family-tracker/backend/internal/server/middleware"
	"family-tracker/backend/internal/server/respond"
)

const maxBodyBytes = 1 << 20

// Sources reported on the samples metric.
const (
	sourceAPI            = "api"
	sourceOwnTracks      = "owntracks"
	sourceOwnTracksBatch = "owntracks_batch"
)

// LocationStore persists location samples.
type LocationStore interface {
	Create(ctx context.Context, s *locationdomain.Sample) error
	CreateBatch(ctx context.Context, samples []*locationdomain.Sample) error
}

// MessageStore persists chat messages.
type MessageStore interface {
	Create(ctx context.Context, m *messagedomain.Message) error
}

// Ingester receives samples after they are persisted.
type Ingester interface {
	OnLocationIngested(ctx context.Context, userID, groupID, userName string, sample *locationdomain.Sample)
	OnBatchIngested(ctx context.Context, userID, groupID, userName string, samples []*locationdomain.Sample)
}

// Handler serves the location and chat submission endpoints. Routes must be mounted behind middleware.Auth.
type Handler struct {
	locations LocationStore
	messages  MessageStore
	pipeline  Ingester
	hub       Broadcaster
	now       func() time.Time
}

// NewHandler returns a Handler.
func NewHandler(locations LocationStore, messages MessageStore, pipeline Ingester, hub Broadcaster) *Handler {
	return &Handler{locations: locations, messages: messages, pipeline: pipeline, hub: hub, now: time.Now}
}

// Routes registers the submission endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/locations", h.PostLocation)
	r.Post("/owntracks", h.PostOwnTracks)
	r.Post("/owntracks/batch", h.PostOwnTracksBatch)
	r.Post("/messages", h.PostMessage)
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Altitude  *float64 `json:"altitude"`
	Battery   *int     `json:"battery"`
	Timestamp string   `json:"timestamp"`
}

type locationResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy"`
	Altitude  *float64  `json:"altitude"`
	Battery   *int      `json:"battery"`
	Timestamp time.Time `json:"timestamp"`
}

func newLocationResponse(s *locationdomain.Sample) locationResponse {
	return locationResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Latitude:  s.Coordinate.Latitude,
		Longitude: s.Coordinate.Longitude,
		Accuracy:  s.Accuracy,
		Altitude:  s.Altitude,
		Battery:   s.Battery,
		Timestamp: s.CapturedAt.UTC(),
	}
}

// PostLocation handles POST /api/locations.
func (h *Handler) PostLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if err := decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		respond.Error(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	capturedAt := h.now().UTC()
	if req.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "timestamp must be RFC 3339")
			return
		}
		capturedAt = t.UTC()
	}
	s := &locationdomain.Sample{
		UserID:     id.UserID,
		Coordinate: geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude},
		Accuracy:   req.Accuracy,
		Altitude:   req.Altitude,
		Battery:    req.Battery,
		CapturedAt: capturedAt,
	}
	h.storeOne(w, r, id, s, sourceAPI)
}

// ownTracksLocation is the subset of the OwnTracks location payload the tracker uses.
type ownTracksLocation struct {
	Type string   `json:"_type"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Tst  *int64   `json:"tst"`
	Acc  *float64 `json:"acc"`
	Alt  *float64 `json:"alt"`
	Batt *int     `json:"batt"`
}

// sample converts the payload for userID. Returns false when it is not a usable location report.
func (o *ownTracksLocation) sample(userID string) (*locationdomain.Sample, bool) {
	if o.Type != "location" || o.Lat == nil || o.Lon == nil || o.Tst == nil || *o.Tst <= 0 {
		return nil, false
	}
	s := &locationdomain.Sample{
		UserID:     userID,
		Coordinate: geo.Coordinate{Latitude: *o.Lat, Longitude: *o.Lon},
		Accuracy:   o.Acc,
		Altitude:   o.Alt,
		Battery:    o.Batt,
		CapturedAt: time.Unix(*o.Tst, 0).UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, false
	}
	return s, true
}

// PostOwnTracks handles POST /api/owntracks.
func (h *Handler) PostOwnTracks(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req ownTracksLocation
	if err := decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid OwnTracks location data")
		return
	}
	s, ok := req.sample(id.UserID)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid OwnTracks location data")
		return
	}
	h.storeOne(w, r, id, s, sourceOwnTracks)
}

func (h *Handler) storeOne(w http.ResponseWriter, r *http.Request, id *security.Identity, s *locationdomain.Sample, source string) {
	if err := s.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.locations.Create(r.Context(), s); err != nil {
		log.Printf("ingest: save location for user %s: %v", id.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "Failed to save location")
		return
	}
	metrics.SamplesIngested.WithLabelValues(source).Inc()
	h.pipeline.OnLocationIngested(r.Context(), id.UserID, id.FamilyID, id.Name, s)
	respond.JSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"location": newLocationResponse(s),
	})
}

// PostOwnTracksBatch handles POST /api/owntracks/batch. Entries that are not valid location
// reports are skipped; the rest are stored in one transaction.
func (h *Handler) PostOwnTracksBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var raw []json.RawMessage
	if err := decode(w, r, &raw); err != nil {
		respond.Error(w, http.StatusBadRequest, "Expected array of locations")
		return
	}
	samples := make([]*locationdomain.Sample, 0, len(raw))
	for _, item := range raw {
		var loc ownTracksLocation
		if err := json.Unmarshal(item, &loc); err != nil {
			continue
		}
		if s, ok := loc.sample(id.UserID); ok {
			samples = append(samples, s)
		}
	}
	if err := h.locations.CreateBatch(r.Context(), samples); err != nil {
		log.Printf("ingest: save location batch for user %s: %v", id.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "Failed to save locations")
		return
	}
	if len(samples) > 0 {
		metrics.SamplesIngested.WithLabelValues(sourceOwnTracksBatch).Add(float64(len(samples)))
		h.pipeline.OnBatchIngested(r.Context(), id.UserID, id.FamilyID, id.Name, samples)
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"count":   len(samples),
	})
}

type messageRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

// ChatMessage is the chat_message event payload and the POST /api/messages response body.
type ChatMessage struct {
	ID         int64     `json:"id"`
	FamilyID   string    `json:"family_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostMessage handles POST /api/messages. Either "message" or "content" carries the text.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if !id.InFamily() {
		respond.Error(w, http.StatusBadRequest, "User does not belong to a family")
		return
	}
	var req messageRequest
	if err := decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	content := req.Message
	if content == "" {
		content = req.Content
	}
	if content == "" {
		respond.Error(w, http.StatusBadRequest, "Either 'message' or 'content' must be provided")
		return
	}
	m := &messagedomain.Message{FamilyID: id.FamilyID, UserID: id.UserID, Content: content}
	if err := m.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.messages.Create(r.Context(), m); err != nil {
		log.Printf("ingest: save message for user %s: %v", id.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	out := ChatMessage{
		ID:         m.ID,
		FamilyID:   m.FamilyID,
		SenderID:   m.UserID,
		SenderName: id.Name,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if h.hub != nil {
		if err := h.hub.Send(m.FamilyID, realtime.KindChatMessage, out); err != nil {
			log.Printf("ingest: broadcast message %d: %v", m.ID, err)
		}
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"message": out})
}

func identity(w http.ResponseWriter, r *http.Request) (*security.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing or invalid authorization")
		return nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

