package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"family-tracker/backend/internal/security"
	"family-tracker/backend/internal/telemetry/domain"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []*domain.Event
	got    chan struct{}
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{got: make(chan struct{}, 10)}
}

func (e *recordingEmitter) Emit(_ context.Context, ev *domain.Event) error {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
	e.got <- struct{}{}
	return nil
}

func TestTelemetry_EmitsRequestEvent(t *testing.T) {
	em := newRecordingEmitter()
	resolver := &mockResolver{identities: map[string]*security.Identity{
		"good": {UserID: "user-1", FamilyID: "f1"},
	}}
	r := chi.NewRouter()
	r.Use(Telemetry(em, nil))
	r.With(Auth(resolver)).Post("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/items/42", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	select {
	case <-em.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no telemetry event emitted")
	}
	em.mu.Lock()
	ev := em.events[0]
	em.mu.Unlock()
	if ev.EventType != domain.EventHTTPRequest {
		t.Errorf("EventType = %q", ev.EventType)
	}
	if ev.UserID != "user-1" || ev.FamilyID != "f1" {
		t.Errorf("identity = %q/%q, want user-1/f1", ev.UserID, ev.FamilyID)
	}
	var meta httpRequestMetadata
	if err := json.Unmarshal(ev.Metadata, &meta); err != nil {
		t.Fatalf("Unmarshal metadata: %v", err)
	}
	if meta.Route != "/api/items/{id}" || meta.StatusCode != http.StatusCreated || meta.Method != http.MethodPost {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.ClientIP != "203.0.113.9" {
		t.Errorf("ClientIP = %q, want 203.0.113.9", meta.ClientIP)
	}
}

func TestTelemetry_SkipsPathsAndNilEmitter(t *testing.T) {
	em := newRecordingEmitter()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	Telemetry(em, map[string]bool{"/healthz": true})(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec = httptest.NewRecorder()
	Telemetry(nil, nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))

	select {
	case <-em.got:
		t.Fatal("skipped path should not emit")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "5.6.7.8"}, "9.9.9.9:1", "5.6.7.8"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
		{"empty", nil, "", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tc.remote
			if got := ClientIP(req); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
