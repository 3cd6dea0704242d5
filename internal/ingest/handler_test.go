package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	locationdomain "family-tracker/backend/internal/location/domain"
	messagedomain "family-tracker/backend/internal/message/domain"
	"family-tracker/backend/internal/realtime"
	"family-tracker/backend/internal/security"
	"family-tracker/backend/internal/server/middleware"
)

type mockLocations struct {
	mu      sync.Mutex
	created []*locationdomain.Sample
	batches [][]*locationdomain.Sample
	err     error
}

func (m *mockLocations) Create(_ context.Context, s *locationdomain.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	s.ID = int64(len(m.created) + 1)
	m.created = append(m.created, s)
	return nil
}

func (m *mockLocations) CreateBatch(_ context.Context, samples []*locationdomain.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, samples)
	return nil
}

type mockMessages struct {
	created []*messagedomain.Message
	err     error
}

func (m *mockMessages) Create(_ context.Context, msg *messagedomain.Message) error {
	if m.err != nil {
		return m.err
	}
	msg.ID = 7
	msg.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.created = append(m.created, msg)
	return nil
}

type mockIngester struct {
	single  []*locationdomain.Sample
	batches [][]*locationdomain.Sample
	groups  []string
}

func (m *mockIngester) OnLocationIngested(_ context.Context, userID, groupID, userName string, s *locationdomain.Sample) {
	m.single = append(m.single, s)
	m.groups = append(m.groups, groupID)
}

func (m *mockIngester) OnBatchIngested(_ context.Context, userID, groupID, userName string, samples []*locationdomain.Sample) {
	m.batches = append(m.batches, samples)
	m.groups = append(m.groups, groupID)
}

type fixture struct {
	locations *mockLocations
	messages  *mockMessages
	ingester  *mockIngester
	hub       *mockHub
	router    chi.Router
}

func newFixture(id *security.Identity) *fixture {
	f := &fixture{
		locations: &mockLocations{},
		messages:  &mockMessages{},
		ingester:  &mockIngester{},
		hub:       &mockHub{},
	}
	h := NewHandler(f.locations, f.messages, f.ingester, f.hub)
	h.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != nil {
				r = r.WithContext(middleware.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/api", h.Routes)
	f.router = r
	return f
}

func (f *fixture) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

var alice = &security.Identity{UserID: "u1", FamilyID: "f1", Name: "Alice"}

func TestPostLocation(t *testing.T) {
	f := newFixture(alice)
	rec := f.post("/api/locations", `{"latitude":40.5,"longitude":-74.1,"accuracy":8,"battery":55,"timestamp":"2024-05-01T10:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if len(f.locations.created) != 1 {
		t.Fatalf("created = %d, want 1", len(f.locations.created))
	}
	s := f.locations.created[0]
	if s.UserID != "u1" || s.Coordinate.Latitude != 40.5 || *s.Battery != 55 {
		t.Errorf("sample = %+v", s)
	}
	if !s.CapturedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("CapturedAt = %v", s.CapturedAt)
	}
	if len(f.ingester.single) != 1 || f.ingester.groups[0] != "f1" {
		t.Errorf("pipeline calls = %d groups=%v", len(f.ingester.single), f.ingester.groups)
	}
	var body struct {
		Success  bool             `json:"success"`
		Location locationResponse `json:"location"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !body.Success || body.Location.ID != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestPostLocation_DefaultsTimestampToNow(t *testing.T) {
	f := newFixture(alice)
	rec := f.post("/api/locations", `{"latitude":1,"longitude":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := f.locations.created[0].CapturedAt; !got.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("CapturedAt = %v, want handler clock", got)
	}
}

func TestPostLocation_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"missing longitude", `{"latitude":1}`},
		{"latitude out of range", `{"latitude":91,"longitude":0}`},
		{"longitude out of range", `{"latitude":0,"longitude":-181}`},
		{"battery out of range", `{"latitude":0,"longitude":0,"battery":101}`},
		{"bad timestamp", `{"latitude":0,"longitude":0,"timestamp":"yesterday"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(alice)
			rec := f.post("/api/locations", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(f.locations.created) != 0 || len(f.ingester.single) != 0 {
				t.Error("invalid sample should be neither stored nor evaluated")
			}
		})
	}
}

func TestPostLocation_StoreFailure(t *testing.T) {
	f := newFixture(alice)
	f.locations.err = errors.New("db down")
	rec := f.post("/api/locations", `{"latitude":1,"longitude":2}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if len(f.ingester.single) != 0 {
		t.Error("unsaved sample should not reach the pipeline")
	}
}

func TestPostLocation_Unauthenticated(t *testing.T) {
	f := newFixture(nil)
	rec := f.post("/api/locations", `{"latitude":1,"longitude":2}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPostOwnTracks(t *testing.T) {
	f := newFixture(alice)
	rec := f.post("/api/owntracks", `{"_type":"location","lat":40,"lon":-74,"tst":1714557600,"acc":5,"batt":30}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	s := f.locations.created[0]
	if !s.CapturedAt.Equal(time.Unix(1714557600, 0)) {
		t.Errorf("CapturedAt = %v", s.CapturedAt)
	}
	if *s.Battery != 30 || *s.Accuracy != 5 {
		t.Errorf("sample = %+v", s)
	}
}

func TestPostOwnTracks_Invalid(t *testing.T) {
	for _, body := range []string{
		`{"_type":"transition","lat":40,"lon":-74,"tst":1}`,
		`{"_type":"location","lon":-74,"tst":1}`,
		`{"_type":"location","lat":40,"lon":-74}`,
		`{"_type":"location","lat":95,"lon":-74,"tst":1}`,
	} {
		f := newFixture(alice)
		if rec := f.post("/api/owntracks", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestPostOwnTracksBatch(t *testing.T) {
	f := newFixture(alice)
	body := `[
		{"_type":"location","lat":40,"lon":-74,"tst":100},
		{"_type":"waypoint","lat":1,"lon":1,"tst":101},
		"garbage",
		{"_type":"location","lat":40.1,"lon":-74,"tst":200}
	]`
	rec := f.post("/api/owntracks/batch", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if len(f.locations.batches) != 1 || len(f.locations.batches[0]) != 2 {
		t.Fatalf("batches = %v, want one batch of 2", f.locations.batches)
	}
	if len(f.ingester.batches) != 1 || len(f.ingester.batches[0]) != 2 {
		t.Errorf("pipeline batches = %v", f.ingester.batches)
	}
	var out struct {
		Count int `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Count != 2 {
		t.Errorf("count = %d, want 2", out.Count)
	}
}

func TestPostOwnTracksBatch_NotArray(t *testing.T) {
	f := newFixture(alice)
	if rec := f.post("/api/owntracks/batch", `{"_type":"location"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostOwnTracksBatch_StoreFailure(t *testing.T) {
	f := newFixture(alice)
	f.locations.err = errors.New("tx aborted")
	rec := f.post("/api/owntracks/batch", `[{"_type":"location","lat":40,"lon":-74,"tst":100}]`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if len(f.ingester.batches) != 0 {
		t.Error("failed batch should not reach the pipeline")
	}
}

func TestPostMessage(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"message field", `{"message":"hello"}`},
		{"content field", `{"content":"hello"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(alice)
			rec := f.post("/api/messages", tc.body)
			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
			}
			if len(f.hub.sent) != 1 {
				t.Fatalf("broadcasts = %d, want 1", len(f.hub.sent))
			}
			got := f.hub.sent[0]
			if got.groupID != "f1" || got.kind != realtime.KindChatMessage {
				t.Errorf("broadcast = %s/%s", got.groupID, got.kind)
			}
			msg := got.payload.(ChatMessage)
			if msg.ID != 7 || msg.SenderID != "u1" || msg.SenderName != "Alice" || msg.Content != "hello" {
				t.Errorf("payload = %+v", msg)
			}
		})
	}
}

func TestPostMessage_Rejections(t *testing.T) {
	testCases := []struct {
		name string
		id   *security.Identity
		body string
		want int
	}{
		{"no family", &security.Identity{UserID: "u2", Name: "Bob"}, `{"message":"hi"}`, http.StatusBadRequest},
		{"empty", alice, `{}`, http.StatusBadRequest},
		{"too long", alice, `{"message":"` + strings.Repeat("x", messagedomain.MaxContentLength+1) + `"}`, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.id)
			if rec := f.post("/api/messages", tc.body); rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if len(f.hub.sent) != 0 {
				t.Error("rejected message should not be broadcast")
			}
		})
	}
}

func TestPostMessage_StoreFailure(t *testing.T) {
	f := newFixture(alice)
	f.messages.err = errors.New("db down")
	if rec := f.post("/api/messages", `{"message":"hi"}`); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if len(f.hub.sent) != 0 {
		t.Error("unsaved message should not be broadcast")
	}
}
