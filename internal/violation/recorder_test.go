package violation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"family-tracker/backend/internal/geo"
	geofencedomain "family-tracker/backend/internal/geofence/domain"
	settingsdomain "family-tracker/backend/internal/settings/domain"
	"family-tracker/backend/internal/violation/domain"
)

// mockStore implements repository.Repository and logs calls into a shared journal.
type mockStore struct {
	mu        sync.Mutex
	journal   *[]string
	created   []*domain.Violation
	notified  map[string]time.Time
	createErr error
	markErr   error
}

func (m *mockStore) Create(ctx context.Context, v *domain.Violation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.journal = append(*m.journal, "create")
	if m.createErr != nil {
		return m.createErr
	}
	if v.Notified {
		return errors.New("violation must be created unnotified")
	}
	cp := *v
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockStore) MarkNotified(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.journal = append(*m.journal, "mark")
	if m.markErr != nil {
		return m.markErr
	}
	if m.notified == nil {
		m.notified = map[string]time.Time{}
	}
	m.notified[id] = at
	return nil
}

func (m *mockStore) ListUnnotified(ctx context.Context, limit int) ([]*domain.Violation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Violation
	for _, v := range m.created {
		if _, ok := m.notified[v.ID]; !ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type mockNames struct {
	names map[string]string
	err   error
}

func (m mockNames) DisplayName(ctx context.Context, userID string) (string, error) {
	return m.names[userID], m.err
}

type mockSettings struct {
	n   *settingsdomain.Notification
	err error
}

func (m mockSettings) Get(ctx context.Context) (*settingsdomain.Notification, error) {
	return m.n, m.err
}

type sent struct {
	recipients []string
	subject    string
	body       string
}

type mockNotifier struct {
	journal *[]string
	sent    []sent
	err     error
}

func (m *mockNotifier) Send(ctx context.Context, recipients []string, subject, body string) error {
	*m.journal = append(*m.journal, "send")
	m.sent = append(m.sent, sent{recipients, subject, body})
	return m.err
}

var occurred = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func intent(kind geofencedomain.TransitionKind) geofencedomain.TransitionIntent {
	return geofencedomain.TransitionIntent{
		GeofenceID:   "fence-1",
		GeofenceName: "School",
		UserID:       "u1",
		FamilyID:     "fam-1",
		Kind:         kind,
		Coordinate:   geo.Coordinate{Latitude: 40.7128, Longitude: -74.006},
		OccurredAt:   occurred,
	}
}

func configured() *settingsdomain.Notification {
	return &settingsdomain.Notification{
		AdminEmail:         "admin@example.com",
		NotificationEmails: []string{"mom@example.com", "ADMIN@example.com"},
	}
}

type fixture struct {
	journal  []string
	store    *mockStore
	notifier *mockNotifier
	rec      *Recorder
}

func newFixture(names NameLookup, settings SettingsSource) *fixture {
	f := &fixture{}
	f.store = &mockStore{journal: &f.journal}
	f.notifier = &mockNotifier{journal: &f.journal}
	f.rec = NewRecorder(f.store, names, settings, f.notifier, nil)
	f.rec.now = func() time.Time { return occurred.Add(time.Second) }
	return f
}

func TestRecord_PersistsThenNotifies(t *testing.T) {
	f := newFixture(mockNames{names: map[string]string{"u1": "Alice"}}, mockSettings{n: configured()})

	v, err := f.rec.Record(context.Background(), intent(geofencedomain.TransitionExit))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := strings.Join(f.journal, ","); got != "create,send,mark" {
		t.Errorf("call order = %s, want create,send,mark", got)
	}
	if !v.Notified || v.NotifiedAt == nil || !v.NotifiedAt.Equal(occurred.Add(time.Second)) {
		t.Errorf("violation = %+v, want notified at now", v)
	}
	if v.ID == "" || v.GeofenceID != "fence-1" || v.Kind != geofencedomain.TransitionExit || !v.OccurredAt.Equal(occurred) {
		t.Errorf("violation fields = %+v", v)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(f.notifier.sent))
	}
	s := f.notifier.sent[0]
	if s.subject != "Geofence Alert: Alice exited School" {
		t.Errorf("subject = %q", s.subject)
	}
	if strings.Join(s.recipients, ",") != "admin@example.com,mom@example.com" {
		t.Errorf("recipients = %v", s.recipients)
	}
	if !strings.Contains(s.body, "40.712800, -74.006000") {
		t.Errorf("body missing coordinate:\n%s", s.body)
	}
}

func TestRecord_SendFailureLeavesUnnotified(t *testing.T) {
	f := newFixture(mockNames{names: map[string]string{"u1": "Alice"}}, mockSettings{n: configured()})
	f.notifier.err = errors.New("connection refused")

	v, err := f.rec.Record(context.Background(), intent(geofencedomain.TransitionEnter))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if v.Notified {
		t.Error("violation must stay unnotified after a failed send")
	}
	if got := strings.Join(f.journal, ","); got != "create,send" {
		t.Errorf("call order = %s, want create,send", got)
	}
	pending, _ := f.rec.ListUnnotified(context.Background(), 10)
	if len(pending) != 1 || pending[0].ID != v.ID {
		t.Errorf("unnotified = %+v, want the failed violation", pending)
	}
}

func TestRecord_CreateFailureSkipsDispatch(t *testing.T) {
	f := newFixture(mockNames{}, mockSettings{n: configured()})
	f.store.createErr = errors.New("db down")

	if _, err := f.rec.Record(context.Background(), intent(geofencedomain.TransitionEnter)); err == nil {
		t.Fatal("Record should return the persistence error")
	}
	if len(f.notifier.sent) != 0 {
		t.Error("no alert may be sent when the violation was not persisted")
	}
}

func TestRecord_UnknownUserFallback(t *testing.T) {
	testCases := []struct {
		name  string
		names NameLookup
	}{
		{"missing user", mockNames{names: map[string]string{}}},
		{"lookup error", mockNames{err: errors.New("timeout")}},
		{"nil lookup", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.names, mockSettings{n: configured()})
			if _, err := f.rec.Record(context.Background(), intent(geofencedomain.TransitionEnter)); err != nil {
				t.Fatalf("Record: %v", err)
			}
			if got := f.notifier.sent[0].subject; got != "Geofence Alert: Unknown User entered School" {
				t.Errorf("subject = %q", got)
			}
		})
	}
}

func TestRecord_NoSettingsLeavesUnnotified(t *testing.T) {
	testCases := []struct {
		name     string
		settings mockSettings
	}{
		{"no settings row", mockSettings{}},
		{"settings error", mockSettings{err: errors.New("db down")}},
		{"no recipients", mockSettings{n: &settingsdomain.Notification{}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(mockNames{}, tc.settings)
			v, err := f.rec.Record(context.Background(), intent(geofencedomain.TransitionEnter))
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if v.Notified || len(f.notifier.sent) != 0 {
				t.Errorf("notified=%v sent=%d, want unnotified and no send", v.Notified, len(f.notifier.sent))
			}
			if len(f.store.created) != 1 {
				t.Errorf("created = %d, want 1", len(f.store.created))
			}
		})
	}
}

func TestRecord_MarkFailureReportedUnnotified(t *testing.T) {
	f := newFixture(mockNames{}, mockSettings{n: configured()})
	f.store.markErr = errors.New("db down")
	v, err := f.rec.Record(context.Background(), intent(geofencedomain.TransitionEnter))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if v.Notified {
		t.Error("violation should not report notified when the flag could not be stored")
	}
}
