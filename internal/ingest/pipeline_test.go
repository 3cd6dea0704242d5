package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"family-tracker/backend/internal/geo"
	geofencedomain "family-tracker/backend/internal/geofence/domain"
	locationdomain "family-tracker/backend/internal/location/domain"
	"family-tracker/backend/internal/realtime"
	violationdomain "family-tracker/backend/internal/violation/domain"
)

type mockEngine struct {
	mu      sync.Mutex
	calls   []*locationdomain.Sample
	intents func(s *locationdomain.Sample) []geofencedomain.TransitionIntent
}

func (m *mockEngine) Evaluate(_ context.Context, userID, familyID string, s *locationdomain.Sample) []geofencedomain.TransitionIntent {
	m.mu.Lock()
	m.calls = append(m.calls, s)
	m.mu.Unlock()
	if m.intents == nil {
		return nil
	}
	return m.intents(s)
}

type mockRecorder struct {
	mu       sync.Mutex
	recorded []geofencedomain.TransitionIntent
	ctxErr   []error
	err      error
}

func (m *mockRecorder) Record(ctx context.Context, in geofencedomain.TransitionIntent) (*violationdomain.Violation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, in)
	m.ctxErr = append(m.ctxErr, ctx.Err())
	if m.err != nil {
		return nil, m.err
	}
	return &violationdomain.Violation{ID: "v-" + in.GeofenceID}, nil
}

type sent struct {
	groupID string
	kind    string
	payload any
}

type mockHub struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (m *mockHub) Send(groupID, kind string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{groupID, kind, payload})
	return m.err
}

func sampleAt(minute int) *locationdomain.Sample {
	return &locationdomain.Sample{
		UserID:     "u1",
		Coordinate: geo.Coordinate{Latitude: 40, Longitude: -74},
		CapturedAt: time.Date(2024, 5, 1, 12, minute, 0, 0, time.UTC),
	}
}

func TestPipeline_BroadcastsAndRecords(t *testing.T) {
	engine := &mockEngine{intents: func(s *locationdomain.Sample) []geofencedomain.TransitionIntent {
		return []geofencedomain.TransitionIntent{
			{GeofenceID: "a", UserID: "u1", FamilyID: "f1", Kind: geofencedomain.TransitionEnter},
			{GeofenceID: "b", UserID: "u1", FamilyID: "f1", Kind: geofencedomain.TransitionExit},
		}
	}}
	rec := &mockRecorder{}
	hub := &mockHub{}
	p := NewPipeline(engine, rec, hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s := sampleAt(0)
	p.OnLocationIngested(ctx, "u1", "f1", "Alice", s)
	cancel()
	p.Wait()

	if len(hub.sent) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(hub.sent))
	}
	got := hub.sent[0]
	if got.groupID != "f1" || got.kind != realtime.KindLocationUpdate {
		t.Errorf("broadcast = %s/%s", got.groupID, got.kind)
	}
	payload, ok := got.payload.(LocationUpdate)
	if !ok {
		t.Fatalf("payload type %T", got.payload)
	}
	if payload.UserID != "u1" || payload.UserName != "Alice" || payload.Location.Latitude != 40 {
		t.Errorf("payload = %+v", payload)
	}
	if len(rec.recorded) != 2 || rec.recorded[0].GeofenceID != "a" || rec.recorded[1].GeofenceID != "b" {
		t.Errorf("recorded = %+v, want a then b", rec.recorded)
	}
	for i, err := range rec.ctxErr {
		if err != nil {
			t.Errorf("record %d saw canceled context: %v", i, err)
		}
	}
}

func TestPipeline_NoFamilyIsNoop(t *testing.T) {
	engine := &mockEngine{}
	hub := &mockHub{}
	p := NewPipeline(engine, &mockRecorder{}, hub, nil)
	p.OnLocationIngested(context.Background(), "u1", "", "Alice", sampleAt(0))
	p.OnBatchIngested(context.Background(), "u1", "", "Alice", []*locationdomain.Sample{sampleAt(0)})
	p.Wait()
	if len(engine.calls) != 0 || len(hub.sent) != 0 {
		t.Errorf("evaluations = %d broadcasts = %d, want 0/0", len(engine.calls), len(hub.sent))
	}
}

func TestPipeline_RecorderAndBroadcastErrorsAreContained(t *testing.T) {
	engine := &mockEngine{intents: func(s *locationdomain.Sample) []geofencedomain.TransitionIntent {
		return []geofencedomain.TransitionIntent{{GeofenceID: "a"}, {GeofenceID: "b"}}
	}}
	rec := &mockRecorder{err: errors.New("db down")}
	hub := &mockHub{err: errors.New("encode")}
	p := NewPipeline(engine, rec, hub, nil)
	p.OnLocationIngested(context.Background(), "u1", "f1", "Alice", sampleAt(0))
	p.Wait()
	if len(rec.recorded) != 2 {
		t.Errorf("recorded = %d, want 2 despite errors", len(rec.recorded))
	}
	if len(engine.calls) != 1 {
		t.Errorf("evaluations = %d, want 1", len(engine.calls))
	}
}

func TestPipeline_BatchEvaluatesInCaptureOrderAndBroadcastsNewest(t *testing.T) {
	engine := &mockEngine{}
	hub := &mockHub{}
	p := NewPipeline(engine, nil, hub, nil)
	batch := []*locationdomain.Sample{sampleAt(5), sampleAt(1), sampleAt(3)}
	p.OnBatchIngested(context.Background(), "u1", "f1", "Alice", batch)
	p.Wait()

	if len(engine.calls) != 3 {
		t.Fatalf("evaluations = %d, want 3", len(engine.calls))
	}
	for i, want := range []int{1, 3, 5} {
		if got := engine.calls[i].CapturedAt.Minute(); got != want {
			t.Errorf("evaluation %d minute = %d, want %d", i, got, want)
		}
	}
	if len(hub.sent) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(hub.sent))
	}
	payload := hub.sent[0].payload.(LocationUpdate)
	if got := payload.Location.Timestamp.Minute(); got != 5 {
		t.Errorf("broadcast minute = %d, want newest 5", got)
	}
	if batch[0].CapturedAt.Minute() != 5 {
		t.Error("caller's slice should not be reordered")
	}
}

func TestNewLocationView(t *testing.T) {
	acc, batt := 12.5, 80
	s := sampleAt(0)
	s.Accuracy = &acc
	s.Battery = &batt
	v := NewLocationView(s)
	if v.Accuracy == nil || *v.Accuracy != 12.5 || v.Battery == nil || *v.Battery != 80 || v.Altitude != nil {
		t.Errorf("view = %+v", v)
	}
	if !v.Timestamp.Equal(s.CapturedAt) {
		t.Errorf("Timestamp = %v, want %v", v.Timestamp, s.CapturedAt)
	}
}
