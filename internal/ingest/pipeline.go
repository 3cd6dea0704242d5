// Package ingest accepts location and chat submissions and drives the realtime pipeline.
package ingest

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	geofencedomain "family-tracker/backend/internal/geofence/domain"
	locationdomain "family-tracker/backend/internal/location/domain"
	"family-tracker/backend/internal/realtime"
	"family-tracker/backend/internal/telemetry"
	telemetrydomain "family-tracker/backend/internal/telemetry/domain"
	violationdomain "family-tracker/backend/internal/violation/domain"
)

// Evaluator detects geofence transitions for a sample.
type Evaluator interface {
	Evaluate(ctx context.Context, userID, familyID string, sample *locationdomain.Sample) []geofencedomain.TransitionIntent
}

// Recorder persists a transition and dispatches its alert.
type Recorder interface {
	Record(ctx context.Context, intent geofencedomain.TransitionIntent) (*violationdomain.Violation, error)
}

// Broadcaster fans an event out to a family's live connections.
type Broadcaster interface {
	Send(groupID, kind string, payload any) error
}

// LocationView is the location block of a location_update event.
type LocationView struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy"`
	Altitude  *float64  `json:"altitude"`
	Battery   *int      `json:"battery"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationUpdate is the payload of a location_update event.
type LocationUpdate struct {
	UserID   string       `json:"userId"`
	UserName string       `json:"userName"`
	Location LocationView `json:"location"`
}

// NewLocationView converts a stored sample into its event form.
func NewLocationView(s *locationdomain.Sample) LocationView {
	return LocationView{
		Latitude:  s.Coordinate.Latitude,
		Longitude: s.Coordinate.Longitude,
		Accuracy:  s.Accuracy,
		Altitude:  s.Altitude,
		Battery:   s.Battery,
		Timestamp: s.CapturedAt.UTC(),
	}
}

// Pipeline broadcasts persisted samples and evaluates them against geofences.
// Evaluation runs on the caller's goroutine so samples of one request keep their order;
// recording and alert dispatch run in the background.
type Pipeline struct {
	engine   Evaluator
	recorder Recorder
	hub      Broadcaster
	emitter  telemetry.EventEmitter
	wg       sync.WaitGroup
}

// NewPipeline returns a Pipeline. emitter may be nil.
func NewPipeline(engine Evaluator, recorder Recorder, hub Broadcaster, emitter telemetry.EventEmitter) *Pipeline {
	return &Pipeline{engine: engine, recorder: recorder, hub: hub, emitter: emitter}
}

// OnLocationIngested is called after sample has been persisted. It broadcasts the sample to the
// user's family and evaluates it. A user without a family is neither broadcast nor evaluated.
func (p *Pipeline) OnLocationIngested(ctx context.Context, userID, groupID, userName string, sample *locationdomain.Sample) {
	if groupID == "" || sample == nil {
		return
	}
	p.broadcast(userID, groupID, userName, sample)
	p.evaluate(ctx, userID, groupID, sample)
}

// OnBatchIngested evaluates every persisted sample in capture order and broadcasts only the newest.
func (p *Pipeline) OnBatchIngested(ctx context.Context, userID, groupID, userName string, samples []*locationdomain.Sample) {
	if groupID == "" || len(samples) == 0 {
		return
	}
	ordered := make([]*locationdomain.Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CapturedAt.Before(ordered[j].CapturedAt)
	})
	for _, s := range ordered {
		p.evaluate(ctx, userID, groupID, s)
	}
	p.broadcast(userID, groupID, userName, ordered[len(ordered)-1])
}

// Wait blocks until all background recordings have finished. Used at shutdown.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) broadcast(userID, groupID, userName string, s *locationdomain.Sample) {
	if p.hub == nil {
		return
	}
	err := p.hub.Send(groupID, realtime.KindLocationUpdate, LocationUpdate{
		UserID:   userID,
		UserName: userName,
		Location: NewLocationView(s),
	})
	if err != nil {
		log.Printf("ingest: broadcast location for user %s: %v", userID, err)
	}
}

func (p *Pipeline) evaluate(ctx context.Context, userID, groupID string, s *locationdomain.Sample) {
	telemetry.EmitAsync(p.emitter, ctx,
		telemetrydomain.NewEvent(telemetrydomain.EventLocationIngested, "ingest", groupID, userID, nil))
	intents := p.engine.Evaluate(ctx, userID, groupID, s)
	if len(intents) == 0 || p.recorder == nil {
		return
	}
	// Recording outlives the request; the recorder bounds dispatch with its own timeout.
	recordCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for _, in := range intents {
			if _, err := p.recorder.Record(recordCtx, in); err != nil {
				log.Printf("ingest: record %s transition for user %s fence %s: %v", in.Kind, in.UserID, in.GeofenceID, err)
			}
		}
	}()
}
