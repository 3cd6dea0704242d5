// Package engine detects geofence enter/exit transitions from location samples.
//
// Containment state is held in memory only. After a restart the first sample for
// each (user, fence) pair seeds the state without emitting a transition.
package engine

import (
	"context"
	"log"

	"family-tracker/backend/internal/geofence/domain"
	locationdomain "family-tracker/backend/internal/location/domain"
)

// FenceSource supplies the active fences for a user. Called on every evaluation.
type FenceSource interface {
	ListActiveForUser(ctx context.Context, familyID, userID string) ([]*domain.Geofence, error)
}

// Engine evaluates samples against geofences and tracks per-user containment.
type Engine struct {
	fences FenceSource
	state  *stateTable
}

// New returns an Engine reading fences from src.
func New(src FenceSource) *Engine {
	return &Engine{fences: src, state: newStateTable()}
}

// Evaluate tests sample against every active fence for the user and returns the
// transitions to record, in fence id order. Fence lookup failures are logged and
// yield no transitions. Samples are applied in the order Evaluate is called;
// CapturedAt is not consulted.
func (e *Engine) Evaluate(ctx context.Context, userID, familyID string, sample *locationdomain.Sample) []domain.TransitionIntent {
	if userID == "" || familyID == "" || sample == nil {
		return nil
	}

	st := e.state.acquire(userID)
	st.mu.Lock()
	defer st.mu.Unlock()

	fences, err := e.fences.ListActiveForUser(ctx, familyID, userID)
	if err != nil {
		log.Printf("engine: list fences for user %s in family %s: %v", userID, familyID, err)
		return nil
	}
	if len(fences) == 0 {
		return nil
	}

	var intents []domain.TransitionIntent
	for _, f := range fences {
		if f == nil || !f.AppliesTo(userID) {
			continue
		}
		inside := f.Contains(sample.Coordinate)
		was, known := st.inside[f.ID]
		st.inside[f.ID] = inside
		if !known || was == inside {
			continue
		}

		var kind domain.TransitionKind
		switch {
		case inside && f.NotifyOnEnter:
			kind = domain.TransitionEnter
		case !inside && f.NotifyOnExit:
			kind = domain.TransitionExit
		default:
			continue
		}
		intents = append(intents, domain.TransitionIntent{
			GeofenceID:   f.ID,
			GeofenceName: f.Name,
			UserID:       userID,
			FamilyID:     familyID,
			Kind:         kind,
			Coordinate:   sample.Coordinate,
			OccurredAt:   sample.CapturedAt,
		})
	}
	return intents
}

// ResetUser discards all containment state for the user. The next sample re-seeds it.
func (e *Engine) ResetUser(userID string) {
	e.state.remove(userID)
}

// ContainmentKey identifies one (user, fence) pair.
type ContainmentKey struct {
	UserID  string
	FenceID string
}

// Containment returns the last known containment for key and whether it is known.
func (e *Engine) Containment(key ContainmentKey) (inside bool, known bool) {
	st := e.state.lookup(key.UserID)
	if st == nil {
		return false, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	inside, known = st.inside[key.FenceID]
	return inside, known
}
