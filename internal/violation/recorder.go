// Package violation persists geofence transitions and sends the alert email for each.
package violation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	geofencedomain "family-tracker/backend/internal/geofence/domain"
	"family-tracker/backend/internal/metrics"
	"family-tracker/backend/internal/notify"
	settingsdomain "family-tracker/backend/internal/settings/domain"
	"family-tracker/backend/internal/telemetry"
	telemetrydomain "family-tracker/backend/internal/telemetry/domain"
	userdomain "family-tracker/backend/internal/user/domain"
	"family-tracker/backend/internal/violation/domain"
	"family-tracker/backend/internal/violation/repository"
)

// NameLookup resolves a user's display name. An empty name means the user is unknown.
type NameLookup interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// SettingsSource returns the current notification configuration, or nil when none is stored.
type SettingsSource interface {
	Get(ctx context.Context) (*settingsdomain.Notification, error)
}

// Recorder records transitions and dispatches their alerts.
type Recorder struct {
	store    repository.Repository
	names    NameLookup
	settings SettingsSource
	notifier notify.Notifier
	emitter  telemetry.EventEmitter
	now      func() time.Time
}

// NewRecorder returns a Recorder. emitter may be nil.
func NewRecorder(store repository.Repository, names NameLookup, settings SettingsSource, notifier notify.Notifier, emitter telemetry.EventEmitter) *Recorder {
	return &Recorder{
		store:    store,
		names:    names,
		settings: settings,
		notifier: notifier,
		emitter:  emitter,
		now:      time.Now,
	}
}

// Record persists the transition with notified=false, then sends the alert to the configured
// recipients. The violation is marked notified only after a successful send; a failed send leaves
// it unnotified and is not retried. The returned error covers persistence only.
func (r *Recorder) Record(ctx context.Context, in geofencedomain.TransitionIntent) (*domain.Violation, error) {
	v := &domain.Violation{
		ID:         uuid.New().String(),
		GeofenceID: in.GeofenceID,
		UserID:     in.UserID,
		Kind:       in.Kind,
		Coordinate: in.Coordinate,
		OccurredAt: in.OccurredAt,
	}
	if err := r.store.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("recorder: create violation: %w", err)
	}
	metrics.Transitions.WithLabelValues(string(in.Kind)).Inc()
	telemetry.EmitAsync(r.emitter, ctx, telemetrydomain.NewEvent(
		telemetrydomain.EventGeofenceViolation, "violation", in.FamilyID, in.UserID,
		map[string]string{"violationId": v.ID, "geofenceId": in.GeofenceID, "kind": string(in.Kind)},
	))

	name := r.displayName(ctx, in.UserID)
	n, err := r.settings.Get(ctx)
	if err != nil {
		log.Printf("recorder: load notification settings for violation %s: %v", v.ID, err)
		metrics.Notifications.WithLabelValues("geofence", "failed").Inc()
		return v, nil
	}
	recipients := n.Recipients()
	if len(recipients) == 0 {
		log.Printf("recorder: no recipients configured, violation %s left unnotified", v.ID)
		metrics.Notifications.WithLabelValues("geofence", "skipped").Inc()
		return v, nil
	}

	email := notify.GeofenceAlert(name, in.GeofenceName, in.Kind.PastTense(), in.Coordinate, in.OccurredAt)
	if err := r.notifier.Send(ctx, recipients, email.Subject, email.Body); err != nil {
		log.Printf("recorder: send alert for violation %s: %v", v.ID, err)
		metrics.Notifications.WithLabelValues("geofence", "failed").Inc()
		return v, nil
	}
	metrics.Notifications.WithLabelValues("geofence", "sent").Inc()

	at := r.now().UTC()
	if err := r.store.MarkNotified(ctx, v.ID, at); err != nil {
		log.Printf("recorder: mark violation %s notified: %v", v.ID, err)
		return v, nil
	}
	v.Notified = true
	v.NotifiedAt = &at
	telemetry.EmitAsync(r.emitter, ctx, telemetrydomain.NewEvent(
		telemetrydomain.EventViolationNotified, "violation", in.FamilyID, in.UserID,
		map[string]any{"violationId": v.ID, "recipients": len(recipients)},
	))
	return v, nil
}

// ListUnnotified returns violations whose alert was never sent.
func (r *Recorder) ListUnnotified(ctx context.Context, limit int) ([]*domain.Violation, error) {
	return r.store.ListUnnotified(ctx, limit)
}

func (r *Recorder) displayName(ctx context.Context, userID string) string {
	if r.names == nil {
		return userdomain.UnknownUserName
	}
	name, err := r.names.DisplayName(ctx, userID)
	if err != nil {
		log.Printf("recorder: look up name for user %s: %v", userID, err)
		return userdomain.UnknownUserName
	}
	if name == "" {
		return userdomain.UnknownUserName
	}
	return name
}
