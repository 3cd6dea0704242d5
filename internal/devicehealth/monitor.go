// Package devicehealth periodically sweeps grouped users for low battery and offline devices and
// alerts the family administrators, at most once per user and kind within the cooldown window.
package devicehealth

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"family-tracker/backend/internal/devicehealth/domain"
	"family-tracker/backend/internal/devicehealth/repository"
	locationdomain "family-tracker/backend/internal/location/domain"
	"family-tracker/backend/internal/metrics"
	"family-tracker/backend/internal/notify"
	settingsdomain "family-tracker/backend/internal/settings/domain"
	"family-tracker/backend/internal/telemetry"
	telemetrydomain "family-tracker/backend/internal/telemetry/domain"
	userdomain "family-tracker/backend/internal/user/domain"
)

// DefaultInterval is the sweep period used when none is configured.
const DefaultInterval = 5 * time.Minute

// UserSource lists users that belong to a family.
type UserSource interface {
	ListGrouped(ctx context.Context) ([]*userdomain.User, error)
}

// LocationSource returns a user's newest sample, or nil if they never reported.
type LocationSource interface {
	Latest(ctx context.Context, userID string) (*locationdomain.Sample, error)
}

// SettingsSource returns the current notification configuration, or nil when none is stored.
type SettingsSource interface {
	Get(ctx context.Context) (*settingsdomain.Notification, error)
}

// Monitor runs device health sweeps on an interval.
type Monitor struct {
	users     UserSource
	locations LocationSource
	settings  SettingsSource
	cooldowns repository.CooldownStore
	notifier  notify.Notifier
	emitter   telemetry.EventEmitter
	interval  time.Duration
	now       func() time.Time

	runMu sync.Mutex // serializes sweeps

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

// Deps are the Monitor collaborators. Emitter may be nil.
type Deps struct {
	Users     UserSource
	Locations LocationSource
	Settings  SettingsSource
	Cooldowns repository.CooldownStore
	Notifier  notify.Notifier
	Emitter   telemetry.EventEmitter
}

// NewMonitor returns a Monitor sweeping every interval (DefaultInterval if non-positive).
func NewMonitor(deps Deps, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		users:     deps.Users,
		locations: deps.Locations,
		settings:  deps.Settings,
		cooldowns: deps.Cooldowns,
		notifier:  deps.Notifier,
		emitter:   deps.Emitter,
		interval:  interval,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs one sweep synchronously, then sweeps every interval until Stop.
// Cancellation of ctx does not end the loop or interrupt a sweep; only Stop does.
// Calling Start again, or after Stop, does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started || m.stopped {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if err := m.RunOnce(ctx); err != nil {
		log.Printf("devicehealth: initial sweep: %v", err)
	}
	go m.loop(ctx)
	log.Printf("devicehealth: monitor started (every %s)", m.interval)
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			// a tick that raced with Stop must not start a new sweep
			select {
			case <-m.stop:
				return
			default:
			}
			if err := m.RunOnce(ctx); err != nil {
				log.Printf("devicehealth: sweep: %v", err)
			}
		}
	}
}

// Stop prevents further sweeps and waits for a running sweep to finish. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	started := m.started
	close(m.stop)
	m.mu.Unlock()

	if started {
		<-m.done
		log.Println("devicehealth: monitor stopped")
	}
}

// RunOnce performs a single sweep. It returns an error only when the monitoring configuration or
// the user list cannot be loaded; per-user failures are logged and the sweep continues.
func (m *Monitor) RunOnce(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	start := time.Now()
	defer func() {
		metrics.MonitorSweeps.Inc()
		metrics.MonitorSweepSeconds.Observe(time.Since(start).Seconds())
	}()

	n, err := m.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load monitoring config: %w", err)
	}
	if n == nil || !n.Monitoring.Enabled() {
		return nil
	}
	users, err := m.users.ListGrouped(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := m.now()
	recipients := n.Recipients()
	for _, u := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sample, err := m.locations.Latest(ctx, u.ID)
		if err != nil {
			log.Printf("devicehealth: latest location for user %s: %v", u.ID, err)
			continue
		}
		if sample == nil {
			continue
		}
		snap := &domain.Snapshot{
			UserID:          u.ID,
			UserName:        u.Name,
			UserEmail:       u.Email,
			FamilyID:        u.FamilyID,
			Battery:         sample.Battery,
			LastSampleAt:    sample.CapturedAt,
			SinceLastSample: now.Sub(sample.CapturedAt),
		}
		if snap.UserName == "" {
			snap.UserName = userdomain.UnknownUserName
		}
		mon := n.Monitoring
		if mon.NotifyLowBattery && snap.LowBattery(mon.LowBatteryThreshold) {
			m.alert(ctx, now, snap, domain.KindLowBattery, recipients,
				notify.LowBatteryAlert(snap.UserName, snap.UserEmail, *snap.Battery, mon.LowBatteryThreshold, snap.LastSampleAt))
		}
		if mon.NotifyDeviceOffline && snap.Offline(mon.DeviceOfflineMinutes) {
			m.alert(ctx, now, snap, domain.KindDeviceOffline, recipients,
				notify.DeviceOfflineAlert(snap.UserName, snap.UserEmail, snap.MinutesOffline(), mon.DeviceOfflineMinutes, snap.LastSampleAt, snap.Battery))
		}
	}
	return nil
}

// alert sends email unless a notification of kind went out for the user within the cooldown window,
// and records the send so the next sweeps stay quiet.
func (m *Monitor) alert(ctx context.Context, now time.Time, snap *domain.Snapshot, kind domain.Kind, recipients []string, email notify.Email) {
	recent, err := m.cooldowns.Recent(ctx, snap.UserID, kind, now.Add(-domain.CooldownWindow))
	if err != nil {
		log.Printf("devicehealth: cooldown check %s for user %s: %v", kind, snap.UserID, err)
		return
	}
	if recent != nil {
		return
	}
	if len(recipients) == 0 {
		log.Printf("devicehealth: no recipients configured, %s alert for user %s skipped", kind, snap.UserID)
		metrics.Notifications.WithLabelValues(string(kind), "skipped").Inc()
		return
	}
	if err := m.notifier.Send(ctx, recipients, email.Subject, email.Body); err != nil {
		log.Printf("devicehealth: send %s alert for user %s: %v", kind, snap.UserID, err)
		metrics.Notifications.WithLabelValues(string(kind), "failed").Inc()
		return
	}
	metrics.Notifications.WithLabelValues(string(kind), "sent").Inc()

	rec := &domain.Notification{ID: uuid.New().String(), UserID: snap.UserID, Kind: kind, SentAt: now}
	meta := map[string]any{"notificationId": rec.ID}
	switch kind {
	case domain.KindLowBattery:
		b := *snap.Battery
		rec.BatteryLevel = &b
		meta["battery"] = b
	case domain.KindDeviceOffline:
		mins := snap.MinutesOffline()
		rec.MinutesOffline = &mins
		meta["minutesOffline"] = mins
	}
	if err := m.cooldowns.Record(ctx, rec); err != nil {
		log.Printf("devicehealth: record %s notification for user %s: %v", kind, snap.UserID, err)
	}
	eventType := telemetrydomain.EventDeviceLowBattery
	if kind == domain.KindDeviceOffline {
		eventType = telemetrydomain.EventDeviceOffline
	}
	telemetry.EmitAsync(m.emitter, ctx, telemetrydomain.NewEvent(eventType, "devicehealth", snap.FamilyID, snap.UserID, meta))
}
