// Package metrics holds the process Prometheus collectors and the /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SamplesIngested counts accepted location samples by ingestion route.
	SamplesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tracker", Subsystem: "ingest", Name: "samples_total", Help: "Accepted location samples by source."},
		[]string{"source"},
	)
	// Transitions counts geofence transitions detected by kind (enter, exit).
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tracker", Subsystem: "geofence", Name: "transitions_total", Help: "Geofence transitions detected by kind."},
		[]string{"kind"},
	)
	// Notifications counts alert dispatch outcomes by alert kind and result (sent, failed, skipped).
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tracker", Subsystem: "notify", Name: "notifications_total", Help: "Alert dispatch outcomes by kind and result."},
		[]string{"kind", "result"},
	)
	// MonitorSweeps counts device health sweeps; MonitorSweepSeconds observes their duration.
	MonitorSweeps = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tracker", Subsystem: "devicehealth", Name: "sweeps_total", Help: "Completed device health sweeps."},
	)
	MonitorSweepSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "tracker", Subsystem: "devicehealth", Name: "sweep_seconds", Help: "Device health sweep duration.", Buckets: prometheus.DefBuckets},
	)
	// RealtimeConnections is the number of registered WebSocket connections.
	RealtimeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "tracker", Subsystem: "realtime", Name: "connections", Help: "Registered realtime connections."},
	)
	// RealtimeDropped counts connections removed by reason (slow, heartbeat).
	RealtimeDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tracker", Subsystem: "realtime", Name: "dropped_total", Help: "Realtime connections removed by the hub by reason."},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		SamplesIngested,
		Transitions,
		Notifications,
		MonitorSweeps,
		MonitorSweepSeconds,
		RealtimeConnections,
		RealtimeDropped,
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
