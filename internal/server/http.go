// Package server assembles the HTTP router for the API, realtime, health, and metrics endpoints.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	adminhandler "family-tracker/backend/internal/admin/handler"
	healthhandler "family-tracker/backend/internal/health/handler"
	"family-tracker/backend/internal/ingest"
	"family-tracker/backend/internal/server/middleware"
	"family-tracker/backend/internal/telemetry"
)

const readHeaderTimeout = 10 * time.Second

// Paths that are not traced or emitted as request telemetry.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
	"/ws":      true,
}

// Deps holds the handlers mounted by NewRouter. Nil handlers leave their routes unregistered.
type Deps struct {
	// Resolver authenticates Bearer tokens for /api routes. Required when Ingest or Admin is set.
	Resolver middleware.IdentityResolver
	// Ingest serves location and chat submissions under /api.
	Ingest *ingest.Handler
	// Admin serves admin-only routes under /api/admin.
	Admin *adminhandler.Server
	// Health serves /healthz and /readyz.
	Health *healthhandler.Server
	// Realtime is the WebSocket admission handler mounted at /ws.
	Realtime http.Handler
	// Metrics is the Prometheus scrape handler mounted at /metrics.
	Metrics http.Handler
	// Emitter receives http_request telemetry events. May be nil.
	Emitter telemetry.EventEmitter
}

// NewRouter returns the root handler with routes:
//   - GET  /healthz, /readyz           → internal/health/handler
//   - GET  /metrics                    → internal/metrics
//   - GET  /ws?token=...               → internal/realtime
//   - POST /api/locations, /api/owntracks, /api/owntracks/batch, /api/messages → internal/ingest
//   - GET  /api/admin/violations/unnotified → internal/admin/handler
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Telemetry(deps.Emitter, quietPaths))

	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Live)
		r.Get("/readyz", deps.Health.Ready)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Realtime != nil {
		r.Method(http.MethodGet, "/ws", deps.Realtime)
	}
	if deps.Resolver != nil && (deps.Ingest != nil || deps.Admin != nil) {
		r.Route("/api", func(api chi.Router) {
			api.Use(middleware.Auth(deps.Resolver))
			if deps.Ingest != nil {
				deps.Ingest.Routes(api)
			}
			if deps.Admin != nil {
				api.Route("/admin", func(admin chi.Router) {
					admin.Use(middleware.RequireAdmin)
					deps.Admin.Routes(admin)
				})
			}
		})
	}

	return otelhttp.NewHandler(r, "family-tracker.http",
		otelhttp.WithFilter(func(req *http.Request) bool { return !quietPaths[req.URL.Path] }),
	)
}

// NewHTTPServer returns an http.Server for addr serving h.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
