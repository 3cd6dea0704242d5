package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"family-tracker/backend/internal/server/respond"
)

const checkTimeout = 2 * time.Second

// Pinger is used for readiness (e.g. *sql.DB). If nil, readiness skips the DB ping.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker is an optional dependency check (e.g. the cooldown cache).
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// RedisChecker reports the cooldown cache as healthy when PING succeeds.
type RedisChecker struct {
	Client redis.Cmdable
}

// HealthCheck pings Redis.
func (c RedisChecker) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Server serves liveness and readiness for Kubernetes, load balancers, and CI.
type Server struct {
	pinger Pinger
	cache  Checker
}

// NewServer returns a health server. Either dependency may be nil.
func NewServer(pinger Pinger, cache Checker) *Server {
	return &Server{pinger: pinger, cache: cache}
}

type statusResponse struct {
	Status string `json:"status"`
}

// Live handles GET /healthz. It always reports serving while the process is up.
func (s *Server) Live(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, statusResponse{Status: "SERVING"})
}

// Ready handles GET /readyz. It returns 503 when the DB or cache check fails.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()
	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			respond.JSON(w, http.StatusServiceUnavailable, statusResponse{Status: "NOT_SERVING"})
			return
		}
	}
	if s.cache != nil {
		if err := s.cache.HealthCheck(ctx); err != nil {
			log.Printf("health: cache check failed: %v", err)
			respond.JSON(w, http.StatusServiceUnavailable, statusResponse{Status: "NOT_SERVING"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, statusResponse{Status: "SERVING"})
}
