package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"family-tracker/backend/internal/server/respond"
	"family-tracker/backend/internal/violation/domain"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// ViolationLister returns violations whose alert was never sent.
type ViolationLister interface {
	ListUnnotified(ctx context.Context, limit int) ([]*domain.Violation, error)
}

// Server serves admin-only operations. Routes must be mounted behind middleware.Auth and middleware.RequireAdmin.
type Server struct {
	violations ViolationLister
}

// NewServer returns a new admin HTTP server.
func NewServer(violations ViolationLister) *Server {
	return &Server{violations: violations}
}

// Routes registers the admin endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/violations/unnotified", s.ListUnnotifiedViolations)
}

type violationResponse struct {
	ID         string     `json:"id"`
	GeofenceID string     `json:"geofence_id"`
	UserID     string     `json:"user_id"`
	Type       string     `json:"violation_type"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	OccurredAt time.Time  `json:"occurred_at"`
	Notified   bool       `json:"notified"`
	NotifiedAt *time.Time `json:"notified_at"`
}

// ListUnnotifiedViolations handles GET /api/admin/violations/unnotified?limit=N.
func (s *Server) ListUnnotifiedViolations(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}
	list, err := s.violations.ListUnnotified(r.Context(), limit)
	if err != nil {
		log.Printf("admin: list unnotified violations: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to list violations")
		return
	}
	out := make([]violationResponse, 0, len(list))
	for _, v := range list {
		out = append(out, violationResponse{
			ID:         v.ID,
			GeofenceID: v.GeofenceID,
			UserID:     v.UserID,
			Type:       string(v.Kind),
			Latitude:   v.Coordinate.Latitude,
			Longitude:  v.Coordinate.Longitude,
			OccurredAt: v.OccurredAt.UTC(),
			Notified:   v.Notified,
			NotifiedAt: v.NotifiedAt,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"violations": out})
}
