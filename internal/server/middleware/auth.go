// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"family-tracker/backend/internal/security"
	"family-tracker/backend/internal/server/respond"
)

const bearerPrefix = "bearer "

// IdentityResolver maps a bearer token to the caller's identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*security.Identity, error)
}

// Auth returns middleware that validates the Bearer token from the Authorization header
// and stores the resolved identity in the request context. Requests without a valid token get 401.
func Auth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				respond.Error(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, security.ErrInvalidToken) && !errors.Is(err, security.ErrUnknownUser) {
					log.Printf("middleware: resolve identity: %v", err)
				}
				respond.Error(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin rejects callers that are not admins with 403. Must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "missing or invalid authorization")
			return
		}
		if !id.IsAdmin {
			respond.Error(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractBearer returns the Bearer token from the Authorization header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
