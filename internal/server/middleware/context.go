package middleware

import (
	"context"

	"family-tracker/backend/internal/security"
)

type contextKey struct{ name string }

var (
	identityKey = contextKey{"identity"}
	holderKey   = contextKey{"identity_holder"}
)

// identityHolder lets outer middleware see the identity resolved further down the chain.
type identityHolder struct {
	identity *security.Identity
}

func withHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// WithIdentity returns a context carrying the authenticated caller.
// Handlers read it via IdentityFrom, GetUserID, GetFamilyID.
func WithIdentity(ctx context.Context, id *security.Identity) context.Context {
	if h, ok := ctx.Value(holderKey).(*identityHolder); ok {
		h.identity = id
	}
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller from context and true if set; otherwise nil, false.
func IdentityFrom(ctx context.Context) (*security.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*security.Identity)
	return id, ok && id != nil
}

// GetUserID returns the caller's user id and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return "", false
	}
	return id.UserID, true
}

// GetFamilyID returns the caller's family id and true if the caller is in a family; otherwise "", false.
func GetFamilyID(ctx context.Context) (string, bool) {
	id, ok := IdentityFrom(ctx)
	if !ok || id.FamilyID == "" {
		return "", false
	}
	return id.FamilyID, true
}
