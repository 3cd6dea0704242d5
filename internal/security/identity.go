package security

import (
	"context"
	"errors"

	"family-tracker/backend/internal/user/domain"
)

// ErrUnknownUser is returned when a valid token names a user that does not exist.
var ErrUnknownUser = errors.New("security: user not found")

// Identity is the authenticated caller resolved from a token.
type Identity struct {
	UserID   string
	FamilyID string
	Name     string
	Email    string
	IsAdmin  bool
}

// InFamily reports whether the caller belongs to a family.
func (i *Identity) InFamily() bool {
	return i != nil && i.FamilyID != ""
}

// UserGetter loads a user by id. Returns nil, nil when not found.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Resolver turns a bearer token into an Identity.
type Resolver struct {
	tokens *TokenProvider
	users  UserGetter
}

// NewResolver returns a Resolver validating with tokens and loading users from users.
func NewResolver(tokens *TokenProvider, users UserGetter) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve validates token and loads the user it names.
// Returns ErrInvalidToken for bad tokens and ErrUnknownUser when the user is gone.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	userID, err := r.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnknownUser
	}
	return &Identity{
		UserID:   u.ID,
		FamilyID: u.FamilyID,
		Name:     u.Name,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}, nil
}
