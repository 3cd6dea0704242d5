package repository

import (
	"context"

	"family-tracker/backend/internal/user/domain"
)

// Repository defines persistence for users and families.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// DisplayName returns the user's name, or "" if the user does not exist.
	DisplayName(ctx context.Context, id string) (string, error)
	// ListGrouped returns every user that belongs to a family, ordered by id.
	ListGrouped(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	CreateFamily(ctx context.Context, f *domain.Family) error
}
