package repository

import (
	"context"
	"database/sql"
	"errors"

	"family-tracker/backend/internal/db/sqlc/gen"
	"family-tracker/backend/internal/user/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// DisplayName returns the user's name, or "" if the user does not exist.
func (r *PostgresRepository) DisplayName(ctx context.Context, id string) (string, error) {
	name, err := r.queries.GetUserName(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return name, nil
}

// ListGrouped returns all users with a family, ordered by id.
func (r *PostgresRepository) ListGrouped(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.queries.ListGroupedUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.User{
			ID:       row.ID,
			Name:     row.Name,
			Email:    row.Email,
			FamilyID: row.FamilyID.String,
		})
	}
	return out, nil
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.queries.CreateUser(ctx, gen.CreateUserParams{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		FamilyID:  sql.NullString{String: u.FamilyID, Valid: u.FamilyID != ""},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
	return err
}

// CreateFamily persists the family. The family must have ID set.
func (r *PostgresRepository) CreateFamily(ctx context.Context, f *domain.Family) error {
	_, err := r.queries.CreateFamily(ctx, gen.CreateFamilyParams{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.CreatedAt,
	})
	return err
}

func genUserToDomain(u *gen.User) *domain.User {
	if u == nil {
		return nil
	}
	return &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		FamilyID:  u.FamilyID.String,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
