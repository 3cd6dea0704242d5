package repository

import (
	"context"
	"database/sql"

	"family-tracker/backend/internal/db/sqlc/gen"
	"family-tracker/backend/internal/message/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a message repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// Create inserts m and writes the generated ID and timestamp back onto it.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Message) error {
	row, err := r.queries.CreateMessage(ctx, gen.CreateMessageParams{
		FamilyID: m.FamilyID,
		UserID:   m.UserID,
		Message:  m.Content,
	})
	if err != nil {
		return err
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	return nil
}
