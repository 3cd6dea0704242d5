package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"family-tracker/backend/internal/db/sqlc/gen"
	"family-tracker/backend/internal/geo"
	"family-tracker/backend/internal/location/domain"
)

type PostgresRepository struct {
	db      *sql.DB
	queries *gen.Queries
}

// NewPostgresRepository returns a location repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, queries: gen.New(db)}
}

// Create inserts the sample and writes the generated ID back onto it.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Sample) error {
	return create(ctx, r.queries, s)
}

// CreateBatch inserts all samples inside a single transaction.
func (r *PostgresRepository) CreateBatch(ctx context.Context, samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	q := r.queries.WithTx(tx)
	for i, s := range samples {
		if err := create(ctx, q, s); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Latest returns the user's newest sample, or nil if none exists.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*domain.Sample, error) {
	l, err := r.queries.GetLatestLocation(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genLocationToDomain(&l), nil
}

func create(ctx context.Context, q *gen.Queries, s *domain.Sample) error {
	arg := gen.CreateLocationParams{
		UserID:     s.UserID,
		Latitude:   s.Coordinate.Latitude,
		Longitude:  s.Coordinate.Longitude,
		CapturedAt: s.CapturedAt.UTC(),
	}
	if s.Accuracy != nil {
		arg.Accuracy = sql.NullFloat64{Float64: *s.Accuracy, Valid: true}
	}
	if s.Altitude != nil {
		arg.Altitude = sql.NullFloat64{Float64: *s.Altitude, Valid: true}
	}
	if s.Battery != nil {
		arg.Battery = sql.NullInt32{Int32: int32(*s.Battery), Valid: true}
	}
	l, err := q.CreateLocation(ctx, arg)
	if err != nil {
		return err
	}
	s.ID = l.ID
	return nil
}

func genLocationToDomain(l *gen.Location) *domain.Sample {
	if l == nil {
		return nil
	}
	s := &domain.Sample{
		ID:         l.ID,
		UserID:     l.UserID,
		Coordinate: geo.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude},
		CapturedAt: l.CapturedAt,
	}
	if l.Accuracy.Valid {
		v := l.Accuracy.Float64
		s.Accuracy = &v
	}
	if l.Altitude.Valid {
		v := l.Altitude.Float64
		s.Altitude = &v
	}
	if l.Battery.Valid {
		v := int(l.Battery.Int32)
		s.Battery = &v
	}
	return s
}
