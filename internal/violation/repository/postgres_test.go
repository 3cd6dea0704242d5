package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"family-tracker/backend/internal/db"
	"family-tracker/backend/internal/db/migrate"
	"family-tracker/backend/internal/geo"
	geofencedomain "family-tracker/backend/internal/geofence/domain"
	geofencerepo "family-tracker/backend/internal/geofence/repository"
	userdomain "family-tracker/backend/internal/user/domain"
	userrepo "family-tracker/backend/internal/user/repository"
	"family-tracker/backend/internal/violation/domain"

	"github.com/google/uuid"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if err := migrate.Up(dsn); err != nil {
		t.Skipf("migrate up failed (expected in test environment): %v", err)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Skipf("Database connection failed (expected in test environment): %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// seedFence creates a family with one member and one fence, returning the user and fence IDs.
func seedFence(t *testing.T, conn *sql.DB) (string, string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	users := userrepo.NewPostgresRepository(conn)
	fam := &userdomain.Family{ID: uuid.New().String(), Name: "Test Family", CreatedAt: now}
	if err := users.CreateFamily(ctx, fam); err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}
	u := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     uuid.New().String() + "@example.com",
		Name:      "Test User",
		FamilyID:  fam.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	g := &geofencedomain.Geofence{
		ID:           uuid.New().String(),
		FamilyID:     fam.ID,
		Name:         "Home",
		Center:       geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		RadiusMeters: 150,
		Active:       true,
		NotifyOnExit: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := geofencerepo.NewPostgresRepository(conn).Create(ctx, g); err != nil {
		t.Fatalf("Create geofence: %v", err)
	}
	return u.ID, g.ID
}

func containsViolation(list []*domain.Violation, id string) *domain.Violation {
	for _, v := range list {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func TestPostgresRepository_CreateListMarkNotified(t *testing.T) {
	conn := openTestDB(t)
	userID, fenceID := seedFence(t, conn)
	repo := NewPostgresRepository(conn)
	ctx := context.Background()

	v := &domain.Violation{
		ID:         uuid.New().String(),
		GeofenceID: fenceID,
		UserID:     userID,
		Kind:       geofencedomain.TransitionExit,
		Coordinate: geo.Coordinate{Latitude: 40.72, Longitude: -74.0060},
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	list, err := repo.ListUnnotified(ctx, 500)
	if err != nil {
		t.Fatalf("ListUnnotified: %v", err)
	}
	got := containsViolation(list, v.ID)
	if got == nil {
		t.Fatal("new violation missing from unnotified list")
	}
	if got.Notified || got.NotifiedAt != nil {
		t.Errorf("Notified = %v, NotifiedAt = %v, want false/nil", got.Notified, got.NotifiedAt)
	}
	if got.Kind != geofencedomain.TransitionExit {
		t.Errorf("Kind = %q, want exit", got.Kind)
	}

	if err := repo.MarkNotified(ctx, v.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}
	list, err = repo.ListUnnotified(ctx, 500)
	if err != nil {
		t.Fatalf("ListUnnotified: %v", err)
	}
	if containsViolation(list, v.ID) != nil {
		t.Error("violation still listed after MarkNotified")
	}
}
