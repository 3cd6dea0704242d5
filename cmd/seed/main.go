// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"family-tracker/backend/internal/config"
	"family-tracker/backend/internal/db"
	"family-tracker/backend/internal/geo"
	geofencedomain "family-tracker/backend/internal/geofence/domain"
	geofencerepo "family-tracker/backend/internal/geofence/repository"
	"family-tracker/backend/internal/security"
	settingsdomain "family-tracker/backend/internal/settings/domain"
	settingsrepo "family-tracker/backend/internal/settings/repository"
	userdomain "family-tracker/backend/internal/user/domain"
	userrepo "family-tracker/backend/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devUserID    = "dev-user-001"
	devUser2ID   = "dev-user-002"
	devFamilyID  = "dev-family-001"
	memberEmail  = "member@example.com"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	fences := geofencerepo.NewPostgresRepository(conn)
	settings := settingsrepo.NewPostgresRepository(conn)
	ctx := context.Background()

	tokens, err := security.NewTokenProvider(cfg.SigningSecret(), cfg.JWTIssuer, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("security: %v", err)
	}

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		printTokens(tokens)
		os.Exit(0)
	}

	now := time.Now().UTC()

	if err := users.CreateFamily(ctx, &userdomain.Family{
		ID:        devFamilyID,
		Name:      "Dev Family",
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("create family: %v", err)
	}

	for _, u := range []*userdomain.User{
		{ID: devUserID, Email: devUserEmail, Name: "Dev User", IsAdmin: true, FamilyID: devFamilyID},
		{ID: devUser2ID, Email: memberEmail, Name: "Member User", FamilyID: devFamilyID},
	} {
		if err := u.Validate(); err != nil {
			log.Fatalf("user %s: %v", u.Email, err)
		}
		u.CreatedAt, u.UpdatedAt = now, now
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create user %s: %v", u.Email, err)
		}
	}

	home := &geofencedomain.Geofence{
		ID:            uuid.New().String(),
		FamilyID:      devFamilyID,
		Name:          "Home",
		Center:        geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		RadiusMeters:  150,
		Active:        true,
		NotifyOnEnter: true,
		NotifyOnExit:  true,
		CreatedBy:     devUserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := home.Validate(); err != nil {
		log.Fatalf("geofence: %v", err)
	}
	if err := fences.Create(ctx, home); err != nil {
		log.Fatalf("create geofence: %v", err)
	}

	if err := settings.Create(ctx, &settingsdomain.Notification{
		SMTP: settingsdomain.SMTP{
			Host:      "localhost",
			Port:      1025,
			FromEmail: "alerts@family-tracker.local",
			FromName:  "Family Tracker",
		},
		AdminEmail:         devUserEmail,
		NotificationEmails: []string{memberEmail},
		Monitoring: settingsdomain.Monitoring{
			NotifyLowBattery:     true,
			LowBatteryThreshold:  settingsdomain.DefaultLowBatteryThreshold,
			NotifyDeviceOffline:  true,
			DeviceOfflineMinutes: settingsdomain.DefaultDeviceOfflineMinutes,
		},
	}); err != nil {
		log.Fatalf("create notification settings: %v", err)
	}

	log.Println("Seed completed successfully.")
	printTokens(tokens)
}

func printTokens(tokens *security.TokenProvider) {
	for _, u := range []struct{ label, id string }{
		{"Dev (admin)", devUserID},
		{"Member", devUser2ID},
	} {
		token, _, err := tokens.Issue(u.id)
		if err != nil {
			log.Fatalf("issue token for %s: %v", u.id, err)
		}
		fmt.Printf("%s token: %s\n", u.label, token)
	}
}
