package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	adminhandler "family-tracker/backend/internal/admin/handler"
	"family-tracker/backend/internal/config"
	"family-tracker/backend/internal/db"
	"family-tracker/backend/internal/db/migrate"
	"family-tracker/backend/internal/devicehealth"
	devicehealthdomain "family-tracker/backend/internal/devicehealth/domain"
	devicehealthrepo "family-tracker/backend/internal/devicehealth/repository"
	"family-tracker/backend/internal/geofence/engine"
	geofencerepo "family-tracker/backend/internal/geofence/repository"
	healthhandler "family-tracker/backend/internal/health/handler"
	"family-tracker/backend/internal/ingest"
	locationrepo "family-tracker/backend/internal/location/repository"
	messagerepo "family-tracker/backend/internal/message/repository"
	"family-tracker/backend/internal/metrics"
	"family-tracker/backend/internal/notify"
	"family-tracker/backend/internal/realtime"
	"family-tracker/backend/internal/security"
	"family-tracker/backend/internal/server"
	settingsrepo "family-tracker/backend/internal/settings/repository"
	"family-tracker/backend/internal/telemetry"
	telemetryotel "family-tracker/backend/internal/telemetry/otel"
	"family-tracker/backend/internal/telemetry/producer"
	userrepo "family-tracker/backend/internal/user/repository"
	"family-tracker/backend/internal/violation"
	violationrepo "family-tracker/backend/internal/violation/repository"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	otel.SetTracerProvider(providers.TracerProvider)
	otel.SetMeterProvider(providers.MeterProvider)

	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	emitters := telemetry.MultiEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("telemetry: writing events to kafka topic %s", cfg.TelemetryKafkaTopic)
	}

	if cfg.MigrateOnStart {
		if err := migrate.Up(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	if cfg.JWTSecret == "" {
		log.Printf("security: JWT_SECRET not set, using development secret")
	}
	tokens, err := security.NewTokenProvider(cfg.SigningSecret(), cfg.JWTIssuer, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("security: %v", err)
	}

	users := userrepo.NewPostgresRepository(database)
	locations := locationrepo.NewPostgresRepository(database)
	messages := messagerepo.NewPostgresRepository(database)
	fences := geofencerepo.NewPostgresRepository(database)
	violations := violationrepo.NewPostgresRepository(database)
	settings := settingsrepo.NewPostgresRepository(database)
	resolver := security.NewResolver(tokens, users)

	var cooldowns devicehealthrepo.CooldownStore = devicehealthrepo.NewPostgresRepository(database)
	var cacheCheck healthhandler.Checker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		cooldowns = devicehealthrepo.NewCachedStore(rdb, cooldowns, devicehealthdomain.CooldownWindow)
		cacheCheck = healthhandler.RedisChecker{Client: rdb}
		log.Printf("devicehealth: cooldown cache at %s", cfg.RedisAddr)
	}

	notifier := notify.NewDispatcher(notify.NewSMTPSender(settings), cfg.NotifyRatePerMinute, cfg.NotifyBurst, cfg.NotifyDeadline())

	hub := realtime.NewHub()
	recorder := violation.NewRecorder(violations, users, settings, notifier, emitters)
	pipeline := ingest.NewPipeline(engine.New(fences), recorder, hub, emitters)
	monitor := devicehealth.NewMonitor(devicehealth.Deps{
		Users:     users,
		Locations: locations,
		Settings:  settings,
		Cooldowns: cooldowns,
		Notifier:  notifier,
		Emitter:   emitters,
	}, cfg.MonitorEvery())

	router := server.NewRouter(server.Deps{
		Resolver: resolver,
		Ingest:   ingest.NewHandler(locations, messages, pipeline, hub),
		Admin:    adminhandler.NewServer(recorder),
		Health:   healthhandler.NewServer(database, cacheCheck),
		Realtime: realtime.NewHandler(hub, resolver, emitters),
		Metrics:  metrics.Handler(),
		Emitter:  emitters,
	})
	srv := server.NewHTTPServer(cfg.HTTPAddr, router)

	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	go hub.RunHeartbeat(heartbeatCtx, cfg.HeartbeatEvery())

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()
	// The monitor outlives the signal context; monitor.Stop below ends it after the running sweep.
	monitor.Start(context.WithoutCancel(ctx))

	<-ctx.Done()
	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	stopHeartbeat()
	hub.Close()
	monitor.Stop()
	pipeline.Wait()

	// Let in-flight async telemetry emits finish before the providers go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
