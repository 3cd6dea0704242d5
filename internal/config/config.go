// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP/WebSocket server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// MigrateOnStart applies embedded migrations before the server starts serving.
	MigrateOnStart bool `mapstructure:"MIGRATE_ON_START"`
	// JWTSecret is the HS256 secret for bearer and WebSocket tokens. Required when APP_ENV=production.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim set on issued tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTTTL is the lifetime of issued tokens (e.g. "720h").
	JWTTTL string `mapstructure:"JWT_TTL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// RedisAddr enables the device-health cooldown cache when set (e.g. localhost:6379).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// MonitorInterval is the device health sweep period (default 5m).
	MonitorInterval string `mapstructure:"MONITOR_INTERVAL"`
	// HeartbeatInterval is the realtime liveness ping period (default 30s).
	HeartbeatInterval string `mapstructure:"HEARTBEAT_INTERVAL"`
	// NotifyTimeout bounds a single notification dispatch (default 15s).
	NotifyTimeout string `mapstructure:"NOTIFY_TIMEOUT"`
	// NotifyRatePerMinute caps outgoing notifications per minute across the process.
	NotifyRatePerMinute int `mapstructure:"NOTIFY_RATE_PER_MINUTE"`
	// NotifyBurst is the token bucket size for the notification limiter.
	NotifyBurst int `mapstructure:"NOTIFY_BURST"`

	// Telemetry (optional). When Kafka brokers are set, pipeline events are also written to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for pipeline events (default tracker-events).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// OTLPEndpoint is the collector endpoint for traces, metrics, and log records. Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MIGRATE_ON_START", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "family-tracker")
	v.SetDefault("JWT_TTL", "720h") // 30d
	v.SetDefault("APP_ENV", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONITOR_INTERVAL", "5m")
	v.SetDefault("HEARTBEAT_INTERVAL", "30s")
	v.SetDefault("NOTIFY_TIMEOUT", "15s")
	v.SetDefault("NOTIFY_RATE_PER_MINUTE", 30)
	v.SetDefault("NOTIFY_BURST", 5)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "tracker-events")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "family-tracker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "tracker-events-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.JWTSecret == "" && cfg.Env == "production" {
		return nil, errors.New("config: JWT_SECRET must be set when APP_ENV=production")
	}

	if cfg.NotifyRatePerMinute <= 0 {
		return nil, errors.New("config: NOTIFY_RATE_PER_MINUTE must be positive")
	}
	if cfg.NotifyBurst <= 0 {
		return nil, errors.New("config: NOTIFY_BURST must be positive")
	}

	return &cfg, nil
}

// DevJWTSecret signs tokens outside production when JWT_SECRET is unset.
const DevJWTSecret = "family-tracker-dev-secret"

// SigningSecret returns JWTSecret, or DevJWTSecret when it is unset. Load rejects an empty secret in production.
func (c *Config) SigningSecret() []byte {
	if c.JWTSecret == "" {
		return []byte(DevJWTSecret)
	}
	return []byte(c.JWTSecret)
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	return parseDuration(c.JWTTTL, 720*time.Hour)
}

// MonitorEvery parses MonitorInterval. Returns 5m if unset or invalid.
func (c *Config) MonitorEvery() time.Duration {
	return parseDuration(c.MonitorInterval, 5*time.Minute)
}

// HeartbeatEvery parses HeartbeatInterval. Returns 30s if unset or invalid.
func (c *Config) HeartbeatEvery() time.Duration {
	return parseDuration(c.HeartbeatInterval, 30*time.Second)
}

// NotifyDeadline parses NotifyTimeout. Returns 15s if unset or invalid.
func (c *Config) NotifyDeadline() time.Duration {
	return parseDuration(c.NotifyTimeout, 15*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the Kafka sink is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
