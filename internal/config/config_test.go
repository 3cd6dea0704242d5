package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "family-tracker" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "family-tracker")
	}
	if cfg.TelemetryKafkaTopic != "tracker-events" {
		t.Errorf("TelemetryKafkaTopic = %q, want %q", cfg.TelemetryKafkaTopic, "tracker-events")
	}
	if cfg.NotifyRatePerMinute != 30 {
		t.Errorf("NotifyRatePerMinute = %d, want 30", cfg.NotifyRatePerMinute)
	}
	if cfg.NotifyBurst != 5 {
		t.Errorf("NotifyBurst = %d, want 5", cfg.NotifyBurst)
	}
	if cfg.MigrateOnStart {
		t.Error("MigrateOnStart should default to false")
	}
	if got := cfg.MonitorEvery(); got != 5*time.Minute {
		t.Errorf("MonitorEvery = %v, want 5m", got)
	}
	if got := cfg.HeartbeatEvery(); got != 30*time.Second {
		t.Errorf("HeartbeatEvery = %v, want 30s", got)
	}
	if got := cfg.NotifyDeadline(); got != 15*time.Second {
		t.Errorf("NotifyDeadline = %v, want 15s", got)
	}
	if got := cfg.TokenTTL(); got != 720*time.Hour {
		t.Errorf("TokenTTL = %v, want 720h", got)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("MONITOR_INTERVAL", "1m")
	os.Setenv("REDIS_ADDR", "localhost:6379")
	os.Setenv("REDIS_DB", "2")
	os.Setenv("NOTIFY_RATE_PER_MINUTE", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if got := cfg.MonitorEvery(); got != time.Minute {
		t.Errorf("MonitorEvery = %v, want 1m", got)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis = %q/%d, want localhost:6379/2", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.NotifyRatePerMinute != 120 {
		t.Errorf("NotifyRatePerMinute = %d, want 120", cfg.NotifyRatePerMinute)
	}
}

func TestLoad_JWTSecretRequiredInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error without JWT_SECRET in production")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
	if err.Error() != "config: JWT_SECRET must be set when APP_ENV=production" {
		t.Errorf("error = %q", err.Error())
	}

	os.Setenv("JWT_SECRET", "s3cret")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret: %v", err)
	}
}

func TestLoad_NotifyLimits(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"zero rate", "NOTIFY_RATE_PER_MINUTE", "0"},
		{"negative rate", "NOTIFY_RATE_PER_MINUTE", "-1"},
		{"zero burst", "NOTIFY_BURST", "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("Load with %s=%s should return error", tc.key, tc.val)
			}
		})
	}
}

func TestDurationGetters_FallBackOnInvalid(t *testing.T) {
	cfg := &Config{
		MonitorInterval:   "invalid",
		HeartbeatInterval: "0",
		NotifyTimeout:     "-5s",
		JWTTTL:            "",
	}
	if got := cfg.MonitorEvery(); got != 5*time.Minute {
		t.Errorf("MonitorEvery = %v, want 5m", got)
	}
	if got := cfg.HeartbeatEvery(); got != 30*time.Second {
		t.Errorf("HeartbeatEvery = %v, want 30s", got)
	}
	if got := cfg.NotifyDeadline(); got != 15*time.Second {
		t.Errorf("NotifyDeadline = %v, want 15s", got)
	}
	if got := cfg.TokenTTL(); got != 720*time.Hour {
		t.Errorf("TokenTTL = %v, want 720h", got)
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	testCases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"localhost:9092", []string{"localhost:9092"}},
		{" a:1 , ,b:2 ", []string{"a:1", "b:2"}},
	}
	for _, tc := range testCases {
		cfg := &Config{TelemetryKafkaBrokers: tc.in}
		got := cfg.TelemetryKafkaBrokersList()
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("TelemetryKafkaBrokersList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	var nilCfg *Config
	if got := nilCfg.TelemetryKafkaBrokersList(); got != nil {
		t.Errorf("nil config = %v, want nil", got)
	}
}

func TestSigningSecret(t *testing.T) {
	if got := string((&Config{}).SigningSecret()); got != DevJWTSecret {
		t.Errorf("SigningSecret() = %q, want dev secret", got)
	}
	if got := string((&Config{JWTSecret: "s3cret"}).SigningSecret()); got != "s3cret" {
		t.Errorf("SigningSecret() = %q, want s3cret", got)
	}
}
