package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := fromEnv()
	cfg.JWTSecret = "0123456789abcdef0123"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("defaults with a secret should validate, got: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"bad port", func(c *Config) { c.Port = "70000" }, "Port must be between"},
		{"bad mongo scheme", func(c *Config) { c.MongoURI = "postgres://x" }, "MongoURI must start with"},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, "JWTSecret must be at least"},
		{"relative ai url", func(c *Config) { c.AIURL = "ai-service" }, "AIURL must be an absolute URL"},
		{"zero lock wait", func(c *Config) { c.BookingLockWait = 0 }, "BookingLockWait must be positive"},
		{"retry above wait", func(c *Config) {
			c.BookingLockWait = time.Second
			c.BookingLockRetryInterval = 2 * time.Second
		}, "must not exceed BookingLockWait"},
		{"kafka without topic", func(c *Config) {
			c.KafkaEnabled = true
			c.BookingEventsTopic = ""
		}, "BookingEventsTopic cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvBookingLockWait, "5s")
	t.Setenv(EnvAIURL, "http://ai.local:8000/")
	t.Setenv(EnvKafkaEnabled, "true")
	t.Setenv(EnvRedisDB, "not-a-number")

	cfg := fromEnv()

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.BookingLockWait != 5*time.Second {
		t.Errorf("BookingLockWait = %s, want 5s", cfg.BookingLockWait)
	}
	if cfg.AIURL != "http://ai.local:8000" {
		t.Errorf("AIURL should be trimmed of trailing slash, got %s", cfg.AIURL)
	}
	if !cfg.KafkaEnabled {
		t.Errorf("KafkaEnabled should be true")
	}
	if cfg.RedisDB != DefaultRedisDB {
		t.Errorf("unparsable RedisDB should fall back to default, got %d", cfg.RedisDB)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017/?replicaSet=rs0")
	if strings.Contains(got, "secret") {
		t.Errorf("credentials leaked: %s", got)
	}
	if !strings.HasPrefix(got, "mongodb://***:***@db") {
		t.Errorf("unexpected redaction: %s", got)
	}
}

func TestNormalizeSearchLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultSearchLimit},
		{-3, DefaultSearchLimit},
		{20, 20},
		{DefaultSearchLimit + 1, DefaultSearchLimit},
	}
	for _, tt := range tests {
		if got := NormalizeSearchLimit(tt.in); got != tt.want {
			t.Errorf("NormalizeSearchLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
