package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Name != "course-service" {
		t.Errorf("app name = %q, want course-service", cfg.App.Name)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %q, want 0.0.0.0:8080", cfg.App.Addr())
	}
	if !cfg.App.Development() {
		t.Error("default env should be development")
	}
	if cfg.Auth.AccessTokenTTLMinutes != 60 {
		t.Errorf("token ttl = %d, want 60", cfg.Auth.AccessTokenTTLMinutes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_VERIFICATION_TTL_MINUTES", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:9999" {
		t.Errorf("addr = %q, want 0.0.0.0:9999", cfg.App.Addr())
	}
	if cfg.App.Development() {
		t.Error("production env should not report development")
	}
	if got := cfg.Auth.VerificationTTL(); got != 30*time.Minute {
		t.Errorf("verification ttl = %v, want 30m", got)
	}
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("invalid REDIS_DB should fail loading")
	}
}

func TestTimeoutAndTTLFallbacks(t *testing.T) {
	app := AppConfig{RequestTimeoutSeconds: 0}
	if app.RequestTimeout() != 0 {
		t.Error("non-positive timeout should disable the middleware")
	}
	auth := AuthConfig{VerificationTTLMinutes: 0}
	if auth.VerificationTTL() != 24*time.Hour {
		t.Error("zero verification ttl should fall back to 24h")
	}
}
