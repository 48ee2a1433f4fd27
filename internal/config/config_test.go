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

	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr ':8080', got %q", cfg.Addr)
	}
	if cfg.AccessTokenTTL != 8*24*time.Hour {
		t.Errorf("expected 8-day access token TTL, got %v", cfg.AccessTokenTTL)
	}
	if cfg.ResetTokenTTL != 48*time.Hour {
		t.Errorf("expected 48h reset token TTL, got %v", cfg.ResetTokenTTL)
	}
	if cfg.SecretKey == "" {
		t.Error("expected auto-generated secret key")
	}
	if cfg.EmailsEnabled() {
		t.Error("emails should be disabled without SMTP configuration")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("SECRET_KEY", "configured-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAILS_FROM_EMAIL", "noreply@example.com")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173/, https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("expected addr ':9090', got %q", cfg.Addr)
	}
	if cfg.SecretKey != "configured-secret" {
		t.Errorf("expected configured secret, got %q", cfg.SecretKey)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %v", cfg.AccessTokenTTL)
	}
	if !cfg.EmailsEnabled() {
		t.Error("emails should be enabled with SMTP host and from address")
	}

	want := []string{"http://localhost:5173", "https://app.example.com"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %v", len(want), cfg.CORSOrigins)
	}
	for i, origin := range want {
		if cfg.CORSOrigins[i] != origin {
			t.Errorf("origin %d: expected %q, got %q", i, origin, cfg.CORSOrigins[i])
		}
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccessTokenTTL != 8*24*time.Hour {
		t.Errorf("expected default TTL on invalid value, got %v", cfg.AccessTokenTTL)
	}
}
