package config

import (
	"testing"
	"time"
)

func setRequiredDBVars(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "quest")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "quest")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredDBVars(t)

	cfg := Load()
	if cfg.Port != "8000" {
		t.Fatalf("Port = %q, want default 8000", cfg.Port)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want default 10", cfg.BcryptCost)
	}
	if cfg.SessionTTLDays != 7 {
		t.Fatalf("SessionTTLDays = %d, want default 7", cfg.SessionTTLDays)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredDBVars(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SESSION_TTL_DAYS", "14")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SMTP_USER", "mailer@example.com")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.SessionTTLDays != 14 {
		t.Fatalf("SessionTTLDays = %d, want 14", cfg.SessionTTLDays)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	// SMTP_FROM falls back to SMTP_USER
	if cfg.SMTP.From != "mailer@example.com" {
		t.Fatalf("SMTP.From = %q, want fallback to SMTP_USER", cfg.SMTP.From)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CACHE_METHODS", "get, head")

	cc := LoadCacheConfig()
	if !cc.Enabled {
		t.Fatalf("cache should default to enabled")
	}
	if cc.TTL != 2*time.Minute {
		t.Fatalf("TTL = %v, want 2m", cc.TTL)
	}
	if !cc.Methods["GET"] || !cc.Methods["HEAD"] {
		t.Fatalf("methods not normalized: %v", cc.Methods)
	}
}
