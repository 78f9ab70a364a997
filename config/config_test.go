package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SHORTLIST_CACHE_TTL", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBDriver != "mysql" {
		t.Fatalf("expected default driver mysql, got %q", cfg.DBDriver)
	}
	if cfg.ShortlistCacheTTL != 30*time.Minute {
		t.Fatalf("expected 30m cache ttl, got %v", cfg.ShortlistCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("DEFAULT_CITY_LAT", "46.5")
	t.Setenv("DEADLINE_SWEEP_INTERVAL", "15s")

	cfg := Load()
	if cfg.Port != "9090" || cfg.DBDriver != "postgres" {
		t.Fatalf("unexpected overrides: port=%q driver=%q", cfg.Port, cfg.DBDriver)
	}
	if cfg.RateLimitBurst != 7 {
		t.Fatalf("expected burst 7, got %d", cfg.RateLimitBurst)
	}
	if cfg.DefaultCityLat != 46.5 {
		t.Fatalf("expected lat 46.5, got %v", cfg.DefaultCityLat)
	}
	if cfg.DeadlineSweepInterval != 15*time.Second {
		t.Fatalf("expected 15s sweep interval, got %v", cfg.DeadlineSweepInterval)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("SHORTLIST_CACHE_TTL", "soon")

	cfg := Load()
	if cfg.SMTPPort != 2525 {
		t.Fatalf("expected fallback smtp port, got %d", cfg.SMTPPort)
	}
	if cfg.ShortlistCacheTTL != 30*time.Minute {
		t.Fatalf("expected fallback ttl, got %v", cfg.ShortlistCacheTTL)
	}
}
