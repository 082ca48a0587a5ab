package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.App.Port)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %s", cfg.App.Addr())
	}
	if cfg.Auth.AccessTokenTTLMinutes != 60 {
		t.Fatalf("expected default token TTL 60, got %d", cfg.Auth.AccessTokenTTLMinutes)
	}
	if cfg.Report.CacheTTL() != time.Minute {
		t.Fatalf("expected default report cache TTL 1m, got %v", cfg.Report.CacheTTL())
	}
	if cfg.Worker.ReconcileInterval() != 30*time.Minute {
		t.Fatalf("expected default reconcile interval 30m, got %v", cfg.Worker.ReconcileInterval())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("AUTH_BCRYPT_COST", "10")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "120")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != "9000" {
		t.Fatalf("expected port override, got %s", cfg.App.Port)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost override, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Report.CacheTTL() != 2*time.Minute {
		t.Fatalf("expected 2m cache TTL, got %v", cfg.Report.CacheTTL())
	}
	if cfg.Postgres.RunMigrations {
		t.Fatalf("expected migrations disabled")
	}
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid REDIS_DB to fail")
	}
}

func TestDurationFallbacks(t *testing.T) {
	if (WorkerConfig{}).OrphanGrace() != time.Hour {
		t.Fatalf("expected 1h orphan grace fallback")
	}
	if (AppConfig{}).RequestTimeout() != 0 {
		t.Fatalf("expected zero timeout when unset")
	}
	if (ReportConfig{}).CacheTTL() != 0 {
		t.Fatalf("expected zero cache TTL when unset")
	}
}
