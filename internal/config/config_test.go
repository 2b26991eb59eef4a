package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: "localhost:6379"
session:
  countdown: "5s"
  maxActive: 4
  nameScope: session
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUIZ_REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("expected env override for redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.Session.MaxActive != 4 || cfg.Session.NameScope != "session" {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if got := TTLDuration(cfg.Session.Countdown, 3*time.Second); got != 5*time.Second {
		t.Fatalf("expected 5s countdown, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad duration, got %v", got)
	}
	if got := IntOr(0, 10); got != 10 {
		t.Fatalf("expected fallback 10, got %d", got)
	}
	if got := IntOr(3, 10); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}
