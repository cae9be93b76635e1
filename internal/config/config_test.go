package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.DBPath != "data/capture.db" {
		t.Errorf("addr/db = %q/%q", cfg.HTTPAddr, cfg.DBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v, want INFO", cfg.LogLevel)
	}
	if cfg.RoundLimit != 100 || cfg.TickDelay != 500*time.Millisecond || cfg.Seed != 0 {
		t.Errorf("game settings = %d/%s/%d", cfg.RoundLimit, cfg.TickDelay, cfg.Seed)
	}
	if cfg.RedisURL != "" || cfg.AdminToken != "" {
		t.Error("optional settings should be empty by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ROUND_LIMIT", "7")
	t.Setenv("TICK_DELAY", "2s")
	t.Setenv("SEED", "1234")
	t.Setenv("ADMIN_TOKEN", "root")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.RoundLimit != 7 || cfg.TickDelay != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Seed != 1234 || cfg.AdminToken != "root" {
		t.Errorf("seed/admin = %d/%q", cfg.Seed, cfg.AdminToken)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero round limit", "ROUND_LIMIT", "0"},
		{"negative tick delay", "TICK_DELAY", "-1s"},
		{"malformed seed", "SEED", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
