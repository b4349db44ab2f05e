package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Point at a path that does not exist so only defaults apply.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Report.Rounding != "5m" {
		t.Errorf("rounding = %q, want 5m", cfg.Report.Rounding)
	}
	if cfg.Report.WorkStart != "06:00" || cfg.Report.WorkEnd != "18:00" {
		t.Errorf("working hours = %q-%q, want 06:00-18:00", cfg.Report.WorkStart, cfg.Report.WorkEnd)
	}
	if cfg.Report.WorkIdle != "4h" || cfg.Report.AfterIdle != "15m" {
		t.Errorf("idle thresholds = %q/%q, want 4h/15m", cfg.Report.WorkIdle, cfg.Report.AfterIdle)
	}
	if cfg.Storage.Type != "bolt" {
		t.Errorf("storage type = %q, want bolt", cfg.Storage.Type)
	}
	if cfg.Storage.Path == "" {
		t.Error("expected default bolt path to be resolved")
	}
	if cfg.Tracker.PollInterval != "30s" {
		t.Errorf("poll interval = %q, want 30s", cfg.Tracker.PollInterval)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
report:
  rounding: 10m
  work_start: "08:00"
  work_idle: 2h
storage:
  type: redis
  redis:
    host: redis.example.net
    port: 6380
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Report.Rounding != "10m" {
		t.Errorf("rounding = %q, want 10m", cfg.Report.Rounding)
	}
	if cfg.Report.WorkStart != "08:00" {
		t.Errorf("work_start = %q, want 08:00", cfg.Report.WorkStart)
	}
	// Unset keys keep their defaults.
	if cfg.Report.AfterIdle != "15m" {
		t.Errorf("after_idle = %q, want default 15m", cfg.Report.AfterIdle)
	}
	if cfg.Storage.Type != "redis" || cfg.Storage.Redis.Host != "redis.example.net" || cfg.Storage.Redis.Port != 6380 {
		t.Errorf("redis config = %+v", cfg.Storage)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad rounding", "report:\n  rounding: soon\n"},
		{"negative idle", "report:\n  work_idle: -1h\n"},
		{"unknown storage", "storage:\n  type: csv\n"},
		{"negative retention", "tracker:\n  retention_days: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
