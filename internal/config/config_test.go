package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atelier/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path mismatch: %s", resolved)
	}
	defaults := config.Default()
	if cfg.Logging.Format != defaults.Logging.Format || cfg.Logging.Level != defaults.Logging.Level {
		t.Fatalf("expected default logging settings, got %+v", cfg.Logging)
	}
	if cfg.Workshop.AdvanceLockTimeout != defaults.Workshop.AdvanceLockTimeout {
		t.Fatalf("expected default lock timeout, got %d", cfg.Workshop.AdvanceLockTimeout)
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
data_dir = "~/atelier-data"
log_dir = "`+dir+`/logs"

[operator]
staff_id = "S4"
staff_name = "Revathi"
role = "checker"

[workshop]
advance_lock_timeout = 5

[logging]
format = "json"
level = "debug"
`)

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}
	if cfg.DataDir != filepath.Join(home, "atelier-data") {
		t.Fatalf("tilde not expanded: %s", cfg.DataDir)
	}
	if !filepath.IsAbs(cfg.LogDir) {
		t.Fatalf("log dir not absolute: %s", cfg.LogDir)
	}
	if cfg.Operator.StaffID != "S4" || cfg.Operator.Role != "checker" {
		t.Fatalf("operator not parsed: %+v", cfg.Operator)
	}
	if cfg.Workshop.AdvanceLockTimeout != 5 {
		t.Fatalf("lock timeout not parsed: %d", cfg.Workshop.AdvanceLockTimeout)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not parsed: %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadLoggingFormat(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "xml"
`)
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for bad logging format")
	}
}

func TestLoadRejectsNonPositiveLockTimeout(t *testing.T) {
	path := writeConfig(t, `
[workshop]
advance_lock_timeout = 0
`)
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for zero lock timeout")
	}
}

func TestValidateEmptyDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty data_dir")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.LogDir = filepath.Join(dir, "data", "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, sub := range []string{cfg.DataDir, cfg.LogDir} {
		info, err := os.Stat(sub)
		if err != nil {
			t.Fatalf("stat %s: %v", sub, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", sub)
		}
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "data_dir") {
		t.Fatal("sample config missing data_dir")
	}
	if _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}

	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
