// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store setup, and seeded items.
package testsupport

import (
	"path/filepath"
	"testing"

	"atelier/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(base, "data")
	cfg.LogDir = filepath.Join(base, "logs")
	cfg.Operator.StaffID = "test-op"
	cfg.Operator.StaffName = "Test Operator"
	cfg.Operator.Role = "supervisor"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTemplatesPath points the config at a custom template file.
func WithTemplatesPath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workshop.TemplatesPath = path
	}
}
