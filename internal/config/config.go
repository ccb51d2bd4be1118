// Package config loads and validates the atelier configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Operator is the default acting identity for CLI commands. Individual
// commands may override it with flags; the engine only records it.
type Operator struct {
	StaffID   string `toml:"staff_id"`
	StaffName string `toml:"staff_name"`
	Role      string `toml:"role"`
}

// Workshop contains workflow-related knobs.
type Workshop struct {
	// TemplatesPath points at a garment task template file. Empty means
	// the built-in templates.
	TemplatesPath string `toml:"templates_path"`
	// AdvanceLockTimeout bounds how long an advance waits for the
	// workshop lock, in seconds.
	AdvanceLockTimeout int `toml:"advance_lock_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for atelier.
type Config struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`

	Operator Operator `toml:"operator"`
	Workshop Workshop `toml:"workshop"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the built-in configuration values.
func Default() Config {
	return Config{
		DataDir: "~/.local/share/atelier",
		LogDir:  "~/.local/share/atelier/logs",
		Workshop: Workshop{
			AdvanceLockTimeout: 10,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/atelier/config.toml")
}

// Load locates, parses, and validates a configuration file. An empty path
// means the default location; a missing file yields the defaults. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir must not be empty")
	}
	if strings.TrimSpace(c.LogDir) == "" {
		return errors.New("config: log_dir must not be empty")
	}
	if c.Workshop.AdvanceLockTimeout <= 0 {
		return errors.New("config: workshop.advance_lock_timeout must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging.format %q is not console or json", c.Logging.Format)
	}
	return nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.DataDir, err = expandPath(c.DataDir); err != nil {
		return err
	}
	if c.LogDir, err = expandPath(c.LogDir); err != nil {
		return err
	}
	if c.Workshop.TemplatesPath != "" {
		if c.Workshop.TemplatesPath, err = expandPath(c.Workshop.TemplatesPath); err != nil {
			return err
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidate = defaultPath
	} else {
		expanded, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		candidate = expanded
	}

	info, err := os.Stat(candidate)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", candidate)
		}
		return candidate, true, nil
	case errors.Is(err, os.ErrNotExist):
		return candidate, false, nil
	default:
		return "", false, fmt.Errorf("stat config path: %w", err)
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
