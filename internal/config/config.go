// Package config loads the engine's on-disk configuration: the HDC
// dimension, session defaults, and logging options. A session embedder
// (the CLI, a test harness, a long-running service) reads a Config
// once at startup and passes it into session.Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level on-disk shape, conventionally loaded from
// sys2dsl.yaml in the working directory or a path given on the CLI.
type Config struct {
	Dimension      int           `yaml:"dimension,omitempty"`
	ClosedWorld    bool          `yaml:"closed_world,omitempty"`
	Holographic    bool          `yaml:"holographic,omitempty"`
	CacheTTL       time.Duration `yaml:"cache_ttl,omitempty"`
	DimensionsFile string        `yaml:"dimensions_file,omitempty"` // passed to registry.LoadDimensionRegistry
	Logging        LoggingConfig `yaml:"logging,omitempty"`
}

// LoggingConfig controls the zap logger built by logging.New.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`       // debug|info|warn|error, default info
	Encoding   string `yaml:"encoding,omitempty"`     // json|console, default console
	OutputPath string `yaml:"output_path,omitempty"`  // default stderr
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Dimension: 0, // session.New substitutes hdc.DefaultDimension
		CacheTTL:  30 * time.Second,
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads and parses a YAML config file at path. A missing file is
// not an error: Default() is returned instead, matching the pattern of
// treating absent on-disk config as "use the defaults".
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
