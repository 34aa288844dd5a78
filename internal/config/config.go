// Package config loads the optional adapter configuration file, unmarshals
// it into the Config structure and validates it. The file lets a workspace
// pin discovery ignores, a default tool and default report settings without
// repeating flags on every invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the well-known configuration file looked up at the workspace root.
const FileName = ".adapter.yaml"

// Config holds workspace-level adapter settings.
type Config struct {
	// Ignore lists directory names skipped during discovery, in addition to
	// the built-in ones (.git, vendor, testdata).
	Ignore []string `yaml:"ignore"`
	// DefaultTool is used when the command line names no tool.
	DefaultTool string `yaml:"default_tool"`
	// DefaultFormat is the report format used when --format is not given.
	DefaultFormat string `yaml:"default_format"`
	// ShowOutput attaches captured test output to run reports.
	ShowOutput bool `yaml:"show_output"`
	// TimeoutSeconds bounds a run invocation; zero means no timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// ToolArgs are extra pass-through arguments prepended per tool.
	ToolArgs map[string][]string `yaml:"tool_args"`
}

var knownFormats = map[string]bool{"table": true, "json": true, "md": true}

// Load reads and validates the configuration at the given path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling YAML from %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	setDefaults(&cfg)
	return &cfg, nil
}

// LoadFromRoot loads the well-known config file under root. A missing file is
// not an error; defaults are returned instead.
func LoadFromRoot(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err != nil {
		cfg := &Config{}
		setDefaults(cfg)
		return cfg, nil
	}
	return Load(path)
}

// setDefaults applies default values where the file left settings unset.
func setDefaults(cfg *Config) {
	if cfg.DefaultTool == "" {
		cfg.DefaultTool = "gotest"
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "json"
	}
}

// validate performs semantic validation on the loaded configuration.
func validate(cfg *Config) error {
	if cfg.DefaultFormat != "" && !knownFormats[cfg.DefaultFormat] {
		return fmt.Errorf("unknown default_format %q; must be one of: table, json, md", cfg.DefaultFormat)
	}
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", cfg.TimeoutSeconds)
	}
	for _, d := range cfg.Ignore {
		if d == "" {
			return fmt.Errorf("ignore entries must not be empty")
		}
		if filepath.IsAbs(d) {
			return fmt.Errorf("ignore entries are directory names, not paths: %q", d)
		}
	}
	return nil
}
