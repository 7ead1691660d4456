// Package config provides configuration management for tlogcompile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current version of tlogcompile.
// This is set at build time via ldflags.
var Version = "dev"

// Config holds all configuration options for a compile run.
type Config struct {
	// InputPath is the path to the raw event log. Required.
	InputPath string `yaml:"input_path"`

	// OutputPath is where compiled events are written. Empty means
	// stdout.
	OutputPath string `yaml:"output_path"`

	// Debug enables debug-level logging and crash-dump writing on fatal
	// errors.
	Debug bool `yaml:"debug"`

	// Redact enables query-parameter redaction on emitted URLs.
	Redact bool `yaml:"redact"`

	// IgnoredEvents lists input event names the reader drops before they
	// ever reach the state machine.
	IgnoredEvents []string `yaml:"ignored_events"`

	// CrashDumpDir is the directory debug crash dumps are written to.
	CrashDumpDir string `yaml:"crash_dump_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputPath:    "",
		Debug:         false,
		Redact:        false,
		IgnoredEvents: nil,
		CrashDumpDir:  "./crashes",
	}
}

// LoadFromFile loads configuration from a YAML file.
// Values from the file override the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input_path is required")
	}
	if c.CrashDumpDir == "" {
		return fmt.Errorf("crash_dump_dir is required")
	}
	return nil
}
