package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputPath != "" {
		t.Errorf("expected OutputPath empty (stdout), got %s", cfg.OutputPath)
	}
	if cfg.Debug != false {
		t.Errorf("expected Debug false, got %v", cfg.Debug)
	}
	if cfg.Redact != false {
		t.Errorf("expected Redact false, got %v", cfg.Redact)
	}
	if cfg.IgnoredEvents != nil {
		t.Errorf("expected IgnoredEvents nil, got %v", cfg.IgnoredEvents)
	}
	if cfg.CrashDumpDir != "./crashes" {
		t.Errorf("expected CrashDumpDir ./crashes, got %s", cfg.CrashDumpDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
input_path: "./session.jsonl"
output_path: "./out.jsonl"
debug: true
redact: false
ignored_events:
  - keydown
  - document_mousedown
crash_dump_dir: "./dumps"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.InputPath != "./session.jsonl" {
		t.Errorf("expected InputPath ./session.jsonl, got %s", cfg.InputPath)
	}
	if cfg.OutputPath != "./out.jsonl" {
		t.Errorf("expected OutputPath ./out.jsonl, got %s", cfg.OutputPath)
	}
	if cfg.Debug != true {
		t.Errorf("expected Debug true, got %v", cfg.Debug)
	}
	if cfg.Redact != false {
		t.Errorf("expected Redact false, got %v", cfg.Redact)
	}
	if len(cfg.IgnoredEvents) != 2 || cfg.IgnoredEvents[0] != "keydown" {
		t.Errorf("expected IgnoredEvents [keydown document_mousedown], got %v", cfg.IgnoredEvents)
	}
	if cfg.CrashDumpDir != "./dumps" {
		t.Errorf("expected CrashDumpDir ./dumps, got %s", cfg.CrashDumpDir)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromFilePartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.yaml")

	configContent := `
input_path: "./session.jsonl"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.InputPath != "./session.jsonl" {
		t.Errorf("expected InputPath ./session.jsonl, got %s", cfg.InputPath)
	}

	// Defaults preserved for unspecified fields.
	if cfg.Redact != false {
		t.Errorf("expected Redact default false, got %v", cfg.Redact)
	}
	if cfg.CrashDumpDir != "./crashes" {
		t.Errorf("expected CrashDumpDir default ./crashes, got %s", cfg.CrashDumpDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) { c.InputPath = "./session.jsonl" },
			wantErr: false,
		},
		{
			name:    "missing input path",
			modify:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "empty crash dump dir",
			modify: func(c *Config) {
				c.InputPath = "./session.jsonl"
				c.CrashDumpDir = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
