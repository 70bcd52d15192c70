package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if cfg.Dispatcher != "script" {
		t.Errorf("expected dispatcher 'script', got %q", cfg.Dispatcher)
	}
	if cfg.Approval != "console" {
		t.Errorf("expected approval 'console', got %q", cfg.Approval)
	}
	if cfg.Server.Addr != ":8377" {
		t.Errorf("expected addr ':8377', got %q", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}

	cfg.Dispatcher = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown dispatcher")
	}

	cfg = defaults()
	cfg.Approval = "maybe"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown approval mode")
	}

	cfg = defaults()
	cfg.Script.Command = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for script dispatcher without command")
	}
}

func TestScriptTimeout(t *testing.T) {
	cfg := defaults()
	d, err := cfg.ScriptTimeout()
	if err != nil {
		t.Fatal(err)
	}
	if d != 5*time.Minute {
		t.Errorf("expected 5m, got %v", d)
	}

	cfg.Script.Timeout = "90s"
	d, err = cfg.ScriptTimeout()
	if err != nil {
		t.Fatal(err)
	}
	if d != 90*time.Second {
		t.Errorf("expected 90s, got %v", d)
	}

	cfg.Script.Timeout = "soon"
	if _, err := cfg.ScriptTimeout(); err == nil {
		t.Error("expected error for unparsable timeout")
	}
}

func TestMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("log_level: debug\ndispatcher: stub\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := defaults()
	if err := mergeFile(cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected 'debug', got %q", cfg.LogLevel)
	}
	if cfg.Dispatcher != "stub" {
		t.Errorf("expected 'stub', got %q", cfg.Dispatcher)
	}
	// Unmentioned fields keep their defaults.
	if cfg.Script.Command != "claude" {
		t.Errorf("expected default script command, got %q", cfg.Script.Command)
	}
}

func TestMergeFileNotExist(t *testing.T) {
	cfg := defaults()
	err := mergeFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil || !os.IsNotExist(err) {
		t.Errorf("expected os.IsNotExist error, got %v", err)
	}
}

func TestMergeFileRejectsInlineAPIKeys(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
	}{
		{
			name:    "api_key",
			content: "api_key: sk-abc123\n",
		},
		{
			name:    "anthropic_api_key",
			content: "anthropic_api_key: sk-abc123\nlog_level: debug\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg := defaults()
			if err := mergeFile(cfg, path); err == nil {
				t.Error("expected error for inline credential field, got nil")
			}
		})
	}
}
