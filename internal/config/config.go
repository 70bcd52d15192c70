package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Dispatcher string       `yaml:"dispatcher"`
	Script     ScriptConfig `yaml:"script"`
	Approval   string       `yaml:"approval"`
	Server     ServerConfig `yaml:"server"`
	Runs       RunsConfig   `yaml:"runs"`
	LogLevel   string       `yaml:"log_level"`
}

// ScriptConfig configures the external agent command used by the
// script dispatcher. The task spec always arrives on the command's
// stdin; Args is for extra flags only.
type ScriptConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type RunsConfig struct {
	KeepLast int `yaml:"keep_last"`
}

// Validate checks that required fields are present and enums are known.
func (c *Config) Validate() error {
	switch c.Dispatcher {
	case "stub", "script":
	default:
		return fmt.Errorf("dispatcher must be \"stub\" or \"script\", got %q", c.Dispatcher)
	}
	switch c.Approval {
	case "auto", "console":
	default:
		return fmt.Errorf("approval must be \"auto\" or \"console\", got %q", c.Approval)
	}
	if c.Dispatcher == "script" && c.Script.Command == "" {
		return fmt.Errorf("script.command is required when dispatcher is \"script\"")
	}
	if _, err := c.ScriptTimeout(); err != nil {
		return err
	}
	return nil
}

// ScriptTimeout parses the configured script timeout.
func (c *Config) ScriptTimeout() (time.Duration, error) {
	if c.Script.Timeout == "" {
		return 5 * time.Minute, nil
	}
	d, err := time.ParseDuration(c.Script.Timeout)
	if err != nil {
		return 0, fmt.Errorf("script.timeout: %w", err)
	}
	return d, nil
}

// Load resolves config from project → user → defaults.
func Load() (*Config, error) {
	cfg := defaults()

	// user-level config
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".babysitter", "config.yaml")
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(".babysitter", "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Credentials never belong in the config file.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err == nil {
		for _, key := range []string{"api_key", "anthropic_api_key"} {
			if _, has := raw[key]; has {
				return fmt.Errorf("configuration field %q is not supported. "+
					"Remove it from %s and export the key in the agent's environment instead.", key, path)
			}
		}
	}
	return yaml.Unmarshal(data, dst)
}

func defaults() *Config {
	return &Config{
		Dispatcher: "script",
		Script: ScriptConfig{
			Command: "claude",
			Timeout: "300s",
		},
		Approval: "console",
		Server: ServerConfig{
			Addr: ":8377",
		},
		Runs: RunsConfig{
			KeepLast: 50,
		},
		LogLevel: "info",
	}
}
