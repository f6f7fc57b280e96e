package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is ~/.config/lpms/config.yaml, or empty if the home directory is unknown
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lpms", "config.yaml")
}

// Load loads configuration from a file path and applies environment variable overrides.
// A missing file at the default path is not an error; the defaults are used instead.
// Validation is deferred to allow CLI flag overrides to be applied first.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadFromFile(configPath, cfg); err != nil {
			if !errors.Is(err, ErrConfigFileNotFound) || configPath != DefaultPath() {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	applyEnvironmentOverrides(cfg)

	return cfg, nil
}

// loadFromFile decodes YAML over the defaults already in cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigFileNotFound
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfigFormat, err)
	}
	return nil
}

// applyEnvironmentOverrides applies configuration from environment variables
func applyEnvironmentOverrides(cfg *Config) {
	if apiURL := os.Getenv("LPMS_API_BASE_URL"); apiURL != "" {
		cfg.APIBaseURL = apiURL
	}

	if token := os.Getenv("LPMS_TOKEN"); token != "" {
		cfg.Token = token
	}

	if sub := os.Getenv("LPMS_DEV_SUB"); sub != "" {
		cfg.DevSub = sub
	}

	if debug := os.Getenv("LPMS_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}

	if logLevel := os.Getenv("LPMS_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

// Save writes the configuration as YAML, creating the parent directory.
// The token is never persisted.
func (c *Config) Save(path string) error {
	if path == "" {
		return ErrConfigFileNotFound
	}

	out := *c
	out.Token = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
