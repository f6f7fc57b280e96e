package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LPMS_API_BASE_URL", "LPMS_TOKEN", "LPMS_DEV_SUB", "LPMS_DEBUG", "LPMS_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Environment(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		checks  func(*testing.T, *Config)
	}{
		{
			name:    "defaults when no env set",
			envVars: map[string]string{},
			checks: func(t *testing.T, cfg *Config) {
				if cfg.APIBaseURL != "http://localhost:8081" {
					t.Errorf("expected default APIBaseURL, got %s", cfg.APIBaseURL)
				}
				if cfg.Theme != ThemeDark {
					t.Errorf("expected default Theme=dark, got %s", cfg.Theme)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected default LogLevel=info, got %s", cfg.LogLevel)
				}
				if cfg.Authenticated() {
					t.Error("expected no credentials")
				}
			},
		},
		{
			name: "overrides from env",
			envVars: map[string]string{
				"LPMS_API_BASE_URL": "https://lpms.example.com",
				"LPMS_DEV_SUB":      "manager-1",
				"LPMS_DEBUG":        "1",
				"LPMS_LOG_LEVEL":    "debug",
			},
			checks: func(t *testing.T, cfg *Config) {
				if cfg.APIBaseURL != "https://lpms.example.com" {
					t.Errorf("expected APIBaseURL override, got %s", cfg.APIBaseURL)
				}
				if cfg.DevSub != "manager-1" {
					t.Errorf("expected DevSub=manager-1, got %s", cfg.DevSub)
				}
				if !cfg.Debug {
					t.Error("expected Debug=true")
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("expected LogLevel=debug, got %s", cfg.LogLevel)
				}
				if !cfg.Authenticated() {
					t.Error("expected credentials from dev sub")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			tt.checks(t, cfg)
		})
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "api_base_url: http://lpms.internal:9000\ntheme: light\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "http://lpms.internal:9000" {
		t.Errorf("expected APIBaseURL from file, got %s", cfg.APIBaseURL)
	}
	if cfg.Theme != ThemeLight {
		t.Errorf("expected Theme=light, got %s", cfg.Theme)
	}
	// keys absent from the file keep their defaults
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %s", cfg.LogLevel)
	}

	t.Setenv("LPMS_API_BASE_URL", "http://override:1")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "http://override:1" {
		t.Errorf("expected env to win over file, got %s", cfg.APIBaseURL)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, ErrConfigFileNotFound) {
		t.Errorf("expected ErrConfigFileNotFound, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("theme: [unterminated"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	_, err = Load(bad)
	if !errors.Is(err, ErrInvalidConfigFormat) {
		t.Errorf("expected ErrInvalidConfigFormat, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty url", mutate: func(c *Config) { c.APIBaseURL = "" }, wantErr: ErrMissingAPIBaseURL},
		{name: "bad scheme", mutate: func(c *Config) { c.APIBaseURL = "ftp://x" }, wantErr: ErrInvalidAPIBaseURL},
		{name: "bad theme", mutate: func(c *Config) { c.Theme = "solarized" }, wantErr: ErrInvalidTheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSave_RoundTripWithoutToken(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Theme = ThemeLight
	cfg.Token = "secret"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Theme != ThemeLight {
		t.Errorf("expected saved theme, got %s", loaded.Theme)
	}
	if loaded.Token != "" {
		t.Error("token must not be written to disk")
	}
}
