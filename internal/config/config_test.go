// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./tapspeak.db"

entitlement:
  trial_days: 14
  grace_period_days: 3
  validation_url: "https://validate.tapspeak.app"
  api_key: "test-key"
  signing_secret: "test-secret"

symbols:
  endpoint: "https://symbols.tapspeak.app"
  page_size: 24

speech:
  watchdog_base: "2s"
  watchdog_per_char: "150ms"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify database config
	if cfg.Database.Path != "./tapspeak.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./tapspeak.db")
	}

	// Verify entitlement config
	if cfg.Entitlement.TrialDays != 14 {
		t.Errorf("Entitlement.TrialDays = %d, want 14", cfg.Entitlement.TrialDays)
	}
	if cfg.Entitlement.GracePeriodDays != 3 {
		t.Errorf("Entitlement.GracePeriodDays = %d, want 3", cfg.Entitlement.GracePeriodDays)
	}
	if cfg.Entitlement.ValidationURL != "https://validate.tapspeak.app" {
		t.Errorf("Entitlement.ValidationURL = %q, want %q", cfg.Entitlement.ValidationURL, "https://validate.tapspeak.app")
	}
	if cfg.Entitlement.APIKey != "test-key" {
		t.Errorf("Entitlement.APIKey = %q, want %q", cfg.Entitlement.APIKey, "test-key")
	}

	// Verify symbols config
	if cfg.Symbols.Endpoint != "https://symbols.tapspeak.app" {
		t.Errorf("Symbols.Endpoint = %q, want %q", cfg.Symbols.Endpoint, "https://symbols.tapspeak.app")
	}
	if cfg.Symbols.PageSize != 24 {
		t.Errorf("Symbols.PageSize = %d, want 24", cfg.Symbols.PageSize)
	}

	// Verify speech config with duration parsing
	if cfg.Speech.WatchdogBase != 2*time.Second {
		t.Errorf("Speech.WatchdogBase = %v, want %v", cfg.Speech.WatchdogBase, 2*time.Second)
	}
	if cfg.Speech.WatchdogPerChar != 150*time.Millisecond {
		t.Errorf("Speech.WatchdogPerChar = %v, want %v", cfg.Speech.WatchdogPerChar, 150*time.Millisecond)
	}

	// Verify logging config
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_VALIDATION_API_KEY", "key-from-env")
	t.Setenv("TEST_SIGNING_SECRET", "secret-from-env")

	configPath := writeConfig(t, `
database:
  path: "./tapspeak.db"

entitlement:
  validation_url: "https://validate.tapspeak.app"
  api_key: "${TEST_VALIDATION_API_KEY}"
  signing_secret: "${TEST_SIGNING_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify env var expansion
	if cfg.Entitlement.APIKey != "key-from-env" {
		t.Errorf("Entitlement.APIKey = %q, want %q", cfg.Entitlement.APIKey, "key-from-env")
	}
	if cfg.Entitlement.SigningSecret != "secret-from-env" {
		t.Errorf("Entitlement.SigningSecret = %q, want %q", cfg.Entitlement.SigningSecret, "secret-from-env")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	// Ensure the env var is NOT set
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := writeConfig(t, `
database:
  path: "${UNSET_VAR_FOR_TEST}/tapspeak.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unset env vars should expand to empty string
	if cfg.Database.Path != "/tapspeak.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tapspeak.db")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path "missing colon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./tapspeak.db"

speech:
  watchdog_base: "invalid-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid duration, got nil")
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantErrSubstr string
	}{
		{
			name: "missing database path",
			configContent: `
database:
  path: ""
`,
			wantErrSubstr: "database.path is required",
		},
		{
			name: "negative trial days",
			configContent: `
database:
  path: "./tapspeak.db"
entitlement:
  trial_days: -1
`,
			wantErrSubstr: "trial_days must not be negative",
		},
		{
			name: "validation url without api key",
			configContent: `
database:
  path: "./tapspeak.db"
entitlement:
  validation_url: "https://validate.tapspeak.app"
`,
			wantErrSubstr: "entitlement.api_key is required",
		},
		{
			name: "negative page size",
			configContent: `
database:
  path: "./tapspeak.db"
symbols:
  page_size: -5
`,
			wantErrSubstr: "page_size must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.configContent)

			_, err := Load(configPath)
			if err == nil {
				t.Errorf("Load() expected error containing %q, got nil", tt.wantErrSubstr)
				return
			}

			if !strings.Contains(err.Error(), tt.wantErrSubstr) {
				t.Errorf("Load() error = %q, want error containing %q", err.Error(), tt.wantErrSubstr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
