// ABOUTME: Configuration loading and parsing for tapspeak
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete tapspeak configuration
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Entitlement EntitlementConfig `yaml:"entitlement"`
	Symbols     SymbolsConfig     `yaml:"symbols"`
	Speech      SpeechConfig      `yaml:"speech"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EntitlementConfig holds subscription validation configuration
type EntitlementConfig struct {
	TrialDays       int    `yaml:"trial_days"`
	GracePeriodDays int    `yaml:"grace_period_days"`
	ValidationURL   string `yaml:"validation_url"`
	APIKey          string `yaml:"api_key"`
	SigningSecret   string `yaml:"signing_secret"`
}

// SymbolsConfig holds symbol search service configuration
type SymbolsConfig struct {
	Endpoint string `yaml:"endpoint"`
	PageSize int    `yaml:"page_size"`
}

// SpeechConfig holds speech watchdog timing configuration
type SpeechConfig struct {
	WatchdogBase    time.Duration `yaml:"-"`
	WatchdogPerChar time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	WatchdogBaseRaw    string `yaml:"watchdog_base"`
	WatchdogPerCharRaw string `yaml:"watchdog_per_char"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Entitlement.TrialDays < 0 {
		return fmt.Errorf("entitlement.trial_days must not be negative")
	}
	if c.Entitlement.GracePeriodDays < 0 {
		return fmt.Errorf("entitlement.grace_period_days must not be negative")
	}

	// Online validation is optional, but when configured it needs credentials
	if c.Entitlement.ValidationURL != "" && c.Entitlement.APIKey == "" {
		return fmt.Errorf("entitlement.api_key is required when validation_url is set")
	}

	if c.Symbols.PageSize < 0 {
		return fmt.Errorf("symbols.page_size must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Speech.WatchdogBaseRaw != "" {
		cfg.Speech.WatchdogBase, err = time.ParseDuration(cfg.Speech.WatchdogBaseRaw)
		if err != nil {
			return fmt.Errorf("parsing watchdog_base %q: %w", cfg.Speech.WatchdogBaseRaw, err)
		}
	}

	if cfg.Speech.WatchdogPerCharRaw != "" {
		cfg.Speech.WatchdogPerChar, err = time.ParseDuration(cfg.Speech.WatchdogPerCharRaw)
		if err != nil {
			return fmt.Errorf("parsing watchdog_per_char %q: %w", cfg.Speech.WatchdogPerCharRaw, err)
		}
	}

	return nil
}
