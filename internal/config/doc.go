// Package config handles configuration loading for tapspeak.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	entitlement:
//	  api_key: "${TAPSPEAK_VALIDATION_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	speech:
//	  watchdog_base: "2s"
//	  watchdog_per_char: "150ms"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Database:
//
//	database:
//	  path: "~/.local/share/tapspeak/tapspeak.db"
//
// Entitlement validation:
//
//	entitlement:
//	  trial_days: 14
//	  grace_period_days: 3
//	  validation_url: "https://validate.tapspeak.app"
//	  api_key: "${TAPSPEAK_VALIDATION_API_KEY}"
//	  signing_secret: "${TAPSPEAK_SIGNING_SECRET}"
//
// Symbol search:
//
//	symbols:
//	  endpoint: "https://symbols.tapspeak.app"
//	  page_size: 24
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/tapspeak/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
