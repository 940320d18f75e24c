// Package config provides configuration management for Pacer.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PACER_SECTION_FIELD.
// For example:
//
//   - PACER_PROVIDER_BASE_URL overrides provider.base_url
//   - PACER_PROVIDER_API_KEY overrides provider.api_key
//   - PACER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// The limits section supports hot reload: a Watcher observes the
// configuration file and invokes a callback with the freshly loaded
// configuration after a debounce interval. Only limiter settings are safe to
// change at runtime; the rest of the configuration is applied at startup.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	provider:
//	  base_url: "https://a.klaviyo.com/api"
//	  api_key: "${PROVIDER_API_KEY}"
//
//	limits:
//	  global:
//	    burst: 50
//	    per_minute: 1000
//	  endpoints:
//	    profiles:
//	      burst: 10
//	      per_minute: 150
//	    events:
//	      burst: 75
//	      per_minute: 700
//
//	persistence:
//	  enabled: true
//	  backend: "sqlite"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
