package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// ${VAR} expansion for the API key so secrets stay out of the file.
	cfg.Provider.APIKey = os.ExpandEnv(cfg.Provider.APIKey)

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PACER_SECTION_FIELD (e.g., PACER_PROVIDER_BASE_URL) and always
// take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format PACER_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Provider overrides
	if val := os.Getenv("PACER_PROVIDER_BASE_URL"); val != "" {
		cfg.Provider.BaseURL = val
	}
	if val := os.Getenv("PACER_PROVIDER_API_KEY"); val != "" {
		cfg.Provider.APIKey = val
	}
	if val := os.Getenv("PACER_PROVIDER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Provider.Timeout = d
		}
	}

	// Limits overrides
	if val := os.Getenv("PACER_LIMITS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Limits.Watch = b
		}
	}

	// Execution overrides
	if val := os.Getenv("PACER_EXECUTION_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Execution.MaxRetries = i
		}
	}
	if val := os.Getenv("PACER_EXECUTION_MAX_RETRY_AFTER"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Execution.MaxRetryAfter = d
		}
	}

	// Persistence overrides
	if val := os.Getenv("PACER_PERSISTENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Persistence.Enabled = b
		}
	}
	if val := os.Getenv("PACER_PERSISTENCE_BACKEND"); val != "" {
		cfg.Persistence.Backend = val
	}
	if val := os.Getenv("PACER_PERSISTENCE_SQLITE_PATH"); val != "" {
		cfg.Persistence.SQLite.Path = val
	}
	if val := os.Getenv("PACER_PERSISTENCE_CLEANUP_AFTER"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Persistence.CleanupAfter = d
		}
	}

	// Diagnostics overrides
	if val := os.Getenv("PACER_DIAGNOSTICS_REPORT_SCHEDULE"); val != "" {
		cfg.Diagnostics.ReportSchedule = val
	}
	if val := os.Getenv("PACER_DIAGNOSTICS_SUMMARY_ON_EXIT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Diagnostics.SummaryOnExit = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("PACER_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PACER_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PACER_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("PACER_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("PACER_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
