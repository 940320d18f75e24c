package config

import "time"

// Default values applied to fields left unset in the YAML file.
const (
	DefaultProviderTimeout = 30 * time.Second

	DefaultBurst       = 3
	DefaultPerMinute   = 60
	DefaultGlobalBurst = 50

	DefaultMaxRetries = 30

	DefaultPersistenceBackend = "sqlite"
	DefaultSQLitePath         = "./pacer.db"
	DefaultCleanupAfter       = 30 * 24 * time.Hour

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// ApplyDefaults fills unset fields of a configuration with default values.
// Explicitly set fields are never modified.
func ApplyDefaults(cfg *Config) {
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}

	if cfg.Limits.Default.Burst == 0 {
		cfg.Limits.Default.Burst = DefaultBurst
	}
	if cfg.Limits.Default.PerMinute == 0 {
		cfg.Limits.Default.PerMinute = DefaultPerMinute
	}

	if cfg.Execution.MaxRetries == 0 {
		cfg.Execution.MaxRetries = DefaultMaxRetries
	}

	if cfg.Persistence.Backend == "" {
		cfg.Persistence.Backend = DefaultPersistenceBackend
	}
	if cfg.Persistence.SQLite.Path == "" {
		cfg.Persistence.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Persistence.CleanupAfter == 0 {
		cfg.Persistence.CleanupAfter = DefaultCleanupAfter
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
