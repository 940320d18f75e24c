package config

import "time"

// Config is the root configuration structure for Pacer. It is loaded from
// YAML, filled with defaults, optionally overridden from the environment,
// and validated before use.
type Config struct {
	// Provider configures the upstream API being paced.
	Provider ProviderConfig `yaml:"provider"`

	// Limits configures the admission limiters.
	Limits LimitsConfig `yaml:"limits"`

	// Execution configures the retry loop.
	Execution ExecutionConfig `yaml:"execution"`

	// Persistence configures quota record storage across restarts.
	Persistence PersistenceConfig `yaml:"persistence"`

	// Diagnostics configures periodic call-summary reporting.
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProviderConfig describes the upstream API.
type ProviderConfig struct {
	// BaseURL is the provider API root, e.g. "https://a.klaviyo.com/api".
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates requests to the provider. Supports ${VAR}
	// expansion from the environment.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single HTTP request to the provider.
	Timeout time.Duration `yaml:"timeout"`
}

// EndpointLimit holds the admission constraints for one endpoint.
type EndpointLimit struct {
	// Burst is the maximum number of concurrent in-flight calls.
	Burst int `yaml:"burst"`

	// PerMinute is the maximum number of call starts per sliding minute.
	PerMinute int `yaml:"per_minute"`

	// MinInterval is the minimum spacing between consecutive call starts.
	MinInterval time.Duration `yaml:"min_interval"`
}

// LimitsConfig configures the limiter registry.
type LimitsConfig struct {
	// Global, if set, is an account-wide limiter layered over all
	// endpoints.
	Global *EndpointLimit `yaml:"global"`

	// Default is applied to endpoints not listed under Endpoints.
	Default EndpointLimit `yaml:"default"`

	// Endpoints maps endpoint names to their limits.
	Endpoints map[string]EndpointLimit `yaml:"endpoints"`

	// Watch enables hot reload of this file's limits section.
	Watch bool `yaml:"watch"`
}

// ExecutionConfig configures the retry loop.
type ExecutionConfig struct {
	// MaxRetries is the attempt ceiling per logical call.
	MaxRetries int `yaml:"max_retries"`

	// MaxRetryAfter caps how long a provider-requested wait may be before
	// the call fails fast instead of blocking. Zero accepts any wait.
	MaxRetryAfter time.Duration `yaml:"max_retry_after"`
}

// PersistenceConfig configures quota record storage.
type PersistenceConfig struct {
	// Enabled turns persistence on.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// CleanupAfter drops persisted records older than this age at startup.
	// Zero disables cleanup.
	CleanupAfter time.Duration `yaml:"cleanup_after"`
}

// SQLiteConfig configures the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`
}

// DiagnosticsConfig configures call-summary reporting.
type DiagnosticsConfig struct {
	// ReportSchedule is a cron expression for periodic summary logging.
	// Empty disables scheduled reports.
	ReportSchedule string `yaml:"report_schedule"`

	// SummaryOnExit logs a final summary when the process shuts down.
	SummaryOnExit bool `yaml:"summary_on_exit"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is one of "json", "text", "console".
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics listener on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the metrics HTTP listen address.
	ListenAddress string `yaml:"listen_address"`

	// Path is the metrics HTTP path.
	Path string `yaml:"path"`
}
