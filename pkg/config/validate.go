package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "limits.endpoints.profiles.burst").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProvider(&cfg.Provider)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateExecution(&cfg.Execution)...)
	errs = append(errs, validatePersistence(&cfg.Persistence)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProvider validates the provider section.
func validateProvider(cfg *ProviderConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "provider.base_url",
				Message: "must be a valid absolute URL",
			})
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "provider.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

// validateLimits validates the limits section, including every named endpoint.
func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEndpointLimit("limits.default", cfg.Default)...)

	if cfg.Global != nil {
		errs = append(errs, validateEndpointLimit("limits.global", *cfg.Global)...)
	}

	for name, limit := range cfg.Endpoints {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, FieldError{
				Field:   "limits.endpoints",
				Message: "endpoint name must not be empty",
			})
			continue
		}
		errs = append(errs, validateEndpointLimit("limits.endpoints."+name, limit)...)
	}

	return errs
}

// validateEndpointLimit validates one endpoint's constraints.
func validateEndpointLimit(field string, limit EndpointLimit) []FieldError {
	var errs []FieldError

	if limit.Burst < 0 {
		errs = append(errs, FieldError{
			Field:   field + ".burst",
			Message: "burst must be non-negative",
		})
	}
	if limit.PerMinute < 0 {
		errs = append(errs, FieldError{
			Field:   field + ".per_minute",
			Message: "per_minute must be non-negative",
		})
	}
	if limit.MinInterval < 0 {
		errs = append(errs, FieldError{
			Field:   field + ".min_interval",
			Message: "min_interval must be non-negative",
		})
	}

	return errs
}

// validateExecution validates the execution section.
func validateExecution(cfg *ExecutionConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxRetries < 1 {
		errs = append(errs, FieldError{
			Field:   "execution.max_retries",
			Message: "max_retries must be at least 1",
		})
	}
	if cfg.MaxRetryAfter < 0 {
		errs = append(errs, FieldError{
			Field:   "execution.max_retry_after",
			Message: "max_retry_after must be non-negative",
		})
	}

	return errs
}

// validatePersistence validates the persistence section.
func validatePersistence(cfg *PersistenceConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "persistence.backend",
			Message: fmt.Sprintf("unknown backend %q (must be \"sqlite\" or \"memory\")", cfg.Backend),
		})
	}

	if cfg.Enabled && cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "persistence.sqlite.path",
			Message: "path is required when the sqlite backend is enabled",
		})
	}
	if cfg.CleanupAfter < 0 {
		errs = append(errs, FieldError{
			Field:   "persistence.cleanup_after",
			Message: "cleanup_after must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates the telemetry section.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (must be json, text, or console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.listen_address",
			Message: "listen address is required when metrics are enabled",
		})
	}

	return errs
}
