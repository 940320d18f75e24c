package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfigFile writes YAML content to a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// ============================================================================
// Loading
// ============================================================================

func TestLoadConfig_Minimal(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  base_url: "https://api.example.com/v1"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Provider.BaseURL != "https://api.example.com/v1" {
		t.Errorf("base_url = %q", cfg.Provider.BaseURL)
	}
	// Defaults filled in.
	if cfg.Provider.Timeout != DefaultProviderTimeout {
		t.Errorf("timeout = %v, want default %v", cfg.Provider.Timeout, DefaultProviderTimeout)
	}
	if cfg.Execution.MaxRetries != DefaultMaxRetries {
		t.Errorf("max_retries = %d, want default %d", cfg.Execution.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Telemetry.Logging.Level != DefaultLogLevel {
		t.Errorf("logging level = %q, want default %q", cfg.Telemetry.Logging.Level, DefaultLogLevel)
	}
	if cfg.Persistence.Backend != DefaultPersistenceBackend {
		t.Errorf("backend = %q, want default %q", cfg.Persistence.Backend, DefaultPersistenceBackend)
	}
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  base_url: "https://api.example.com/v1"
  api_key: "secret"
  timeout: 10s

limits:
  watch: true
  global:
    burst: 50
    per_minute: 1000
  default:
    burst: 5
    per_minute: 100
  endpoints:
    profiles:
      burst: 10
      per_minute: 150
      min_interval: 100ms
    events:
      burst: 75
      per_minute: 700

execution:
  max_retries: 5
  max_retry_after: 2m

persistence:
  enabled: true
  backend: sqlite
  sqlite:
    path: /tmp/pacer.db
  cleanup_after: 168h

diagnostics:
  report_schedule: "*/5 * * * *"
  summary_on_exit: true

telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true
    listen_address: "127.0.0.1:9100"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Provider.Timeout != 10*time.Second {
		t.Errorf("provider timeout = %v", cfg.Provider.Timeout)
	}
	if cfg.Limits.Global == nil || cfg.Limits.Global.Burst != 50 {
		t.Errorf("global limit = %+v", cfg.Limits.Global)
	}
	if !cfg.Limits.Watch {
		t.Error("watch not set")
	}
	profiles := cfg.Limits.Endpoints["profiles"]
	if profiles.Burst != 10 || profiles.PerMinute != 150 || profiles.MinInterval != 100*time.Millisecond {
		t.Errorf("profiles limit = %+v", profiles)
	}
	if cfg.Execution.MaxRetries != 5 || cfg.Execution.MaxRetryAfter != 2*time.Minute {
		t.Errorf("execution = %+v", cfg.Execution)
	}
	if cfg.Persistence.SQLite.Path != "/tmp/pacer.db" {
		t.Errorf("sqlite path = %q", cfg.Persistence.SQLite.Path)
	}
	if cfg.Diagnostics.ReportSchedule != "*/5 * * * *" || !cfg.Diagnostics.SummaryOnExit {
		t.Errorf("diagnostics = %+v", cfg.Diagnostics)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "provider: [\n")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("error = %v, want parse failure", err)
	}
}

func TestLoadConfig_APIKeyExpansion(t *testing.T) {
	t.Setenv("TEST_PACER_KEY", "expanded-secret")
	path := writeConfigFile(t, `
provider:
  api_key: "${TEST_PACER_KEY}"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Provider.APIKey != "expanded-secret" {
		t.Errorf("api_key = %q, want expanded value", cfg.Provider.APIKey)
	}
}

// ============================================================================
// Environment overrides
// ============================================================================

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("PACER_PROVIDER_BASE_URL", "https://override.example.com")
	t.Setenv("PACER_EXECUTION_MAX_RETRIES", "7")
	t.Setenv("PACER_EXECUTION_MAX_RETRY_AFTER", "90s")
	t.Setenv("PACER_PERSISTENCE_BACKEND", "memory")
	t.Setenv("PACER_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("PACER_LIMITS_WATCH", "true")

	path := writeConfigFile(t, `
provider:
  base_url: "https://file.example.com"
execution:
  max_retries: 3
`)

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Provider.BaseURL != "https://override.example.com" {
		t.Errorf("base_url = %q, want env override", cfg.Provider.BaseURL)
	}
	if cfg.Execution.MaxRetries != 7 {
		t.Errorf("max_retries = %d, want 7", cfg.Execution.MaxRetries)
	}
	if cfg.Execution.MaxRetryAfter != 90*time.Second {
		t.Errorf("max_retry_after = %v, want 90s", cfg.Execution.MaxRetryAfter)
	}
	if cfg.Persistence.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.Persistence.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Limits.Watch {
		t.Error("watch override not applied")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverrideRejected(t *testing.T) {
	t.Setenv("PACER_TELEMETRY_LOGGING_LEVEL", "loud")

	path := writeConfigFile(t, `
provider:
  base_url: "https://api.example.com"
`)

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation failure for invalid level override")
	}
}
