package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"flightpath-hq/pacer/pkg/cli"
	"flightpath-hq/pacer/pkg/config"
	"flightpath-hq/pacer/pkg/exec"
	"flightpath-hq/pacer/pkg/limits"
	"flightpath-hq/pacer/pkg/limits/ratelimit"
	"flightpath-hq/pacer/pkg/quota"
	"flightpath-hq/pacer/pkg/quota/storage"
	"flightpath-hq/pacer/pkg/telemetry/diag"
	"flightpath-hq/pacer/pkg/telemetry/logging"
)

var callFlags struct {
	method   string
	body     string
	logLevel string
}

var callCmd = &cobra.Command{
	Use:   "call <endpoint> <path>",
	Short: "Perform a single paced request against the provider",
	Long: `Perform one request against the configured provider, going through the
full pacing pipeline: admission limiters, limit discovery from response
headers, quota persistence, and retry orchestration.

The endpoint argument selects the limiter and diagnostics key; the path is
appended to the configured provider base URL.

Examples:
  # GET through the profiles limiter
  pacer call profiles /api/profiles

  # POST with a body
  pacer call events /api/events --method POST --body '{"type":"signup"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&callFlags.method, "method", "X", http.MethodGet, "HTTP method")
	callCmd.Flags().StringVar(&callFlags.body, "body", "", "request body")
	callCmd.Flags().StringVar(&callFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runCall(cmd *cobra.Command, args []string) error {
	endpoint, path := args[0], args[1]

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if cfg.Provider.BaseURL == "" {
		return cli.NewConfigError("provider.base_url", "base URL is required for call")
	}

	// Flag overrides
	if callFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = callFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	ctx := cli.SetupSignalHandler()

	// Metrics endpoint (optional)
	var metrics *limits.Metrics
	if cfg.Telemetry.Metrics.Enabled {
		metrics = limits.NewMetrics()
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Telemetry.Metrics.ListenAddress, mux); err != nil {
				slog.Warn("metrics listener stopped", "error", err)
			}
		}()
	}

	// Limiter registry
	registry := limits.NewRegistry(registryConfig(cfg))

	// Hot reload of the limits section
	if cfg.Limits.Watch {
		watcher, err := config.NewWatcher(cfgFile, nil)
		if err != nil {
			return cli.NewCommandError("call", err)
		}
		go func() {
			err := watcher.Watch(ctx, func(updated *config.Config) {
				registry.ApplyConfig(registryConfig(updated))
			})
			if err != nil {
				slog.Warn("configuration watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	// Quota tracking with optional persistence
	tracker := quota.NewTracker()
	var store storage.Backend
	if cfg.Persistence.Enabled {
		store, err = openStorage(cfg)
		if err != nil {
			return cli.NewCommandError("call", err)
		}
		defer store.Close()

		if cfg.Persistence.CleanupAfter > 0 {
			cutoff := time.Now().Add(-cfg.Persistence.CleanupAfter)
			if n, err := store.Cleanup(ctx, cutoff); err != nil {
				slog.Warn("quota record cleanup failed", "error", err)
			} else if n > 0 {
				slog.Debug("stale quota records removed", "count", n)
			}
		}

		records, err := store.LoadAll(ctx)
		if err != nil {
			slog.Warn("failed to load persisted quota records", "error", err)
		} else {
			for name, record := range records {
				tracker.Restore(name, record)
			}
			registry.SeedFromRecords(records)
			slog.Debug("quota records restored", "count", len(records))
		}
	}

	// Diagnostics with optional scheduled reports
	recorder := diag.NewRecorder()
	if cfg.Diagnostics.ReportSchedule != "" {
		scheduler := diag.NewScheduler(recorder, cfg.Diagnostics.ReportSchedule)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewConfigError("diagnostics.report_schedule", err.Error())
		}
		defer scheduler.Stop()
	}
	if cfg.Diagnostics.SummaryOnExit {
		defer recorder.LogSummary(slog.Default())
	}

	executor := exec.New(exec.Config{
		Global:  registry.Global(),
		Tracker: tracker,
		Diag:    recorder,
		Store:   store,
		Metrics: metrics,
	})

	// The request itself
	client := &http.Client{Timeout: cfg.Provider.Timeout}
	url := strings.TrimRight(cfg.Provider.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")

	fn := func(ctx context.Context) (*http.Response, error) {
		var body io.Reader
		if callFlags.body != "" {
			body = strings.NewReader(callFlags.body)
		}
		req, err := http.NewRequestWithContext(ctx, strings.ToUpper(callFlags.method), url, body)
		if err != nil {
			return nil, err
		}
		if cfg.Provider.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.Provider.APIKey)
		}
		if callFlags.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		return client.Do(req)
	}

	var opts []exec.CallOption
	if cfg.Execution.MaxRetries > 0 {
		opts = append(opts, exec.WithMaxRetries(cfg.Execution.MaxRetries))
	}
	if cfg.Execution.MaxRetryAfter > 0 {
		opts = append(opts, exec.WithMaxRetryAfter(cfg.Execution.MaxRetryAfter))
	}

	resp, err := executor.Execute(ctx, registry.Get(endpoint), fn,
		fmt.Sprintf("%s %s %s", endpoint, callFlags.method, path), opts...)
	if err != nil {
		return cli.NewEndpointError("call", endpoint, err)
	}
	defer resp.Body.Close()

	fmt.Printf("%s %s\n", resp.Proto, resp.Status)
	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		return cli.NewEndpointError("call", endpoint, err)
	}
	fmt.Println()
	return nil
}

// registryConfig converts the configuration's limits section into the
// registry's form.
func registryConfig(cfg *config.Config) limits.Config {
	out := limits.Config{
		Endpoints: make(map[string]ratelimit.Config, len(cfg.Limits.Endpoints)),
		Default:   endpointConfig(cfg.Limits.Default),
	}
	for name, limit := range cfg.Limits.Endpoints {
		out.Endpoints[name] = endpointConfig(limit)
	}
	if cfg.Limits.Global != nil {
		global := endpointConfig(*cfg.Limits.Global)
		out.Global = &global
	}
	return out
}

func endpointConfig(limit config.EndpointLimit) ratelimit.Config {
	return ratelimit.Config{
		Burst:       limit.Burst,
		PerMinute:   limit.PerMinute,
		MinInterval: limit.MinInterval,
	}
}

// openStorage opens the configured quota persistence backend.
func openStorage(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Persistence.Backend {
	case "sqlite":
		return storage.NewSQLiteBackend(cfg.Persistence.SQLite.Path)
	case "memory":
		return storage.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence backend: %s", cfg.Persistence.Backend)
	}
}
