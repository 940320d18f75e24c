// Package telemetry provides observability for Pacer.
//
// # Components
//
//   - logging: Structured logging built on log/slog
//   - diag: Per-endpoint call diagnostics and scheduled summary reports
//
// # Usage
//
//	// Initialize logging from configuration
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	slog.SetDefault(logger.Slog())
//
//	// Record call outcomes
//	rec := diag.NewRecorder()
//	rec.RecordOK("profiles")
//	rec.LogSummary(logger.Slog())
package telemetry
