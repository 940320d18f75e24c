// Package logging provides structured logging for Pacer, built on log/slog.
//
// Loggers are configured with a level ("debug", "info", "warn", "error") and
// a format ("json", "text", "console"). The json format is intended for
// production; console is text aimed at a human watching a terminal.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "debug", Format: "console"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
package logging
