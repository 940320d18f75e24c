package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pacer",
	Short: "Pacer - outbound rate-limit pacing for HTTP APIs",
	Long: `Pacer is an outbound rate-limiting and retry orchestration layer for
calling rate-limited HTTP APIs from many concurrent workers.

It provides:
  - Per-endpoint windowed admission (burst, per-minute, minimum spacing)
  - Limit discovery from provider response headers
  - Quota tier tracking with persistence across restarts
  - Retry-After and exponential-backoff retry orchestration
  - Per-endpoint call diagnostics and Prometheus metrics`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
