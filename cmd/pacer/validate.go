package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"flightpath-hq/pacer/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting anything.

Checks YAML syntax, field types, value ranges, and cross-field constraints,
including the effect of any PACER_* environment variable overrides.

Examples:
  # Validate the default config file
  pacer validate

  # Validate a specific file
  pacer validate --config /etc/pacer/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ %s: invalid\n\n", cfgFile)
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s\n", fe.Error())
			}
			return fmt.Errorf("%d validation error(s)", len(verr.Errors))
		}
		return err
	}

	fmt.Printf("✓ %s: valid\n", cfgFile)
	if verbose {
		fmt.Printf("  endpoints configured: %d\n", len(cfg.Limits.Endpoints))
		fmt.Printf("  persistence: %s (enabled=%t)\n", cfg.Persistence.Backend, cfg.Persistence.Enabled)
		fmt.Printf("  logging: %s/%s\n", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
	return nil
}
