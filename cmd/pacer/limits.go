package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"flightpath-hq/pacer/pkg/cli"
	"flightpath-hq/pacer/pkg/config"
	"flightpath-hq/pacer/pkg/quota"
	"flightpath-hq/pacer/pkg/quota/storage"
)

var limitsFlags struct {
	output string
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show configured and discovered endpoint limits",
	Long: `Show the configured admission limits for each endpoint, merged with the
quota tiers and numeric limits discovered from provider responses and
persisted across runs.

Examples:
  # Show limits as a table
  pacer limits

  # Show limits as JSON
  pacer limits --output json`,
	RunE: runLimits,
}

func init() {
	rootCmd.AddCommand(limitsCmd)

	limitsCmd.Flags().StringVarP(&limitsFlags.output, "output", "o", "text", "output format (text, json)")
}

// endpointLimitRow is one endpoint's merged view of configured and
// discovered limits.
type endpointLimitRow struct {
	Endpoint    string        `json:"endpoint"`
	Burst       int           `json:"burst"`
	PerMinute   int           `json:"per_minute"`
	MinInterval time.Duration `json:"min_interval"`
	Tier        string        `json:"tier,omitempty"`
	Limit       *int64        `json:"discovered_limit,omitempty"`
	LastUpdated *time.Time    `json:"last_updated,omitempty"`
}

func runLimits(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	records, err := loadPersistedRecords(cmd.Context(), cfg)
	if err != nil {
		return cli.NewCommandError("limits", err)
	}

	rows := mergeLimitRows(cfg, records)

	switch cli.OutputFormat(limitsFlags.output) {
	case cli.FormatJSON:
		formatter := &cli.JSONFormatter{Indent: true}
		return formatter.FormatTo(os.Stdout, rows)
	case cli.FormatText:
		printLimitTable(rows)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", limitsFlags.output)
	}
}

// loadPersistedRecords loads quota records from the configured store, or
// returns nil when persistence is disabled.
func loadPersistedRecords(ctx context.Context, cfg *config.Config) (map[string]quota.Record, error) {
	if !cfg.Persistence.Enabled {
		return nil, nil
	}

	var backend storage.Backend
	var err error
	switch cfg.Persistence.Backend {
	case "sqlite":
		backend, err = storage.NewSQLiteBackend(cfg.Persistence.SQLite.Path)
	case "memory":
		backend = storage.NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported persistence backend: %s", cfg.Persistence.Backend)
	}
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	return backend.LoadAll(ctx)
}

// mergeLimitRows joins configured endpoint limits with persisted quota
// discoveries into sorted display rows.
func mergeLimitRows(cfg *config.Config, records map[string]quota.Record) []endpointLimitRow {
	names := make(map[string]struct{}, len(cfg.Limits.Endpoints)+len(records))
	for name := range cfg.Limits.Endpoints {
		names[name] = struct{}{}
	}
	for name := range records {
		names[name] = struct{}{}
	}

	rows := make([]endpointLimitRow, 0, len(names))
	for name := range names {
		limit, configured := cfg.Limits.Endpoints[name]
		if !configured {
			limit = cfg.Limits.Default
		}

		row := endpointLimitRow{
			Endpoint:    name,
			Burst:       limit.Burst,
			PerMinute:   limit.PerMinute,
			MinInterval: limit.MinInterval,
		}
		if record, ok := records[name]; ok {
			row.Tier = string(record.Tier)
			row.Limit = record.Limit
			if !record.Discovered.IsZero() {
				t := record.Discovered
				row.LastUpdated = &t
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Endpoint < rows[j].Endpoint })
	return rows
}

func printLimitTable(rows []endpointLimitRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tBURST\tPER-MINUTE\tMIN-INTERVAL\tTIER\tDISCOVERED\tUPDATED")
	for _, row := range rows {
		tier := row.Tier
		if tier == "" {
			tier = "-"
		}
		discovered := "-"
		if row.Limit != nil {
			discovered = fmt.Sprintf("%d/min", *row.Limit)
		}
		updated := "-"
		if row.LastUpdated != nil {
			updated = row.LastUpdated.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			row.Endpoint, row.Burst, row.PerMinute, row.MinInterval, tier, discovered, updated)
	}
	w.Flush()
}
