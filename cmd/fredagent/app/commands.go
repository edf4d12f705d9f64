package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/enjojoy/fredagent/internal/server"
	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/constants"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/fred"
)

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	cfg := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve starts the HTTP API for economic data queries.

The API exposes synchronous queries (POST /api/v1/query), asynchronous
jobs (POST /api/v1/jobs), FRED series search and lookup, and the agent
metadata endpoints (availability, input_schema).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ag, err := a.Agent()
			if err != nil {
				return err
			}
			fredClient, err := a.FREDClient()
			if err != nil {
				return err
			}

			srv := server.New(ag, fredClient, cfg, a.logger)
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "host to bind to")
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	cmd.Flags().StringVar(&cfg.PathPrefix, "prefix", cfg.PathPrefix, "API path prefix")
	cmd.Flags().BoolVar(&cfg.CORSEnabled, "cors", cfg.CORSEnabled, "enable CORS")
	cmd.Flags().StringSliceVar(&cfg.CORSOrigins, "cors-origins", cfg.CORSOrigins, "allowed CORS origins (empty allows all)")
	cmd.Flags().BoolVar(&cfg.AuthEnabled, "auth", cfg.AuthEnabled, "require an API key (SERVICE_API_KEY)")
	cmd.Flags().IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per minute per IP (0 to disable)")
	cmd.Flags().DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "TTL for cached FRED lookups")
	cmd.Flags().DurationVar(&cfg.JobTTL, "job-ttl", cfg.JobTTL, "how long finished jobs are kept")
	cmd.Flags().DurationVar(&cfg.QueryTimeout, "query-timeout", cfg.QueryTimeout, "timeout for a single query pipeline run")
	cmd.Flags().BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "expose prometheus metrics at /metrics")

	return cmd
}

// NewQueryCommand creates the query command.
func (a *App) NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Answer an economic data question",
		Long: `Query runs the full pipeline once: search FRED for relevant series,
retrieve and analyze their observations, and generate a report.

Examples:
  fredagent query "What is the current unemployment rate?"
  fredagent query "Show me GDP growth data for 2023" --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, err := a.Agent()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.QueryTimeout)
			defer cancel()

			report, err := ag.Process(ctx, args[0])
			if err != nil {
				return err
			}

			return a.printReport(cmd, report)
		},
	}

	return cmd
}

// NewSearchCommand creates the search command.
func (a *App) NewSearchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search FRED for data series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fredClient, err := a.FREDClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.DefaultHTTPTimeout)
			defer cancel()

			matches, err := fredClient.SearchSeries(ctx, args[0], limit)
			if err != nil {
				return err
			}

			switch a.config.Format {
			case "json":
				return printJSON(cmd, matches)
			case "yaml":
				return printYAML(cmd, matches)
			default:
				if len(matches) == 0 {
					cmd.Println("No series found")
					return nil
				}
				for _, m := range matches {
					cmd.Printf("%-20s %s (%s, %s)\n", m.ID, m.Title, m.Units, m.Frequency)
				}
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultSearchLimit, "maximum number of results")

	return cmd
}

// NewSeriesCommand creates the series command.
func (a *App) NewSeriesCommand() *cobra.Command {
	var years int

	cmd := &cobra.Command{
		Use:   "series <id>",
		Short: "Show a FRED series with computed statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fredClient, err := a.FREDClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.DefaultHTTPTimeout)
			defer cancel()

			info, err := fredClient.SeriesInfo(ctx, args[0])
			if err != nil {
				return err
			}

			start := time.Now().UTC().AddDate(-years, 0, 0)
			observations, err := fredClient.Observations(ctx, info.ID, fred.ObservationOptions{
				Start:     start,
				SortOrder: "asc",
			})
			if err != nil && !errors.IsNotFound(err) {
				return err
			}

			stats := analysis.Compute(observations)

			switch a.config.Format {
			case "json":
				return printJSON(cmd, map[string]any{"series": info, "stats": stats})
			case "yaml":
				return printYAML(cmd, map[string]any{"series": info, "stats": stats})
			default:
				cmd.Printf("%s: %s\n", info.ID, info.Title)
				cmd.Printf("  Units:     %s\n", info.Units)
				cmd.Printf("  Frequency: %s\n", info.Frequency)
				cmd.Printf("  Link:      %s\n", info.Link())
				if stats.Latest != nil {
					cmd.Printf("  Latest:    %s on %s\n",
						analysis.FormatValue(stats.Latest.Value),
						stats.Latest.Date.Format("2006-01-02"))
				}
				if stats.MoMChange != nil {
					cmd.Printf("  MoM:       %s\n", analysis.FormatChange(*stats.MoMChange))
				}
				if stats.YoYChange != nil {
					cmd.Printf("  YoY:       %s\n", analysis.FormatChange(*stats.YoYChange))
				}
				cmd.Printf("  Trend:     %s over %d observations\n", stats.Trend, stats.Count)
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&years, "years", constants.DefaultObservationYears, "observation lookback window in years")

	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("fredagent %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// printReport writes a report in the configured output format.
func (a *App) printReport(cmd *cobra.Command, report *analysis.Report) error {
	switch a.config.Format {
	case "json":
		return printJSON(cmd, report)
	case "yaml":
		return printYAML(cmd, report)
	case "markdown":
		cmd.Println(report.Markdown())
		return nil
	default:
		cmd.Println(report.Text())
		return nil
	}
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	cmd.Println(string(out))
	return nil
}

// printYAML writes v as YAML.
func printYAML(cmd *cobra.Command, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	cmd.Print(string(out))
	return nil
}
