// Command pickemctl runs pick'em admin tasks against the configured store.
//
// Usage:
//
//	pickemctl window --at 2026-10-17T12:00:00Z
//	pickemctl window reset
//	pickemctl fixtures import
//	pickemctl results ingest
//	pickemctl leaderboard
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/nfl-pickem/internal/app"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
	"github.com/spf13/cobra"
)

const localLayout = "Mon 02 Jan 15:04"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pickemctl",
		Short:         "NFL pick'em admin CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(windowCmd())
	root.AddCommand(fixturesCmd())
	root.AddCommand(resultsCmd())
	root.AddCommand(leaderboardCmd())
	return root
}

func windowCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the pick window for a clock time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			now := time.Now()
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}
			printWindow(cmd.OutOrStdout(), window.Compute(now, cfg.Location), cfg.Location)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "RFC3339 clock time (defaults to now)")

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Recompute and store the active window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				w, err := c.Windows.Reset(ctx)
				if err != nil {
					return err
				}
				printWindow(cmd.OutOrStdout(), w, c.Windows.Rules().Location)
				return nil
			})
		},
	})
	return cmd
}

func fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Manage the fixture slate",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "Import fixtures with spreads from the odds provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				report, err := c.Fixtures.Import(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "fetched=%d saved=%d skipped=%d\n", report.Fetched, report.Saved, report.Skipped)
				printWindow(cmd.OutOrStdout(), report.Window, c.Windows.Rules().Location)
				return nil
			})
		},
	})
	return cmd
}

func resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Manage game results",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ingest",
		Short: "Ingest final scores for the active window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				report, err := c.Ingestion.IngestActiveWindow(ctx)
				if err != nil {
					return err
				}
				printIngestReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	})
	return cmd
}

func leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the season leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				rows, err := c.Leaderboard.Leaderboard(ctx)
				if err != nil {
					return err
				}
				return printLeaderboard(cmd.OutOrStdout(), rows)
			})
		},
	}
}

func withContainer(fn func(ctx context.Context, c *app.Container) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// CLI runs never seed; they act on whatever the store holds.
	cfg.SeedFixtures = false

	logger := logging.New(cfg.LogLevel, os.Stderr).Named("pickemctl")
	defer func() { _ = logger.Sync() }()

	c, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() { _ = c.Close() }()

	return fn(ctx, c)
}

func printWindow(w io.Writer, win window.Window, loc *time.Location) {
	year, week := win.ISOWeek(loc)
	fmt.Fprintf(w, "window %04d-W%02d (%s)\n", year, week, loc)
	fmt.Fprintf(w, "  start %s  %s\n", win.Start.UTC().Format(time.RFC3339), win.Start.In(loc).Format(localLayout))
	fmt.Fprintf(w, "  end   %s  %s\n", win.End.UTC().Format(time.RFC3339), win.End.In(loc).Format(localLayout))
	fmt.Fprintf(w, "  hours %.0f\n", win.Duration().Hours())
}

func printIngestReport(w io.Writer, report usecase.IngestReport) {
	fmt.Fprintf(w, "week=%s days=%d fetched=%d saved=%d\n", report.Week, report.Days, report.Fetched, report.Saved)
	for _, day := range report.FailedDays {
		fmt.Fprintf(w, "  failed %s: %s\n", day.Date, day.Error)
	}
	fmt.Fprintf(w, "ambiguous=%d unmatched=%d\n", len(report.Ambiguous), len(report.Unmatched))
}

func printLeaderboard(w io.Writer, rows []usecase.LeaderboardRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tPTS\tW\tP\tL")
	for i, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n", i+1, row.DisplayName, row.Points, row.Wins, row.Pushes, row.Losses)
	}
	return tw.Flush()
}
