package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	postgres "github.com/heartmarshall/couplefine/internal/adapter/postgres"
)

// NewMigrateCommand creates the migrate command group.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), rootOpts, func(ctx context.Context, p *goose.Provider) error {
				results, err := p.Up(ctx)
				printResults(cmd.OutOrStdout(), results)
				if err != nil {
					return WrapExitError(ExitFailure, "migrate up", err)
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), rootOpts, func(ctx context.Context, p *goose.Provider) error {
				res, err := p.Down(ctx)
				if res != nil {
					printResults(cmd.OutOrStdout(), []*goose.MigrationResult{res})
				}
				if err != nil {
					return WrapExitError(ExitFailure, "migrate down", err)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), rootOpts, func(ctx context.Context, p *goose.Provider) error {
				statuses, err := p.Status(ctx)
				if err != nil {
					return WrapExitError(ExitCommandError, "migrate status", err)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tSOURCE")
				for _, st := range statuses {
					applied := "-"
					if !st.AppliedAt.IsZero() {
						applied = st.AppliedAt.UTC().Format(time.RFC3339)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
				}
				return w.Flush()
			})
		},
	})

	return cmd
}

func withMigrator(ctx context.Context, rootOpts *RootOptions, fn func(context.Context, *goose.Provider) error) error {
	cfg, _, err := rootOpts.load()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "connect to database", err)
	}
	defer pool.Close()

	provider, db, err := postgres.NewMigrator(pool)
	if err != nil {
		return WrapExitError(ExitCommandError, "open migrator", err)
	}
	defer db.Close()

	return fn(ctx, provider)
}

func printResults(out io.Writer, results []*goose.MigrationResult) {
	for _, r := range results {
		status := "OK"
		if r.Error != nil {
			status = "FAILED: " + r.Error.Error()
		}
		fmt.Fprintf(out, "%-4s %s (%s) %s\n", r.Direction, r.Source.Path, r.Duration.Round(time.Millisecond), status)
	}
}
