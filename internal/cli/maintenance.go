package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/couplefine/internal/app"
	"github.com/heartmarshall/couplefine/internal/config"
)

// NewCleanupTokensCommand creates the cleanup-tokens command.
func NewCleanupTokensCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-tokens",
		Short: "Delete expired and revoked refresh tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := openServer(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer srv.Close()

			n, err := srv.CleanupTokens(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "cleanup tokens", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired/revoked refresh tokens.\n", n)
			return nil
		},
	}
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check every active couple's balance against its violations",
		Long: `Check every active couple's stored balance against the sum of its violations,
and look for violations that reference another couple's rules.

Exit codes:
  0 - all couples consistent
  1 - at least one discrepancy found
  2 - command error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := openServer(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer srv.Close()

			bad, err := srv.Reconcile(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "reconcile", err)
			}

			out := cmd.OutOrStdout()
			if len(bad) == 0 {
				fmt.Fprintln(out, "All couples consistent.")
				return nil
			}
			for _, r := range bad {
				fmt.Fprintf(out, "couple %s: stored=%d computed=%d foreign_rule_refs=%d duplicate_ids=%d\n",
					r.CoupleID, r.StoredBalance, r.ComputedBalance, len(r.ForeignRuleRefs), len(r.DuplicateIDs))
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d couple(s) inconsistent", len(bad)))
		},
	}
}

// openServer builds the server components for one-shot jobs. The realtime
// hub and HTTP listener are not started.
func openServer(cmd *cobra.Command, rootOpts *RootOptions) (*app.Server, error) {
	cfg, logger, err := rootOpts.load()
	if err != nil {
		return nil, err
	}
	cfg.Realtime.Broker = config.BrokerMemory

	srv, err := app.NewServer(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "connect", err)
	}
	logger.Debug("maintenance job", slog.String("command", cmd.Name()))
	return srv, nil
}
