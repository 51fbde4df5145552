package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/couplefine/internal/app"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and realtime server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			logger.Info("starting couplefine",
				slog.String("version", app.BuildVersion()),
				slog.String("broker", cfg.Realtime.Broker),
			)

			srv, err := app.NewServer(cmd.Context(), cfg, logger)
			if err != nil {
				return WrapExitError(ExitCommandError, "start server", err)
			}
			defer srv.Close()

			if err := srv.Run(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "server stopped", err)
			}
			return nil
		},
	}
}
