// Package cli implements the couplefine command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/couplefine/internal/app"
	"github.com/heartmarshall/couplefine/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the couplefine root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "couplefine",
		Short:         "Couple fine tracker server and tools",
		Long:          "couplefine runs the couple fine tracker API and its maintenance jobs,\nand includes a terminal client for watching a couple's data live.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config (default $CONFIG_PATH or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCleanupTokensCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// load reads the server configuration and builds the logger.
func (o *RootOptions) load() (*config.Config, *slog.Logger, error) {
	load := config.Load
	if o.ConfigPath != "" {
		load = func() (*config.Config, error) { return config.LoadFile(o.ConfigPath) }
	}
	cfg, err := load()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	return cfg, app.NewLogger(cfg.Log), nil
}
