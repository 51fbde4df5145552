package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/couplefine/internal/app"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "couplefine %s\n", app.BuildVersion())
			return nil
		},
	}
}
