package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/connerohnesorge/litebind"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "litebind %s (engine %s, SQLite %s)\n",
				litebind.Version, a.binding.EngineName(), a.binding.EngineVersion())
			return nil
		},
	}
}
