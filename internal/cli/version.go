package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand prints the CLI version
func NewVersionCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for the judge CLI.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "judgectl %s\n", version)
			fmt.Fprintln(cmd.OutOrStdout(), "Compatible with judge API v2")
		},
	}

	return cmd
}
