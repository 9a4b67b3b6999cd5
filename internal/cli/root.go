package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles judgectl
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "judgectl",
		Short:         "judgectl - run and validate solutions against the judge",
		Long:          `A command line interface for the judge execution core.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	root.PersistentFlags().StringP("url", "u", "http://localhost:2000", "Judge API URL")
	root.PersistentFlags().Bool("local", false, "Run the judge core in-process instead of calling a server")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		NewExecuteCommand(),
		NewValidateCommand(),
		NewRuntimesCommand(),
		NewVersionCommand(version),
	)
	return root
}
