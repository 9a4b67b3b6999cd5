package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coderunr/judge/internal/types"
)

// NewRuntimesCommand lists the detected toolchains
func NewRuntimesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runtimes",
		Aliases: []string{"ls", "list"},
		Short:   "List supported languages and their detected toolchains",
		Long: `List the supported languages with the toolchain version found for each.

Examples:
  # Ask a running server
  judgectl runtimes

  # Probe the toolchains on this machine
  judgectl runtimes --local -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			runtimes, err := client.Runtimes(cmd.Context())
			if err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			printRuntimeList(cmd.OutOrStdout(), runtimes, verbose)
			return nil
		},
	}

	return cmd
}

func printRuntimeList(out io.Writer, runtimes []types.RuntimeInfo, verbose bool) {
	if len(runtimes) == 0 {
		fmt.Fprintln(out, "No runtimes available")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if verbose {
		fmt.Fprintln(w, "LANGUAGE\tVERSION\tSTATUS\tALIASES\tBINARIES")
	} else {
		fmt.Fprintln(w, "LANGUAGE\tVERSION\tSTATUS")
	}

	available := 0
	for _, rt := range runtimes {
		version := rt.Version
		if version == "" {
			version = "-"
		}
		status := red.Sprint("missing")
		if rt.Available {
			status = green.Sprint("ok")
			available++
		}

		if verbose {
			aliases := strings.Join(rt.Aliases, ", ")
			if aliases == "" {
				aliases = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rt.Language, version, status, aliases, strings.Join(rt.Binaries, ", "))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", rt.Language, version, status)
		}
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d of %d runtimes available\n", available, len(runtimes))
}
