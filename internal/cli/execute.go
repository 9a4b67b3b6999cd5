package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coderunr/judge/internal/types"
)

// NewExecuteCommand runs a source file's entry point once
func NewExecuteCommand() *cobra.Command {
	var (
		input          string
		expectedOutput string
		version        string
		timeoutMs      int
	)

	cmd := &cobra.Command{
		Use:     "execute <language> <file>",
		Aliases: []string{"run", "exec"},
		Short:   "Execute the entry point of a source file",
		Long: `Execute the entry point of a source file with JSON arguments.

The input is a JSON value: an array is spread into positional arguments,
anything else is passed as the single argument.

Examples:
  # Call twoSum(nums, target)
  judgectl execute python two_sum.py --input '[[2,7,11,15], 9]'

  # Run in-process without a server
  judgectl execute cpp solution.cpp --input '[[1,2,3]]' --local`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[1])
			if err != nil {
				return err
			}

			request := types.ExecuteRequest{
				Language:   args[0],
				SourceCode: source,
				Version:    version,
			}
			if input != "" {
				request.Input = json.RawMessage(input)
			}
			if expectedOutput != "" {
				request.ExpectedOutput = json.RawMessage(expectedOutput)
			}
			if timeoutMs > 0 {
				request.TimeoutMs = &timeoutMs
			}
			if err := checkJSON("input", request.Input); err != nil {
				return err
			}
			if err := checkJSON("expected-output", request.ExpectedOutput); err != nil {
				return err
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.Execute(cmd.Context(), request)
			if err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			printExecutionResult(cmd.OutOrStdout(), result, verbose)
			if !result.Success {
				return errExecutionFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Arguments as a JSON value")
	cmd.Flags().StringVarP(&expectedOutput, "expected-output", "e", "", "Expected output as JSON (sizes C pointer results)")
	cmd.Flags().StringVarP(&version, "language-version", "l", "", "Semver constraint the toolchain must satisfy")
	cmd.Flags().IntVarP(&timeoutMs, "timeout", "t", 0, "Run timeout in milliseconds")

	return cmd
}

func readSource(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(content), nil
}

func checkJSON(flag string, raw json.RawMessage) error {
	if len(raw) > 0 && !json.Valid(raw) {
		return fmt.Errorf("--%s is not valid JSON", flag)
	}
	return nil
}

func printExecutionResult(w io.Writer, result types.ExecutionResult, verbose bool) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	if result.Success {
		green.Fprintln(w, "== Success ==")
		fmt.Fprintln(w, string(result.Output))
	} else {
		red.Fprintf(w, "== %s ==\n", result.Kind)
		fmt.Fprint(w, indentLines(result.Error))
	}

	if verbose {
		if result.Stdout != "" {
			bold.Fprintln(w, "STDOUT")
			fmt.Fprint(w, indentLines(result.Stdout))
		}
		if result.Stderr != "" {
			bold.Fprintln(w, "STDERR")
			fmt.Fprint(w, indentLines(result.Stderr))
		}
		fmt.Fprintf(w, "Duration: %s\n", result.Duration)
	}
}

func indentLines(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n") + "\n"
}
