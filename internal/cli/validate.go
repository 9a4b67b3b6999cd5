package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coderunr/judge/internal/types"
	"github.com/coderunr/judge/internal/validator"
)

var (
	errExecutionFailed = errors.New("execution failed")
	errVerdictFailed   = errors.New("not all test cases passed")
)

// NewValidateCommand judges a source file against a test-case file
func NewValidateCommand() *cobra.Command {
	var (
		casesFile string
		version   string
		timeoutMs int
		stream    bool
	)

	cmd := &cobra.Command{
		Use:   "validate <language> <file>",
		Short: "Validate a source file against test cases",
		Long: `Validate a source file against a JSON file of test cases.

The cases file holds either an array of {"input", "expectedOutput"} objects
or an object with a "test_cases" array.

Examples:
  judgectl validate javascript two_sum.js --cases cases.json

  # Print each test case as the server finishes it
  judgectl validate java Solution.java --cases cases.json --stream`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[1])
			if err != nil {
				return err
			}
			cases, err := readCases(casesFile)
			if err != nil {
				return err
			}

			request := types.ValidateRequest{
				Language:   args[0],
				SourceCode: source,
				TestCases:  cases,
				Version:    version,
			}
			if timeoutMs > 0 {
				request.TimeoutMs = &timeoutMs
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verbose, _ := cmd.Flags().GetBool("verbose")

			var observe validator.Observer
			if stream {
				observe = func(r types.ValidationResult) { printCase(out, r, verbose) }
			}
			verdict, err := client.Validate(cmd.Context(), request, observe)
			if err != nil {
				return err
			}

			if !stream {
				for _, r := range verdict.Results {
					printCase(out, r, verbose)
				}
			}
			printVerdict(out, verdict)

			if !verdict.Passed {
				return errVerdictFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&casesFile, "cases", "c", "", "JSON file with test cases")
	cmd.Flags().StringVarP(&version, "language-version", "l", "", "Semver constraint the toolchain must satisfy")
	cmd.Flags().IntVarP(&timeoutMs, "timeout", "t", 0, "Per test case timeout in milliseconds")
	cmd.Flags().BoolVarP(&stream, "stream", "s", false, "Stream results over WebSocket")
	_ = cmd.MarkFlagRequired("cases")

	return cmd
}

func readCases(filename string) ([]types.TestCase, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases file %s: %w", filename, err)
	}

	var cases []types.TestCase
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			TestCases []types.TestCase `json:"test_cases"`
		}
		err = json.Unmarshal(data, &wrapped)
		cases = wrapped.TestCases
	} else {
		err = json.Unmarshal(data, &cases)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse cases file %s: %w", filename, err)
	}
	return cases, nil
}

func printCase(w io.Writer, r types.ValidationResult, verbose bool) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	if r.Passed {
		green.Fprintf(w, "PASS")
	} else {
		red.Fprintf(w, "FAIL")
	}
	fmt.Fprintf(w, " case %d\n", r.TestCaseIndex+1)

	if !r.Passed || verbose {
		fmt.Fprintf(w, "    input:    %s\n", r.Input)
		fmt.Fprintf(w, "    expected: %s\n", r.ExpectedOutput)
		if len(r.ActualOutput) > 0 {
			fmt.Fprintf(w, "    actual:   %s\n", r.ActualOutput)
		}
		if r.Error != "" {
			fmt.Fprint(w, indentLines("error: "+r.Error))
		}
	}
}

func printVerdict(w io.Writer, v types.Verdict) {
	c := color.New(color.FgRed, color.Bold)
	if v.Passed {
		c = color.New(color.FgGreen, color.Bold)
	}
	fmt.Fprintln(w)
	c.Fprintln(w, v.Message)
}
