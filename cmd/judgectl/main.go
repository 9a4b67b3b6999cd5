package main

import (
	"fmt"
	"os"

	"github.com/coderunr/judge/internal/cli"
)

var (
	version = "1.0.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(fmt.Sprintf("%s (%s) built at %s", version, commit, date))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
