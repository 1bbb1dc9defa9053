package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "dirz",
		Short: "Directed transformation registry demo",
		Long: `dirz binds named transformations to a direction (IN or OUT) and runs
them against caller-owned state.

The run command executes the ecosystem demo: compress carbon on the way in,
release oxygen on the way out, then print the final state.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(bindingsCmd)
}
