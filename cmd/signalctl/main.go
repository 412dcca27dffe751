// signalctl classifies indicator readings offline, without the analytics backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "signalctl",
		Short:         "Classify technical indicator readings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(classifyCmd())
	root.AddCommand(overallCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "signalctl version %s\n", version)
		},
	})
	return root
}
