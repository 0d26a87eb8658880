// Package cli implements the newshound command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newshound",
		Short:         "Collect news headlines from Naver search",
		Long:          "newshound scrapes the Naver news search tab for a query, deduplicates and filters the headlines, and writes them to stdout and optional storage backends.",
		SilenceErrors: true,
		// Flag errors still print usage; once parsing succeeded, runtime
		// failures report the error alone.
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.Root().SilenceUsage = true
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSearchCmd())
	root.AddCommand(newServeCmd())
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
