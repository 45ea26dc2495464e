// Package main implements the habitlens CLI: one-shot analysis of behavioral
// logs plus the HTTP and MCP servers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "habitlens",
		Short: "Turn behavioral logs into patterns, predictions and prompts",
		Long: `habitlens reads a user's free-text memories and dated progress logs and
reports recurring patterns, short-term predictions and conversational prompts.

Examples:
  # Analyze one user's document
  habitlens analyze user.json

  # Analyze from stdin as markdown
  cat user.json | habitlens analyze - --format markdown

  # Run the HTTP API
  habitlens serve --watch`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/habitlens/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newVocabCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "habitlens by Fyrsmith Labs\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
