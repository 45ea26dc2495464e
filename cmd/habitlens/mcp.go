package main

import (
	"os/signal"
	"syscall"

	"github.com/fyrsmithlabs/habitlens/internal/logging"
	"github.com/fyrsmithlabs/habitlens/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Run an MCP server on stdin/stdout exposing the analyze_patterns,
predict_insights and contextual_prompts tools. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx, root)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			engine, err := rt.newEngine(nil)
			if err != nil {
				return err
			}
			svc, err := rt.newService(ctx, engine)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "habitlens",
				Version: version,
				Logger:  rt.logger.Named("mcp"),
			}, svc)
			if err != nil {
				return err
			}
			return server.Run(logging.WithLogger(ctx, rt.logger))
		},
	}
}
