package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/mcpserver"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

func newServeCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagnostics and lifecycle tools over MCP stdio",
		Long: `Starts the MCP server on stdin/stdout. Every diagnostic and
lifecycle operation of the CLI is exposed as a tool, so an AI assistant
connected to this server can check the installation, inspect clusters,
and create or destroy the demo environment.

Stdout carries the protocol; all logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)

			service, err := mcpserver.NewService(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize server: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return service.ServeStdio(ctx)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	return cmd
}
