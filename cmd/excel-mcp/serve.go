package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mort-lab/excel-mcp/internal/config"
	"github.com/mort-lab/excel-mcp/internal/mcpserver"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio or HTTP",
		Long: `Run the MCP server.

With --transport stdio (the default) JSON-RPC messages are read from stdin and
written to stdout; logs go to stderr. With --transport http the server listens
on --addr and serves MCP at /mcp and a health check at /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mcpserver.New(a.reg, Version, a.logger)
			if a.cfg.Transport == config.TransportHTTP {
				return srv.ServeHTTP(ctx, a.cfg.Addr)
			}
			return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
