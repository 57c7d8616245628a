// Command mock-server is a stand-in MCP server for test harnesses. It reads
// line-delimited JSON-RPC requests on stdin, answers the handshake and the
// echo tool on stdout, and reports unreadable lines on stderr.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/zillow/mcp-mockserver/mcp"
	"github.com/zillow/mcp-mockserver/server"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "mock-server",
		Short:         "Mock MCP server speaking line-delimited JSON-RPC over stdio",
		Version:       mcp.ServerVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s%v\n", server.DiagnosticPrefix, err)
				return err
			}

			logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
				Level:           level,
				Prefix:          mcp.ServerName,
				ReportTimestamp: true,
			})

			mockServer := server.NewMockServer(mcp.ServerName, mcp.ServerVersion, server.WithLogger(logger))
			return server.ServeStdio(cmd.Context(), mockServer, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "operational log level (debug, info, warn, error)")

	return cmd
}
