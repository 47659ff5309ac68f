package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := mcp.NewServer()
			if err != nil {
				return err
			}
			return server.Run(context.Background())
		},
	}

	return cmd
}
