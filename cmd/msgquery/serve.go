package main

import (
	"github.com/spf13/cobra"

	"github.com/spachava753/msgquery/mcpserver"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the transcript tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStores, err := newService(logger)
			if err != nil {
				return err
			}
			defer closeStores()

			server := mcpserver.NewServer(svc, versionString(), logger.Named("mcp"))
			return server.Run(cmd.Context())
		},
	}
}
