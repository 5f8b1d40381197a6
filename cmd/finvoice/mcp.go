package main

import (
	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/db"
	"github.com/jwulff/finvoice/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the archive and assistant as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		policy := conversation.NewTextPolicy(catalog, conversation.NewRandomSource(cfg.Seed))
		return mcpserver.New(store, policy, version, logger.Named("mcp")).ServeStdio()
	},
}
