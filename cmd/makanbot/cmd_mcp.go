package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foodkaki/makanbot/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Start the MCP (Model Context Protocol) server exposing the
recommend and list_tags tools over stdio. Intended to be launched by an
MCP client, not interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			engine, store, err := buildEngine(cfg, logger, nil)
			if err != nil {
				return err
			}

			srv, err := mcp.NewServer(&mcp.Config{
				Name:    "makanbot",
				Version: version,
			}, engine, store)
			if err != nil {
				store.Close()
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			// Run blocks until the client disconnects; it closes the store.
			return srv.Run(context.Background())
		},
	}
}
