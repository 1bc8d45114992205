// Package mcp provides an MCP (Model Context Protocol) server exposing
// the recommendation pipeline as tools, so agent clients can resolve
// restaurant requests without going through the HTTP API.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/foodkaki/makanbot/internal/catalog"
	"github.com/foodkaki/makanbot/internal/recommend"
)

// Server wraps the MCP SDK server around the recommendation engine.
type Server struct {
	server *sdk.Server
	engine *recommend.Engine
	store  catalog.Store
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "makanbot")
	Version string // Server version
}

// NewServer creates a new MCP server with makanbot tools.
func NewServer(cfg *Config, engine *recommend.Engine, store catalog.Store) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server: mcpServer,
		engine: engine,
		store:  store,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	// Run server (blocks)
	err := s.server.Run(ctx, &sdk.StdioTransport{})

	// Clean up
	s.store.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}
