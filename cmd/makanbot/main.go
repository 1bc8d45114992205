package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodkaki/makanbot/internal/catalog"
	"github.com/foodkaki/makanbot/internal/config"
	"github.com/foodkaki/makanbot/internal/llm"
	"github.com/foodkaki/makanbot/internal/logging"
	"github.com/foodkaki/makanbot/internal/recommend"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "makanbot",
		Short: "Makanbot - restaurant recommendations from free-text requests",
		Long: `makanbot resolves free-text restaurant requests into cuisine, area,
and budget tags, intersects them against a tagged place catalog, and
formats ranked recommendations.

It serves an HTTP chat API, an MCP server for agent clients, and
one-shot CLI queries against the same pipeline.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.makanbot/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Catalog database path (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newChatCmd(),
		newTagsCmd(),
		newSeedCmd(),
		newMCPServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Catalog.Path = db
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildEngine wires the catalog store, LLM client, and pipeline from config.
// The caller must Close the returned store.
func buildEngine(cfg *config.Config, logger *slog.Logger, decisions *logging.DecisionLogger) (*recommend.Engine, *catalog.SQLiteStore, error) {
	store, err := catalog.OpenSQLite(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	engine := recommend.New(store, client, recommend.Options{
		PageSize:        cfg.Catalog.PageSize,
		SuggestLimit:    cfg.Recommend.SuggestLimit,
		GenerateTimeout: cfg.Recommend.GenerateTimeout,
	}, logger, decisions)

	return engine, store, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}
