package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodkaki/makanbot/internal/catalog"
	"github.com/foodkaki/makanbot/internal/tagging"
)

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the catalog's tag vocabulary by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := catalog.OpenSQLite(cfg.Catalog.Path)
			if err != nil {
				return fmt.Errorf("failed to open catalog: %w", err)
			}
			defer store.Close()

			tags, err := store.ListTags(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}
			vocab := tagging.PartitionTags(tags)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"cuisines": vocab.Cuisines,
					"areas":    vocab.Areas,
					"budgets":  vocab.Budgets,
					"count":    len(tags),
				})
			}

			printCategory := func(name string, values []string) {
				fmt.Printf("%s (%d):\n", name, len(values))
				for _, v := range values {
					fmt.Printf("  %s\n", v)
				}
				fmt.Println()
			}
			printCategory("Cuisines", vocab.Cuisines)
			printCategory("Areas", vocab.Areas)
			printCategory("Price tiers", vocab.Budgets)
			return nil
		},
	}
}
