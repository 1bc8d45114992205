package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodkaki/makanbot/internal/catalog"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <dataset.json>",
		Short: "Import a place dataset into the catalog",
		Long: `Import a JSON dataset of places (name, address, map link,
coordinates, tags) into the catalog database. Existing tags are reused;
places are appended.`,
		Args: cobra.ExactArgs(1),
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

			count, err := store.ImportDataset(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to import dataset: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"status":   "imported",
					"places":   count,
					"database": cfg.Catalog.Path,
				})
			}

			fmt.Printf("Imported %d places into %s\n", count, cfg.Catalog.Path)
			return nil
		},
	}
}
