package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// SeedPlace is one entry of a seed dataset file.
type SeedPlace struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	MapLink   string   `json:"map_link"`
	Latitude  float64  `json:"latitude,omitempty"`
	Longitude float64  `json:"longitude,omitempty"`
	AvgPrice  float64  `json:"avg_price,omitempty"`
	Tags      []string `json:"tags"`
}

// SeedDataset is the JSON document accepted by ImportDataset. It mirrors
// the export format of the catalog's enrichment tooling.
type SeedDataset struct {
	Places []SeedPlace `json:"places"`
}

// ImportDataset loads a seed dataset file into the catalog, creating tags
// on first use. Returns the number of places inserted. Intended for the
// operator seed command, not for the request path.
func (s *SQLiteStore) ImportDataset(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds SeedDataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return 0, fmt.Errorf("failed to parse dataset: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, sp := range ds.Places {
		if sp.Name == "" {
			continue
		}

		var avgPrice any
		if sp.AvgPrice > 0 {
			avgPrice = sp.AvgPrice
		}
		var lat, lng any
		if sp.Latitude != 0 || sp.Longitude != 0 {
			lat, lng = sp.Latitude, sp.Longitude
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO places (name, address, map_link, latitude, longitude, avg_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sp.Name, sp.Address, sp.MapLink, lat, lng, avgPrice)
		if err != nil {
			return 0, fmt.Errorf("failed to insert place %q: %w", sp.Name, err)
		}
		placeID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read place id for %q: %w", sp.Name, err)
		}

		for _, tagName := range sp.Tags {
			if tagName == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO tags (name) VALUES (?)`, tagName); err != nil {
				return 0, fmt.Errorf("failed to insert tag %q: %w", tagName, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO place_tags (place_id, tag_id)
				SELECT ?, id FROM tags WHERE name = ? COLLATE NOCASE`,
				placeID, tagName); err != nil {
				return 0, fmt.Errorf("failed to link tag %q: %w", tagName, err)
			}
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return inserted, nil
}
