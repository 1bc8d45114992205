// Package models defines the core domain types shared across the
// recommendation pipeline: tags, places, slot assignments, and ranking
// results.
package models

import "time"

// Tag is a named label from the externally maintained catalog vocabulary.
// The name is the unique identifier: case-insensitive for matching,
// case-preserving for display. Its semantic category (cuisine, area,
// budget, other) is inferred at query time, never stored.
type Tag struct {
	Name string `json:"name" yaml:"name"`
}

// Place is a restaurant record owned by the catalog store. The core treats
// it as immutable read data for the duration of one request.
type Place struct {
	ID      int64  `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	MapLink string `json:"map_link" yaml:"map_link"`

	// Latitude/Longitude come from the catalog's enrichment pipeline and
	// feed the supplementary distance filter. Zero values mean unknown.
	Latitude  float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`

	// Tags is populated on demand (for ranking); nil means not fetched.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Turn is a single message in a conversation session.
type Turn struct {
	Role      string    `json:"role" yaml:"role"` // "user" or "assistant"
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
