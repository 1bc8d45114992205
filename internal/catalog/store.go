// Package catalog provides read access to the externally owned tagged
// catalog of places. The core consumes it through the Store interface;
// implementations back it with SQLite or memory (tests).
package catalog

import (
	"context"
	"errors"

	"github.com/foodkaki/makanbot/internal/models"
)

// ErrUnavailable indicates the catalog store could not be queried. It is
// distinct from an empty result: the pipeline surfaces it as a
// request-level failure instead of pretending no restaurants matched.
var ErrUnavailable = errors.New("catalog store unavailable")

// IDSet is a set of place ids.
type IDSet map[int64]struct{}

// Intersect returns the ids present in every given set. A nil or empty
// input yields an empty set.
func Intersect(sets ...IDSet) IDSet {
	if len(sets) == 0 {
		return IDSet{}
	}
	out := IDSet{}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if len(s) < len(smallest) {
			smallest = s
		}
	}
	for id := range smallest {
		in := true
		for _, s := range sets {
			if _, ok := s[id]; !ok {
				in = false
				break
			}
		}
		if in {
			out[id] = struct{}{}
		}
	}
	return out
}

// Filter describes the supplementary structured retrieval path. Zero
// values disable the corresponding clause.
type Filter struct {
	// MaxPrice keeps places whose average price is at or below this value.
	MaxPrice float64

	// Cuisine keeps places carrying this tag (case-insensitive).
	Cuisine string

	// NearArea names an area tag; places farther than RadiusKm from the
	// centroid of that area's places are dropped.
	NearArea string
	RadiusKm float64

	// Limit caps the number of returned places. Zero means the store's
	// default page size.
	Limit int
}

// Empty reports whether the filter has no active clause.
func (f Filter) Empty() bool {
	return f.MaxPrice <= 0 && f.Cuisine == "" && f.NearArea == ""
}

// Store is the read-only capability contract over the catalog.
// Implementations must be safe for concurrent use.
type Store interface {
	// ListTags returns every known tag name.
	ListTags(ctx context.Context) ([]models.Tag, error)

	// PlaceIDsForTag returns the ids of places carrying the named tag
	// (case-insensitive). Unknown tags yield an empty set, not an error.
	PlaceIDsForTag(ctx context.Context, tagName string) (IDSet, error)

	// PlacesByIDs fetches full place records for the given ids, ordered
	// by id, capped at limit (0 means the store default).
	PlacesByIDs(ctx context.Context, ids IDSet, limit int) ([]models.Place, error)

	// TagsForPlaces returns the tag names attached to each given place.
	TagsForPlaces(ctx context.Context, ids []int64) (map[int64][]string, error)

	// SearchPlaces runs the supplementary structured filter path.
	SearchPlaces(ctx context.Context, f Filter) ([]models.Place, error)

	// Close releases store resources.
	Close() error
}

// DefaultPageSize caps place fetches when the caller passes no limit.
const DefaultPageSize = 10
