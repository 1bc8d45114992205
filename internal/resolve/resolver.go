// Package resolve turns a complete slot assignment into a deduplicated
// candidate list. The primary path intersects the catalog's per-tag place
// sets (strict AND); a supplementary structured-filter path runs
// concurrently and enriches, never replaces, the tag-based results.
package resolve

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/foodkaki/makanbot/internal/catalog"
	"github.com/foodkaki/makanbot/internal/models"
)

// priceNumberPattern matches explicit dollar amounts like "$25" or "$12.50"
// in the raw message.
var priceNumberPattern = regexp.MustCompile(`\$(\d+(?:\.\d{1,2})?)`)

// Resolver fetches candidate places for a resolved slot assignment.
type Resolver struct {
	store    catalog.Store
	pageSize int
	logger   *slog.Logger
}

// New creates a Resolver. pageSize caps each retrieval path; zero means
// the catalog default. logger may be nil.
func New(store catalog.Store, pageSize int, logger *slog.Logger) *Resolver {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, pageSize: pageSize, logger: logger}
}

// Resolve returns the candidates satisfying the logical AND of the three
// resolved tags, merged with the supplementary filter path. An incomplete
// assignment short-circuits to no candidates. An empty intersection yields
// an empty list — there is no fallback to partial matches. Catalog errors
// on the tag path surface to the caller; supplementary-path errors only
// degrade that path to absent.
func (r *Resolver) Resolve(ctx context.Context, assignment *models.SlotAssignment, rawMessage string) ([]models.Place, error) {
	if !assignment.Complete() {
		return nil, nil
	}

	// The supplementary path is read-only and independently mergeable, so
	// it runs concurrently with the tag intersection.
	type searchOut struct {
		places []models.Place
		err    error
	}
	supCh := make(chan searchOut, 1)
	filter := SupplementaryFilter(rawMessage, assignment, r.pageSize)
	go func() {
		if filter.Empty() {
			supCh <- searchOut{}
			return
		}
		places, err := r.store.SearchPlaces(ctx, filter)
		supCh <- searchOut{places, err}
	}()

	tagged, err := r.resolveByTags(ctx, assignment)
	sup := <-supCh
	if err != nil {
		return nil, err
	}
	if sup.err != nil {
		// Enrichment only: its absence must not regress tag-based results.
		r.logger.Warn("supplementary retrieval path failed", "error", sup.err)
		sup.places = nil
	}

	return Dedup(tagged, sup.places), nil
}

func (r *Resolver) resolveByTags(ctx context.Context, assignment *models.SlotAssignment) ([]models.Place, error) {
	sets := make([]catalog.IDSet, 0, 3)
	for _, name := range assignment.TagNames() {
		ids, err := r.store.PlaceIDsForTag(ctx, name)
		if err != nil {
			return nil, err
		}
		sets = append(sets, ids)
	}

	intersection := catalog.Intersect(sets...)
	if len(intersection) == 0 {
		return nil, nil
	}
	return r.store.PlacesByIDs(ctx, intersection, r.pageSize)
}

// SupplementaryFilter derives the structured filter from the raw message
// and the resolved slots. It activates only when the message names an
// explicit numeric budget ("$25") — that is a constraint the tag
// intersection cannot express. All clauses are conjunctive (price ceiling
// AND cuisine tag AND proximity to the resolved area), so the path enriches
// the tag results without diluting their AND semantics.
func SupplementaryFilter(rawMessage string, assignment *models.SlotAssignment, limit int) catalog.Filter {
	var maxPrice float64
	if m := priceNumberPattern.FindStringSubmatch(rawMessage); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			maxPrice = v
		}
	}
	if maxPrice <= 0 {
		return catalog.Filter{}
	}

	f := catalog.Filter{Limit: limit, MaxPrice: maxPrice}
	if assignment.Cuisine != nil {
		f.Cuisine = assignment.Cuisine.Name
	}
	if assignment.Area != nil {
		f.NearArea = assignment.Area.Name
	}
	return f
}
