// Package slots partitions matched tags into the three required facets
// (cuisine, area, budget) and extracts diagnostic location phrases when no
// area tag was matched.
package slots

import (
	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/tagging"
)

// Classify assigns matched tags to slots using first-match ordering.
// Tags are visited in matcher order (longest phrase first), so ties between
// two tags of the same category are broken by phrase specificity, not
// catalog order. Budget membership is checked first, then cuisine; area is
// defined negatively as "not budget, not cuisine, not a known non-location
// descriptor". A filled slot is never reassigned.
func Classify(matched []string) *models.SlotAssignment {
	a := &models.SlotAssignment{}
	for _, name := range matched {
		switch {
		case tagging.BudgetTags.Has(name):
			if a.Budget == nil {
				a.Budget = &models.Tag{Name: name}
			}
		case tagging.CuisineTags.Has(name):
			if a.Cuisine == nil {
				a.Cuisine = &models.Tag{Name: name}
			}
		case tagging.NonLocationTags.Has(name):
			// descriptor: belongs to no slot
		default:
			if a.Area == nil {
				a.Area = &models.Tag{Name: name}
			}
		}
	}
	return a
}
