// Package tagging resolves catalog tag names from free text. It provides
// the phrase matcher (longest-match-first, whole-phrase boundaries), the
// price alias resolver, and the static membership sets used to classify
// tags into cuisine/area/budget at query time.
package tagging

import (
	"strings"

	"github.com/foodkaki/makanbot/internal/models"
)

// Canonical price tier tag names. The dollar-sign notation maps to the
// first four; Free is reachable only through the alias table ("$0", "free").
const (
	TierPremium   = "Premium"
	TierExpensive = "Expensive"
	TierMidRange  = "Mid-Range"
	TierBudget    = "Budget"
	TierFree      = "Free"
)

// CuisineTags is the closed set of tag names treated as cuisines.
// Derived from the catalog's enrichment vocabulary.
var CuisineTags = newNameSet(
	"Japanese", "Korean", "Chinese", "Thai", "Indian", "Italian",
	"French", "Mexican", "Western", "Seafood", "Vegetarian", "Halal",
	"Dessert", "Cafe", "Bubble Tea", "Mala", "Fast Food", "Bar",
	"Vietnamese", "Malay", "Peranakan", "Indonesian", "Spanish",
	"Middle Eastern", "Turkish", "Fusion",
)

// BudgetTags is the closed set of tag names treated as price tiers.
var BudgetTags = newNameSet(
	TierPremium, TierExpensive, TierMidRange, TierBudget, TierFree,
)

// NonLocationTags holds descriptors that are neither cuisine nor budget
// but must never be classified as an area. Anything outside all three
// sets is treated as a candidate area tag.
var NonLocationTags = newNameSet(
	"Restaurant", "Gluten-Free", "Dairy-Free", "Nut-Free",
	"Shellfish-Free", "Egg-Free", "Soy-Free",
	"Late Night", "Family Friendly", "Outdoor Seating", "Pet Friendly",
)

// NameSet is a case-insensitive membership set of tag names.
type NameSet map[string]bool

func newNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[strings.ToLower(n)] = true
	}
	return s
}

// Has reports whether name is a member, ignoring case.
func (s NameSet) Has(name string) bool {
	return s[strings.ToLower(name)]
}

// Vocabulary is the live catalog tag list partitioned by category. It is
// rebuilt per request from the catalog, so tag creation and retirement by
// the catalog's ETL tooling takes effect without a restart.
type Vocabulary struct {
	Cuisines []string
	Areas    []string
	Budgets  []string
}

// PartitionTags splits catalog tags into cuisine, area, and budget lists.
// Budget and cuisine membership come from the static sets; area is defined
// negatively (not budget, not cuisine, not a known non-location descriptor).
func PartitionTags(tags []models.Tag) Vocabulary {
	var v Vocabulary
	for _, t := range tags {
		switch {
		case BudgetTags.Has(t.Name):
			v.Budgets = append(v.Budgets, t.Name)
		case CuisineTags.Has(t.Name):
			v.Cuisines = append(v.Cuisines, t.Name)
		case NonLocationTags.Has(t.Name):
			// descriptor: belongs to no slot
		default:
			v.Areas = append(v.Areas, t.Name)
		}
	}
	return v
}
