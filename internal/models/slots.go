package models

import "strings"

// SlotAssignment holds the (at most) one tag resolved for each of the
// three required facets. A nil slot means unresolved. Created fresh per
// incoming request; it has no persisted identity.
type SlotAssignment struct {
	Cuisine *Tag `json:"cuisine" yaml:"cuisine"`
	Area    *Tag `json:"area" yaml:"area"`
	Budget  *Tag `json:"budget" yaml:"budget"`
}

// Complete reports whether all three slots are resolved.
func (s *SlotAssignment) Complete() bool {
	return s.Cuisine != nil && s.Area != nil && s.Budget != nil
}

// Missing returns the names of the unresolved slots, in the fixed order
// cuisine, area, budget.
func (s *SlotAssignment) Missing() []string {
	var missing []string
	if s.Cuisine == nil {
		missing = append(missing, "cuisine")
	}
	if s.Area == nil {
		missing = append(missing, "area")
	}
	if s.Budget == nil {
		missing = append(missing, "budget")
	}
	return missing
}

// TagNames returns the resolved tag names in cuisine, area, budget order.
// Unresolved slots are skipped.
func (s *SlotAssignment) TagNames() []string {
	var names []string
	for _, t := range []*Tag{s.Cuisine, s.Area, s.Budget} {
		if t != nil {
			names = append(names, t.Name)
		}
	}
	return names
}

// String renders the assignment for logs, e.g.
// "cuisine=Japanese area=Tanjong Pagar budget=?".
func (s *SlotAssignment) String() string {
	var b strings.Builder
	b.WriteString("cuisine=")
	b.WriteString(tagOrUnset(s.Cuisine))
	b.WriteString(" area=")
	b.WriteString(tagOrUnset(s.Area))
	b.WriteString(" budget=")
	b.WriteString(tagOrUnset(s.Budget))
	return b.String()
}

func tagOrUnset(t *Tag) string {
	if t == nil {
		return "?"
	}
	return t.Name
}

// RankingResult is the validated output of the result ranker. OrderedIDs
// is a subset of the candidate set, at most three entries, no duplicates.
// Reasons is keyed by the same id space.
type RankingResult struct {
	OrderedIDs []int64          `json:"ordered_ids" yaml:"ordered_ids"`
	Reasons    map[int64]string `json:"reasons" yaml:"reasons"`
}
