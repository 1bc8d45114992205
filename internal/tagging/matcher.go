package tagging

import (
	"sort"
	"strings"

	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/normalize"
)

// Matcher finds catalog tag names present in normalized text. Longer tag
// names are tested first so the most specific phrase wins a span, and the
// resulting order doubles as slot-classification priority.
type Matcher struct {
	ignore NameSet
}

// NewMatcher creates a Matcher that skips the given tag names regardless
// of their textual presence (typically the generic "Restaurant" tag).
func NewMatcher(ignore ...string) *Matcher {
	return &Matcher{ignore: newNameSet(ignore...)}
}

// Match returns the tag names (original casing) whose normalized form
// appears as a whole phrase in text. text must already be normalized.
// Results are deduplicated and ordered longest tag name first; ties keep
// catalog order.
func (m *Matcher) Match(text string, tags []models.Tag) []string {
	if text == "" || len(tags) == 0 {
		return nil
	}

	sorted := make([]models.Tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Name) > len(sorted[j].Name)
	})

	// Matched spans are consumed so a shorter tag cannot double-count
	// inside a longer phrase ("Hotpot" inside "Hotpot / Steamboat").
	remaining := " " + text + " "

	seen := make(map[string]bool, 4)
	var matched []string
	for _, t := range sorted {
		if m.ignore.Has(t.Name) {
			continue
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			continue
		}
		phrase := normalize.Text(t.Name)
		if phrase == "" {
			continue
		}
		padded := " " + phrase + " "
		if strings.Contains(remaining, padded) {
			seen[key] = true
			matched = append(matched, t.Name)
			remaining = strings.ReplaceAll(remaining, padded, " ")
		}
	}
	return matched
}
