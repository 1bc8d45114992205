// Package respond renders the pipeline's terminal state as user-facing
// text. Formatting is a pure function of the outcome: the same terminal
// state always yields the same sentence, and upstream errors are never
// echoed to the user.
package respond

import (
	"fmt"
	"strings"

	"github.com/foodkaki/makanbot/internal/models"
)

// MaxListed caps how many candidates appear in a response.
const MaxListed = 3

// Outcome is the pipeline's terminal state handed to the formatter.
type Outcome struct {
	// Assignment holds the slot resolution after gap-filling.
	Assignment *models.SlotAssignment

	// LocationPhrase is the raw location phrase extracted from the message
	// when no area tag matched; empty if none was found.
	LocationPhrase string

	// AreaSuggestions are fuzzy catalog-area matches for LocationPhrase,
	// for diagnostic messaging only.
	AreaSuggestions []string

	// Candidates is the deduplicated candidate list, resolver order.
	Candidates []models.Place

	// Ranking is the validated ranking, or nil when none was usable.
	Ranking *models.RankingResult
}

// Format renders the outcome. Exactly one branch applies: missing slots,
// empty intersection, unranked candidates, or ranked candidates.
func Format(o Outcome) string {
	if missing := o.Assignment.Missing(); len(missing) > 0 {
		return formatMissing(o, missing)
	}
	if len(o.Candidates) == 0 {
		return formatEmpty(o)
	}
	if o.Ranking == nil || len(o.Ranking.OrderedIDs) == 0 {
		return formatUnranked(o)
	}
	return formatRanked(o)
}

func formatMissing(o Outcome, missing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I still need your %s to find a match.", joinNames(missing))

	if contains(missing, "area") && o.LocationPhrase != "" {
		fmt.Fprintf(&b, " I couldn't match %q to a neighbourhood I know.", o.LocationPhrase)
		if len(o.AreaSuggestions) > 0 {
			fmt.Fprintf(&b, " Did you mean %s?", joinNames(o.AreaSuggestions))
		}
	}
	return b.String()
}

func formatEmpty(o Outcome) string {
	// Strict no-fallback policy: name the three tags, suggest nothing else.
	return fmt.Sprintf("No places matched %s. Try adjusting one of them.",
		strings.Join(o.Assignment.TagNames(), " + "))
}

func formatUnranked(o Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I found for %s:\n",
		strings.Join(o.Assignment.TagNames(), " + "))

	for i, p := range o.Candidates {
		if i >= MaxListed {
			break
		}
		writePlaceLine(&b, i+1, p, "")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRanked(o Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I found for %s:\n",
		strings.Join(o.Assignment.TagNames(), " + "))

	byID := make(map[int64]models.Place, len(o.Candidates))
	for _, p := range o.Candidates {
		byID[p.ID] = p
	}

	listed := make(map[int64]bool, MaxListed)
	n := 0
	for _, id := range o.Ranking.OrderedIDs {
		if n >= MaxListed {
			break
		}
		p, ok := byID[id]
		if !ok {
			continue
		}
		listed[id] = true
		n++
		writePlaceLine(&b, n, p, o.Ranking.Reasons[id])
	}

	// Deterministic fill from the unranked candidate order when the ranker
	// returned fewer than the listing cap.
	for _, p := range o.Candidates {
		if n >= MaxListed {
			break
		}
		if listed[p.ID] {
			continue
		}
		listed[p.ID] = true
		n++
		writePlaceLine(&b, n, p, "")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writePlaceLine(b *strings.Builder, n int, p models.Place, reason string) {
	fmt.Fprintf(b, "%d. %s — %s", n, p.Name, p.Address)
	if p.MapLink != "" {
		fmt.Fprintf(b, " (%s)", p.MapLink)
	}
	if reason != "" {
		fmt.Fprintf(b, " — %s", reason)
	}
	b.WriteString("\n")
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
