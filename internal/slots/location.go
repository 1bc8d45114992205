package slots

import (
	"regexp"
	"sort"
	"strings"

	"github.com/foodkaki/makanbot/internal/normalize"
)

// connectorPattern captures the words following a location connector.
// It operates on normalized text, so punctuation is already gone.
var connectorPattern = regexp.MustCompile(`(?:^| )(?:in|at|near) (.+)$`)

// locationStopWords terminate a captured location phrase. These are the
// price/budget words that commonly trail a location mention
// ("near orchard cheap eats").
var locationStopWords = map[string]bool{
	"cheap": true, "budget": true, "affordable": true, "economical": true,
	"low": true, "cost": true, "mid": true, "range": true, "moderate": true,
	"expensive": true, "pricey": true, "upscale": true, "atas": true,
	"fine": true, "dining": true, "premium": true, "luxury": true,
	"free": true, "under": true, "below": true, "around": true,
	"$": true, "$$": true, "$$$": true, "$$$$": true,
}

// ExtractLocationPhrase pulls a raw location phrase out of normalized text
// using the connector words "in", "at", "near". The capture is bounded:
// it stops at the first known non-location keyword. Returns "" when no
// connector is present or the capture is empty after bounding.
func ExtractLocationPhrase(text string) string {
	m := connectorPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	words := strings.Fields(m[1])
	var kept []string
	for _, w := range words {
		if locationStopWords[w] {
			break
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// SuggestAreas returns up to limit catalog area names ranked by similarity
// to phrase. Suggestions are purely diagnostic — they are never
// auto-assigned to the area slot. Names scoring below the similarity
// floor are omitted.
func SuggestAreas(phrase string, areas []string, limit int) []string {
	const floor = 0.4

	phrase = normalize.Text(phrase)
	if phrase == "" || len(areas) == 0 || limit <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	var ranked []scored
	for _, name := range areas {
		s := bigramDice(phrase, normalize.Text(name))
		if s >= floor {
			ranked = append(ranked, scored{name, s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}
	return out
}

// bigramDice computes the Dice coefficient over character bigrams.
// Identical strings score 1.0; strings sharing no bigram score 0.0.
func bigramDice(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0.0
	}
	overlap := 0
	for g, n := range ba {
		if m := bb[g]; m > 0 {
			if n < m {
				overlap += n
			} else {
				overlap += m
			}
		}
	}
	total := 0
	for _, n := range ba {
		total += n
	}
	for _, n := range bb {
		total += n
	}
	return 2.0 * float64(overlap) / float64(total)
}

func bigrams(s string) map[string]int {
	grams := make(map[string]int, len(s))
	for i := 0; i+2 <= len(s); i++ {
		grams[s[i:i+2]]++
	}
	return grams
}
