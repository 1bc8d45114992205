package tagging

import (
	"strings"

	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/normalize"
)

// dollarTiers maps a dollar-sign run length to its canonical tier.
var dollarTiers = map[int]string{
	1: TierBudget,
	2: TierMidRange,
	3: TierExpensive,
	4: TierPremium,
}

// priceAliases holds the natural-language synonyms per tier, in
// normalized form (the lookup uses the same whole-phrase rule as the
// matcher). The longest matching phrase wins, so "not too expensive"
// resolves to Mid-Range rather than through its contained "expensive";
// tier order here only breaks length ties.
var priceAliases = []struct {
	tier    string
	phrases []string
}{
	{TierPremium, []string{"fine dining", "high end", "luxury", "splurge", "top end", "omakase budget"}},
	{TierExpensive, []string{"expensive", "pricey", "upscale", "atas"}},
	{TierMidRange, []string{"mid range", "moderate", "mid priced", "average price", "not too expensive"}},
	{TierBudget, []string{"cheap", "budget", "affordable", "economical", "low cost", "value for money", "wallet friendly"}},
	{TierFree, []string{"$0", "free"}},
}

// DetectPriceTier resolves at most one canonical price tier from a user
// message. Stage 1 scans the raw message for whole-token dollar runs
// ($ through $$$$, longest run wins); stage 2 falls back to the alias
// table over the normalized message. Returns ("", false) when neither
// stage detects a tier.
func DetectPriceTier(raw, normalized string) (string, bool) {
	if tier, ok := detectDollarRun(raw); ok {
		return tier, true
	}
	bestTier, bestLen := "", 0
	for _, entry := range priceAliases {
		for _, phrase := range entry.phrases {
			if len(phrase) > bestLen && normalize.ContainsPhrase(normalized, phrase) {
				bestTier, bestLen = entry.tier, len(phrase)
			}
		}
	}
	if bestLen > 0 {
		return bestTier, true
	}
	return "", false
}

// detectDollarRun finds the longest whole-token run of dollar signs in the
// raw message. A run is a whole token when it is not adjacent to another
// '$' or an alphanumeric ("$25" is a numeric price, not a tier token).
// Runs longer than four signs map to no tier.
func detectDollarRun(raw string) (string, bool) {
	best := 0
	i := 0
	for i < len(raw) {
		if raw[i] != '$' {
			i++
			continue
		}
		start := i
		for i < len(raw) && raw[i] == '$' {
			i++
		}
		n := i - start
		if start > 0 && isAlnum(raw[start-1]) {
			continue
		}
		if i < len(raw) && isAlnum(raw[i]) {
			continue
		}
		if n > best && n <= 4 {
			best = n
		}
	}
	if tier, ok := dollarTiers[best]; ok {
		return tier, true
	}
	return "", false
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// AppendPriceTag resolves a price tier from the message and appends the
// corresponding catalog tag to matched, if and only if the catalog carries
// a tag with that name (case-insensitive) and it was not already matched.
// The catalog is authoritative: a detected tier with no catalog tag yields
// no match.
func AppendPriceTag(raw, normalized string, catalogTags []models.Tag, matched []string) []string {
	tier, ok := DetectPriceTier(raw, normalized)
	if !ok {
		return matched
	}
	for _, existing := range matched {
		if strings.EqualFold(existing, tier) {
			return matched
		}
	}
	for _, t := range catalogTags {
		if strings.EqualFold(t.Name, tier) {
			return append(matched, t.Name)
		}
	}
	return matched
}
