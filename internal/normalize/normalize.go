// Package normalize canonicalizes free text for tag matching.
package normalize

import "strings"

// Text lowercases s, replaces hyphens with spaces, strips every character
// outside [a-z0-9$ ], and collapses runs of whitespace to a single space.
// It is total: any input (including empty) yields a well-formed result.
func Text(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true // treat leading whitespace as already collapsed
	for _, r := range s {
		switch {
		case r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '$':
			b.WriteRune(r)
			lastSpace = false
		default:
			// punctuation and non-ASCII are dropped entirely
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// ContainsPhrase reports whether phrase occurs in text as a space-delimited
// whole phrase. Both arguments must already be normalized. Padding both
// sides with a single space prevents "bar" matching inside "barbecue".
func ContainsPhrase(text, phrase string) bool {
	if text == "" || phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
