// Package sanitize cleans free-text user messages before they flow into
// the pipeline and, later, into generate-text prompts. It strips control
// characters, XML/HTML tags, and code-fence markers to prevent prompt
// injection through the chat surface, while preserving the words the
// matcher and classifier need.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the maximum length of a user message after
// sanitization. Longer input is truncated, not rejected.
const MaxMessageLength = 1000

var (
	// reXMLTag matches XML/HTML tags including attributes, self-closing
	// tags, and processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	// reTripleBacktick matches triple (or more) backtick sequences used
	// in code fences.
	reTripleBacktick = regexp.MustCompile("```+")

	// reExcessiveNewlines matches 3 or more consecutive newlines.
	reExcessiveNewlines = regexp.MustCompile(`\n{3,}`)
)

// Message sanitizes a chat message for pipeline use. The steps run in
// this order:
//  1. Strip null bytes and ASCII control characters (except \n, \t)
//  2. Strip XML/HTML-like tags
//  3. Collapse triple backticks to a single backtick
//  4. Collapse excessive newlines (3+ -> 2)
//  5. Trim leading/trailing whitespace
//  6. Truncate to MaxMessageLength
func Message(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = reTripleBacktick.ReplaceAllString(s, "`")
	s = reExcessiveNewlines.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	if len(s) > MaxMessageLength {
		// Back up to a rune boundary so the cut never produces invalid UTF-8.
		cut := MaxMessageLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}

	return s
}

// stripControlChars removes ASCII control characters (0x00-0x1F) from the
// string, except for newline (0x0A) and tab (0x09) which are preserved.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
