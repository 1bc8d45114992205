package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonBlockRe    = regexp.MustCompile("(?s)```json\\s*\\n?(.*?)\\s*```")
	genericBlockRe = regexp.MustCompile("(?s)```\\s*\\n?(.*?)\\s*```")
)

// DecodeFirstJSONObject tolerantly extracts and decodes the first JSON
// object from a model response into v. It tries, in order: a ```json
// fenced block, a generic fenced block, the bare response, and finally the
// substring starting at the first '{'. The first candidate that parses
// wins. Returns false when nothing parses — callers treat that as "no
// contribution", never as an error to surface.
func DecodeFirstJSONObject(response string, v any) bool {
	response = strings.TrimSpace(response)
	if response == "" {
		return false
	}

	var candidates []string
	if m := jsonBlockRe.FindStringSubmatch(response); len(m) > 1 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := genericBlockRe.FindStringSubmatch(response); len(m) > 1 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, response)
	if idx := strings.Index(response, "{"); idx > 0 {
		candidates = append(candidates, response[idx:])
	}

	for _, c := range candidates {
		if !strings.HasPrefix(c, "{") {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(c))
		if err := dec.Decode(v); err == nil {
			return true
		}
	}
	return false
}
