// Package rank reorders and annotates already-validated candidates using
// the generate-text capability. The hard whitelist is the safety property:
// the ranker can reorder and explain, never conjure. Any id outside the
// candidate set is dropped; a ranking with zero surviving ids is discarded
// entirely and the caller falls back to the deterministic order.
package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/foodkaki/makanbot/internal/llm"
	"github.com/foodkaki/makanbot/internal/models"
)

// MaxRanked caps how many candidates a ranking may order.
const MaxRanked = 3

// Ranker asks the generate-text capability to order candidates.
type Ranker struct {
	client llm.Client
	logger *slog.Logger
}

// New creates a Ranker. logger may be nil.
func New(client llm.Client, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{client: client, logger: logger}
}

// Rank returns a validated ranking of candidates for the user's message,
// or nil when no usable ranking could be obtained (unavailable client,
// generation failure, unparsable response, or nothing surviving the
// whitelist). It never returns an error: ranking is an optional
// enrichment and the unranked order is always a valid fallback.
func (r *Ranker) Rank(ctx context.Context, message string, assignment *models.SlotAssignment, candidates []models.Place) *models.RankingResult {
	if len(candidates) == 0 {
		return nil
	}
	if r.client == nil || !r.client.Available() {
		return nil
	}

	response, err := r.client.Generate(ctx, Prompt(message, assignment, candidates))
	if err != nil {
		r.logger.Debug("ranking generation failed, falling back to unranked order", "error", err)
		return nil
	}

	var raw struct {
		OrderedIDs []json.RawMessage          `json:"ordered_ids"`
		Reasons    map[string]json.RawMessage `json:"reasons"`
	}
	if !llm.DecodeFirstJSONObject(response, &raw) {
		r.logger.Debug("ranking response had no parsable JSON object")
		return nil
	}

	allowed := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		allowed[c.ID] = true
	}

	result := &models.RankingResult{Reasons: make(map[int64]string)}
	seen := make(map[int64]bool, MaxRanked)
	for _, rawID := range raw.OrderedIDs {
		if len(result.OrderedIDs) >= MaxRanked {
			break
		}
		id, ok := coerceID(rawID)
		if !ok {
			continue
		}
		if !allowed[id] {
			// Whitelist violation: dropped, logged, never trusted.
			r.logger.Warn("ranker returned id outside the candidate set", "id", id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		result.OrderedIDs = append(result.OrderedIDs, id)
	}

	if len(result.OrderedIDs) == 0 {
		return nil
	}

	for key, rawReason := range raw.Reasons {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || !allowed[id] {
			continue
		}
		var reason string
		if json.Unmarshal(rawReason, &reason) != nil || reason == "" {
			continue
		}
		result.Reasons[id] = reason
	}

	return result
}

// coerceID accepts a JSON number or a numeric-looking JSON string.
func coerceID(raw json.RawMessage) (int64, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Prompt builds the ranking prompt. Only the user's message, the three
// resolved tag names, and the candidates reduced to {id, name, address,
// tags} are included — no other data leaks to the generator.
func Prompt(message string, assignment *models.SlotAssignment, candidates []models.Place) string {
	var b strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&b, "\n- id: %d\n  name: %s\n  address: %s\n  tags: %s\n",
			c.ID, c.Name, c.Address, strings.Join(c.Tags, ", "))
	}

	return fmt.Sprintf(`You are ranking restaurant candidates for a user request.

## User message
%s

## Resolved tags
%s

## Candidates
%s
## Task
Order the best candidates for this user, at most %d, and give a one-sentence reason per place. Use ONLY ids from the candidate list above.

## Response Format
Respond with ONLY a JSON object (no markdown code blocks, no additional text):
{"ordered_ids": [<id>, ...], "reasons": {"<id>": "<reason>", ...}}`,
		message, strings.Join(assignment.TagNames(), ", "), b.String(), MaxRanked)
}
