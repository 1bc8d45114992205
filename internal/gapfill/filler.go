// Package gapfill asks the generate-text capability to propose values for
// unresolved slots, then validates every proposal against the exact
// allowed vocabulary before accepting it. The generator can fill gaps; it
// can never invent vocabulary or override a rule-based assignment.
package gapfill

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodkaki/makanbot/internal/llm"
	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/tagging"
)

// Filler fills unresolved slots via the generate-text capability.
type Filler struct {
	client llm.Client
	logger *slog.Logger
}

// New creates a Filler. logger may be nil.
func New(client llm.Client, logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filler{client: client, logger: logger}
}

// Fill merges generator-proposed values into the nil slots of partial and
// returns it. Rule-based assignments are never overridden. Every failure
// mode — unavailable client, transport error, malformed JSON, out-of-
// vocabulary value — degrades to "no contribution"; Fill never returns an
// error.
func (f *Filler) Fill(ctx context.Context, message string, partial *models.SlotAssignment, vocab tagging.Vocabulary) *models.SlotAssignment {
	if partial.Complete() {
		return partial
	}
	if f.client == nil || !f.client.Available() {
		return partial
	}

	prompt := Prompt(message, partial, vocab)
	response, err := f.client.Generate(ctx, prompt)
	if err != nil {
		f.logger.Debug("gap-fill generation failed, no contribution", "error", err)
		return partial
	}

	// Per-key raw decoding: one key of the wrong type must not poison the
	// other two.
	var raw struct {
		Cuisine json.RawMessage `json:"cuisine"`
		Area    json.RawMessage `json:"area"`
		Budget  json.RawMessage `json:"budget"`
	}
	if !llm.DecodeFirstJSONObject(response, &raw) {
		f.logger.Debug("gap-fill response had no parsable JSON object, no contribution")
		return partial
	}

	if partial.Cuisine == nil {
		partial.Cuisine = f.accept("cuisine", raw.Cuisine, vocab.Cuisines)
	}
	if partial.Area == nil {
		partial.Area = f.accept("area", raw.Area, vocab.Areas)
	}
	if partial.Budget == nil {
		partial.Budget = f.accept("budget", raw.Budget, vocab.Budgets)
	}
	return partial
}

// accept returns a tag for value only if it is a JSON string that is an
// exact member of allowed. Anything else is dropped for that slot.
func (f *Filler) accept(slot string, value json.RawMessage, allowed []string) *models.Tag {
	if len(value) == 0 || string(value) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		f.logger.Debug("gap-fill value dropped: wrong type", "slot", slot)
		return nil
	}
	for _, a := range allowed {
		if a == s {
			return &models.Tag{Name: a}
		}
	}
	f.logger.Debug("gap-fill value dropped: not in allowed vocabulary", "slot", slot, "value", s)
	return nil
}

// Prompt builds the constrained gap-fill prompt: the raw user message, the
// rule-based partial assignment as a hint, and the exact allowed-value
// lists for the three slots.
func Prompt(message string, partial *models.SlotAssignment, vocab tagging.Vocabulary) string {
	hint := func(t *models.Tag) string {
		if t == nil {
			return "unresolved"
		}
		return fmt.Sprintf("%q (already resolved, do not change)", t.Name)
	}

	return fmt.Sprintf(`You are resolving a restaurant request into three slots: cuisine, area, and budget.

## User message
%s

## Current assignment
cuisine: %s
area: %s
budget: %s

## Allowed values
cuisine must be one of: %s
area must be one of: %s
budget must be one of: %s

## Task
For each unresolved slot, pick the single allowed value that best matches the user message, or null if nothing fits. Never invent a value outside the allowed lists.

## Response Format
Respond with ONLY a JSON object (no markdown code blocks, no additional text):
{"cuisine": <string or null>, "area": <string or null>, "budget": <string or null>}`,
		message,
		hint(partial.Cuisine), hint(partial.Area), hint(partial.Budget),
		quotedList(vocab.Cuisines), quotedList(vocab.Areas), quotedList(vocab.Budgets))
}

func quotedList(values []string) string {
	if len(values) == 0 {
		return "(none available)"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
