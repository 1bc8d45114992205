// Package recommend orchestrates the full request pipeline: normalize the
// message, match catalog tags, classify slots, gap-fill with the
// generate-text capability, resolve candidates, rank, and format the
// response. Catalog failures surface as errors; generator failures never
// do — every LLM stage degrades to its deterministic fallback.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foodkaki/makanbot/internal/catalog"
	"github.com/foodkaki/makanbot/internal/gapfill"
	"github.com/foodkaki/makanbot/internal/llm"
	"github.com/foodkaki/makanbot/internal/logging"
	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/normalize"
	"github.com/foodkaki/makanbot/internal/rank"
	"github.com/foodkaki/makanbot/internal/resolve"
	"github.com/foodkaki/makanbot/internal/respond"
	"github.com/foodkaki/makanbot/internal/sanitize"
	"github.com/foodkaki/makanbot/internal/slots"
	"github.com/foodkaki/makanbot/internal/tagging"
)

// DefaultGenerateTimeout bounds each generate-text call made by the
// pipeline (gap-fill and ranking each get their own budget).
const DefaultGenerateTimeout = 15 * time.Second

// DefaultSuggestLimit caps fuzzy area suggestions in diagnostics.
const DefaultSuggestLimit = 3

// Options tunes the engine. Zero values take defaults.
type Options struct {
	// PageSize caps candidates fetched per retrieval path.
	PageSize int

	// SuggestLimit caps fuzzy area-name suggestions.
	SuggestLimit int

	// GenerateTimeout bounds each generate-text call.
	GenerateTimeout time.Duration
}

// Result is one pipeline run. ResponseText is always set; the remaining
// fields expose the terminal state for transports that want structure
// (the MCP tool, the HTTP API's debug surface).
type Result struct {
	ResponseText string                 `json:"response_text"`
	Assignment   *models.SlotAssignment `json:"assignment"`
	Candidates   []models.Place         `json:"candidates,omitempty"`
	Ranking      *models.RankingResult  `json:"ranking,omitempty"`
}

// Engine runs the recommendation pipeline over a catalog store and a
// generate-text client.
type Engine struct {
	store     catalog.Store
	matcher   *tagging.Matcher
	filler    *gapfill.Filler
	resolver  *resolve.Resolver
	ranker    *rank.Ranker
	opts      Options
	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// New creates an Engine. client may be a disabled client (the pipeline
// then runs purely rule-based); logger and decisions may be nil.
func New(store catalog.Store, client llm.Client, opts Options, logger *slog.Logger, decisions *logging.DecisionLogger) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = catalog.DefaultPageSize
	}
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = DefaultSuggestLimit
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     store,
		matcher:   tagging.NewMatcher("Restaurant"),
		filler:    gapfill.New(client, logger),
		resolver:  resolve.New(store, opts.PageSize, logger),
		ranker:    rank.New(client, logger),
		opts:      opts,
		logger:    logger,
		decisions: decisions,
	}
}

// ResolveAndRecommend runs the full pipeline for one user message and
// returns the formatted response plus the terminal state. The only error
// condition is catalog unavailability; all generator failures degrade
// inside the pipeline.
func (e *Engine) ResolveAndRecommend(ctx context.Context, message string) (*Result, error) {
	// User text reaches generate-text prompts verbatim, so clean it first.
	message = sanitize.Message(message)
	normalized := normalize.Text(message)

	tags, err := e.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog tags: %w", err)
	}
	vocab := tagging.PartitionTags(tags)

	matched := e.matcher.Match(normalized, tags)
	matched = tagging.AppendPriceTag(message, normalized, tags, matched)
	e.decisions.Stage(logging.StageMatch, map[string]any{"matched": matched})

	assignment := slots.Classify(matched)
	e.decisions.Stage(logging.StageClassify, map[string]any{"assignment": assignment.String()})

	if !assignment.Complete() {
		fillCtx, cancel := context.WithTimeout(ctx, e.opts.GenerateTimeout)
		assignment = e.filler.Fill(fillCtx, message, assignment, vocab)
		cancel()
		e.decisions.Stage(logging.StageGapFill, map[string]any{"assignment": assignment.String()})
	}

	if !assignment.Complete() {
		return e.missingResult(normalized, assignment, vocab), nil
	}

	candidates, err := e.resolver.Resolve(ctx, assignment, message)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve candidates: %w", err)
	}
	e.decisions.Stage(logging.StageResolve, map[string]any{"candidates": len(candidates)})

	if len(candidates) == 0 {
		outcome := respond.Outcome{Assignment: assignment}
		return &Result{
			ResponseText: respond.Format(outcome),
			Assignment:   assignment,
		}, nil
	}

	e.attachTags(ctx, candidates)

	rankCtx, cancel := context.WithTimeout(ctx, e.opts.GenerateTimeout)
	ranking := e.ranker.Rank(rankCtx, message, assignment, candidates)
	cancel()
	e.decisions.Stage(logging.StageRank, map[string]any{"ranked": ranking != nil})

	outcome := respond.Outcome{
		Assignment: assignment,
		Candidates: candidates,
		Ranking:    ranking,
	}
	return &Result{
		ResponseText: respond.Format(outcome),
		Assignment:   assignment,
		Candidates:   candidates,
		Ranking:      ranking,
	}, nil
}

// missingResult builds the terminal result for an incomplete assignment,
// including the unmatched-location diagnostics when the area is the gap.
func (e *Engine) missingResult(normalized string, assignment *models.SlotAssignment, vocab tagging.Vocabulary) *Result {
	outcome := respond.Outcome{Assignment: assignment}
	if assignment.Area == nil {
		if phrase := slots.ExtractLocationPhrase(normalized); phrase != "" {
			outcome.LocationPhrase = phrase
			outcome.AreaSuggestions = slots.SuggestAreas(phrase, vocab.Areas, e.opts.SuggestLimit)
		}
	}
	return &Result{
		ResponseText: respond.Format(outcome),
		Assignment:   assignment,
	}
}

// attachTags loads each candidate's tag names for the ranking prompt.
// Failure here only degrades the prompt, never the request.
func (e *Engine) attachTags(ctx context.Context, candidates []models.Place) {
	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	tagsByID, err := e.store.TagsForPlaces(ctx, ids)
	if err != nil {
		e.logger.Warn("failed to load candidate tags for ranking", "error", err)
		return
	}
	for i := range candidates {
		candidates[i].Tags = tagsByID[candidates[i].ID]
	}
}
