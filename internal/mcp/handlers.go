package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/tagging"
)

// registerTools registers all makanbot MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "recommend",
		Description: "Resolve a free-text restaurant request into cuisine/area/budget and return matching places",
	}, s.handleRecommend)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_tags",
		Description: "List the catalog's tag vocabulary, partitioned into cuisines, areas, and price tiers",
	}, s.handleListTags)

	return nil
}

func (s *Server) handleRecommend(ctx context.Context, req *sdk.CallToolRequest, args RecommendInput) (*sdk.CallToolResult, RecommendOutput, error) {
	if args.Message == "" {
		return nil, RecommendOutput{}, fmt.Errorf("message is required")
	}

	result, err := s.engine.ResolveAndRecommend(ctx, args.Message)
	if err != nil {
		return nil, RecommendOutput{}, fmt.Errorf("failed to resolve request: %w", err)
	}

	out := RecommendOutput{
		Response: result.ResponseText,
		Cuisine:  tagName(result.Assignment.Cuisine),
		Area:     tagName(result.Assignment.Area),
		Budget:   tagName(result.Assignment.Budget),
	}

	var reasons map[int64]string
	if result.Ranking != nil {
		reasons = result.Ranking.Reasons
	}
	for _, p := range result.Candidates {
		out.Candidates = append(out.Candidates, PlaceItem{
			ID:      p.ID,
			Name:    p.Name,
			Address: p.Address,
			MapLink: p.MapLink,
			Reason:  reasons[p.ID],
		})
	}

	return nil, out, nil
}

func (s *Server) handleListTags(ctx context.Context, req *sdk.CallToolRequest, args ListTagsInput) (*sdk.CallToolResult, ListTagsOutput, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, ListTagsOutput{}, fmt.Errorf("failed to list tags: %w", err)
	}

	vocab := tagging.PartitionTags(tags)

	var out ListTagsOutput
	switch args.Category {
	case "cuisine":
		out.Cuisines = vocab.Cuisines
	case "area":
		out.Areas = vocab.Areas
	case "budget":
		out.Budgets = vocab.Budgets
	case "":
		out.Cuisines = vocab.Cuisines
		out.Areas = vocab.Areas
		out.Budgets = vocab.Budgets
	default:
		return nil, ListTagsOutput{}, fmt.Errorf("unknown category %q (valid: cuisine, area, budget, or empty)", args.Category)
	}
	out.Count = len(out.Cuisines) + len(out.Areas) + len(out.Budgets)

	return nil, out, nil
}

func tagName(t *models.Tag) string {
	if t == nil {
		return ""
	}
	return t.Name
}
