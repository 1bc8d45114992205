package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/foodkaki/makanbot/internal/catalog"
	"github.com/foodkaki/makanbot/internal/llm"
	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/recommend"
)

func testMCPServer(t *testing.T) (*Server, *catalog.MemoryStore) {
	t.Helper()

	store := catalog.NewMemoryStore()
	store.AddPlace(models.Place{Name: "Teppei", Address: "1 Tras St", MapLink: "maps://teppei"},
		"Japanese", "Tanjong Pagar", "Budget")
	store.AddPlace(models.Place{Name: "Kotuwa", Address: "2 Stanley St"},
		"Indian", "Tanjong Pagar", "Mid-Range")

	client, _ := llm.NewClient(llm.ClientConfig{})
	engine := recommend.New(store, client, recommend.Options{}, nil, nil)

	s, err := NewServer(&Config{Name: "makanbot", Version: "test"}, engine, store)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s, store
}

func TestHandleRecommend(t *testing.T) {
	s, _ := testMCPServer(t)

	_, out, err := s.handleRecommend(context.Background(), nil,
		RecommendInput{Message: "japanese in Tanjong Pagar $"})
	if err != nil {
		t.Fatalf("handleRecommend: %v", err)
	}

	if out.Cuisine != "Japanese" || out.Area != "Tanjong Pagar" || out.Budget != "Budget" {
		t.Errorf("slots = %s/%s/%s, want Japanese/Tanjong Pagar/Budget",
			out.Cuisine, out.Area, out.Budget)
	}
	if len(out.Candidates) != 1 || out.Candidates[0].Name != "Teppei" {
		t.Fatalf("candidates = %v, want only Teppei", out.Candidates)
	}
	if !strings.Contains(out.Response, "Teppei") {
		t.Errorf("response = %q, want Teppei listed", out.Response)
	}
}

func TestHandleRecommendMissingSlots(t *testing.T) {
	s, _ := testMCPServer(t)

	_, out, err := s.handleRecommend(context.Background(), nil,
		RecommendInput{Message: "something cheap"})
	if err != nil {
		t.Fatalf("handleRecommend: %v", err)
	}
	if out.Budget != "Budget" {
		t.Errorf("budget = %q, want Budget from the cheap alias", out.Budget)
	}
	if out.Cuisine != "" || out.Area != "" {
		t.Errorf("slots = %s/%s, want cuisine and area unresolved", out.Cuisine, out.Area)
	}
	if len(out.Candidates) != 0 {
		t.Errorf("candidates = %v, want none before slots resolve", out.Candidates)
	}
}

func TestHandleRecommendValidation(t *testing.T) {
	s, _ := testMCPServer(t)

	if _, _, err := s.handleRecommend(context.Background(), nil, RecommendInput{}); err == nil {
		t.Error("expected error for empty message")
	}
}

func TestHandleRecommendCatalogOutage(t *testing.T) {
	s, store := testMCPServer(t)
	store.Fail()

	if _, _, err := s.handleRecommend(context.Background(), nil,
		RecommendInput{Message: "japanese in Tanjong Pagar $"}); err == nil {
		t.Error("expected error when the catalog is unavailable")
	}
}

func TestHandleListTags(t *testing.T) {
	s, _ := testMCPServer(t)

	_, out, err := s.handleListTags(context.Background(), nil, ListTagsInput{})
	if err != nil {
		t.Fatalf("handleListTags: %v", err)
	}

	if len(out.Cuisines) != 2 {
		t.Errorf("cuisines = %v, want Japanese and Indian", out.Cuisines)
	}
	if len(out.Areas) != 1 || out.Areas[0] != "Tanjong Pagar" {
		t.Errorf("areas = %v, want [Tanjong Pagar]", out.Areas)
	}
	if len(out.Budgets) != 2 {
		t.Errorf("budgets = %v, want Budget and Mid-Range", out.Budgets)
	}
	if out.Count != 5 {
		t.Errorf("count = %d, want 5", out.Count)
	}
}

func TestHandleListTagsByCategory(t *testing.T) {
	s, _ := testMCPServer(t)

	_, out, err := s.handleListTags(context.Background(), nil, ListTagsInput{Category: "area"})
	if err != nil {
		t.Fatalf("handleListTags: %v", err)
	}
	if len(out.Areas) != 1 || len(out.Cuisines) != 0 || len(out.Budgets) != 0 {
		t.Errorf("output = %+v, want only areas", out)
	}

	if _, _, err := s.handleListTags(context.Background(), nil, ListTagsInput{Category: "drinks"}); err == nil {
		t.Error("expected error for unknown category")
	}
}
