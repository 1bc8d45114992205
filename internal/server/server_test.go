package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foodkaki/makanbot/internal/catalog"
	"github.com/foodkaki/makanbot/internal/llm"
	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/ratelimit"
	"github.com/foodkaki/makanbot/internal/recommend"
	"github.com/foodkaki/makanbot/internal/session"
)

func testServer(t *testing.T, store catalog.Store) *Server {
	t.Helper()
	client, _ := llm.NewClient(llm.ClientConfig{})
	engine := recommend.New(store, client, recommend.Options{}, nil, nil)
	return New(engine, session.NewManager(session.DefaultConfig()), nil)
}

func seededStore() *catalog.MemoryStore {
	m := catalog.NewMemoryStore()
	m.AddPlace(models.Place{Name: "Teppei", Address: "1 Tras St"},
		"Japanese", "Tanjong Pagar", "Budget")
	return m
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/session = %d, want 201", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}
	if body["session_id"] == "" {
		t.Fatal("session_id missing from response")
	}
	return body["session_id"]
}

func postChat(h http.Handler, payload string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := testServer(t, seededStore()).Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/health = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("health body = %s, want status ok", rec.Body.String())
	}
}

func TestChatEndToEnd(t *testing.T) {
	s := testServer(t, seededStore())
	h := s.Router()
	id := createSession(t, h)

	rec := postChat(h, `{"session_id":"`+id+`","message":"japanese in Tanjong Pagar $"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/chat = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding chat response: %v", err)
	}
	if !strings.Contains(resp.Response, "Teppei") {
		t.Errorf("response = %q, want Teppei listed", resp.Response)
	}

	// Both turns recorded on the session.
	turns, err := s.sessions.History(id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(turns) != 2 || turns[0].Role != "user" || turns[1].Role != "assistant" {
		t.Errorf("history = %v, want user then assistant turn", turns)
	}
}

func TestChatValidation(t *testing.T) {
	h := testServer(t, seededStore()).Router()
	id := createSession(t, h)

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"invalid JSON", `{not json`, http.StatusBadRequest},
		{"missing message", `{"session_id":"` + id + `"}`, http.StatusBadRequest},
		{"missing session_id", `{"message":"hello"}`, http.StatusBadRequest},
		{"unknown session", `{"session_id":"nope","message":"hello"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postChat(h, tt.payload); rec.Code != tt.want {
				t.Errorf("POST /api/chat = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestChatCatalogOutageIsOpaque(t *testing.T) {
	store := seededStore()
	s := testServer(t, store)
	h := s.Router()
	id := createSession(t, h)
	store.Fail()

	rec := postChat(h, `{"session_id":"`+id+`","message":"japanese in Tanjong Pagar $"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("POST /api/chat = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sqlite") || strings.Contains(rec.Body.String(), "unavailable: ") {
		t.Errorf("body = %s, upstream error text must not be echoed", rec.Body.String())
	}
}

func TestChatRateLimited(t *testing.T) {
	s := testServer(t, seededStore())
	h := s.Router()
	id := createSession(t, h)
	payload := `{"session_id":"` + id + `","message":"japanese in Tanjong Pagar $"}`

	// Burn through the burst, then the next message must be rejected.
	for i := 0; i < ratelimit.DefaultChatBurst; i++ {
		if rec := postChat(h, payload); rec.Code != http.StatusOK {
			t.Fatalf("message %d = %d, want 200", i+1, rec.Code)
		}
	}
	if rec := postChat(h, payload); rec.Code != http.StatusTooManyRequests {
		t.Errorf("message beyond burst = %d, want 429", rec.Code)
	}

	// Another session is unaffected.
	other := createSession(t, h)
	rec := postChat(h, `{"session_id":"`+other+`","message":"japanese in Tanjong Pagar $"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("fresh session = %d, want 200", rec.Code)
	}
}

type failingEngine struct{}

func (failingEngine) ResolveAndRecommend(ctx context.Context, message string) (*recommend.Result, error) {
	return nil, errors.New("secret upstream detail")
}

func TestChatNeverEchoesEngineErrors(t *testing.T) {
	s := New(failingEngine{}, session.NewManager(session.DefaultConfig()), nil)
	h := s.Router()
	id := createSession(t, h)

	rec := postChat(h, `{"session_id":"`+id+`","message":"anything"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("POST /api/chat = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret upstream detail") {
		t.Errorf("body = %s, engine error text must not be echoed", rec.Body.String())
	}
}
