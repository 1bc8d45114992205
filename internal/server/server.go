// Package server exposes the recommendation pipeline over an HTTP chat
// API. Upstream failures (catalog, generator) are mapped to opaque status
// codes; their error text is logged, never echoed to clients.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/foodkaki/makanbot/internal/models"
	"github.com/foodkaki/makanbot/internal/ratelimit"
	"github.com/foodkaki/makanbot/internal/recommend"
	"github.com/foodkaki/makanbot/internal/session"
)

// Recommender is the pipeline surface the server depends on.
type Recommender interface {
	ResolveAndRecommend(ctx context.Context, message string) (*recommend.Result, error)
}

// Server handles the chat API over a Recommender and a session manager.
type Server struct {
	engine   Recommender
	sessions *session.Manager
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
}

// New creates a Server. logger may be nil.
func New(engine Recommender, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:   engine,
		sessions: sessions,
		limiter:  ratelimit.NewChatLimiter(),
		logger:   logger,
	}
}

// Router builds the chi router for the chat API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/session", s.handleCreateSession)
	r.Post("/api/chat", s.handleChat)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string                `json:"session_id"`
	Response  string                `json:"response"`
	Ranking   *models.RankingResult `json:"ranking,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}
	if !s.limiter.Allow(req.SessionID) {
		writeError(w, http.StatusTooManyRequests, "too many messages, slow down")
		return
	}

	if err := s.sessions.AppendTurn(req.SessionID, models.Turn{Role: "user", Content: req.Message}); err != nil {
		writeError(w, http.StatusNotFound, "unknown or expired session")
		return
	}

	result, err := s.engine.ResolveAndRecommend(r.Context(), req.Message)
	if err != nil {
		// Catalog outage or similar: opaque to the client.
		s.logger.Error("recommendation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "recommendation service unavailable")
		return
	}

	if err := s.sessions.AppendTurn(req.SessionID, models.Turn{Role: "assistant", Content: result.ResponseText}); err != nil {
		s.logger.Warn("failed to record assistant turn", "error", err)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Response:  result.ResponseText,
		Ranking:   result.Ranking,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
