// Package session tracks per-conversation state for the chat API. Each
// session holds a bounded turn history; idle sessions are evicted after a
// TTL so the server never accumulates abandoned conversations.
//
// All public methods are safe for concurrent use.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foodkaki/makanbot/internal/models"
)

// ErrNotFound indicates the session id is unknown or already evicted.
var ErrNotFound = errors.New("session not found")

// Config holds session manager configuration.
type Config struct {
	// TTL is how long an idle session survives before eviction.
	// Default: 30 minutes.
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// MaxTurns caps the retained history per session; older turns are
	// dropped first. Default: 20.
	MaxTurns int `json:"max_turns" yaml:"max_turns"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:      30 * time.Minute,
		MaxTurns: 20,
	}
}

// Session is one conversation. LastActive drives TTL eviction.
type Session struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	LastActive time.Time     `json:"last_active"`
	Turns      []models.Turn `json:"turns"`
}

// Manager owns the live session set.
// Thread-safe for concurrent HTTP handlers.
type Manager struct {
	mu       sync.RWMutex
	config   Config
	sessions map[string]*Session
	now      func() time.Time
}

// NewManager creates a session manager. Zero config fields take defaults.
func NewManager(config Config) *Manager {
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	if config.MaxTurns <= 0 {
		config.MaxTurns = DefaultConfig().MaxTurns
	}
	return &Manager{
		config:   config,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create starts a new session and returns its id.
func (m *Manager) Create() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	now := m.now()
	m.sessions[id] = &Session{ID: id, CreatedAt: now, LastActive: now}
	return id
}

// Touch refreshes a session's idle clock. Returns ErrNotFound for unknown
// or expired sessions.
func (m *Manager) Touch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return err
	}
	s.LastActive = m.now()
	return nil
}

// AppendTurn records one conversation turn and refreshes the idle clock.
func (m *Manager) AppendTurn(id string, turn models.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return err
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = m.now()
	}
	s.Turns = append(s.Turns, turn)
	if len(s.Turns) > m.config.MaxTurns {
		s.Turns = s.Turns[len(s.Turns)-m.config.MaxTurns:]
	}
	s.LastActive = m.now()
	return nil
}

// History returns a copy of the session's retained turns.
func (m *Manager) History(id string) ([]models.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return nil, ErrNotFound
	}
	return append([]models.Turn(nil), s.Turns...), nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.sessions {
		if !m.expired(s) {
			n++
		}
	}
	return n
}

// Sweep removes expired sessions and returns how many were evicted.
// Callers run it periodically; expired sessions are also rejected lazily
// by the accessors, so sweeping is purely a memory-reclamation concern.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Reset clears all sessions (for testing or server restart).
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*Session)
}

// live returns the session if present and unexpired, evicting it otherwise.
// Caller must hold the write lock.
func (m *Manager) live(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(s) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) expired(s *Session) bool {
	return m.now().Sub(s.LastActive) > m.config.TTL
}
