package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// stateFile is the default session snapshot filename.
const stateFile = "sessions.json"

// persistedState is the on-disk representation of the session set.
// Expired sessions are dropped at save time, not carried forward.
type persistedState struct {
	Config   Config              `json:"config"`
	Sessions map[string]*Session `json:"sessions"`
}

// Save persists the live sessions to a JSON file in the given directory.
// The directory must already exist.
func Save(m *Manager, dir string) error {
	m.mu.RLock()
	ps := persistedState{
		Config:   m.config,
		Sessions: make(map[string]*Session, len(m.sessions)),
	}
	for id, s := range m.sessions {
		if !m.expired(s) {
			ps.Sessions[id] = s
		}
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session state: %w", err)
	}

	path := filepath.Join(dir, stateFile)

	// Write atomically via temp file + rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing session state temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		// Clean up temp file on rename failure.
		os.Remove(tmp)
		return fmt.Errorf("renaming session state file: %w", err)
	}

	return nil
}

// Load reads a session snapshot from the given directory. If no snapshot
// exists, it returns a fresh Manager with the given config.
func Load(dir string, config Config) (*Manager, error) {
	path := filepath.Join(dir, stateFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManager(config), nil
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("unmarshaling session state: %w", err)
	}

	m := NewManager(config)
	if ps.Sessions != nil {
		m.sessions = ps.Sessions
	}
	return m, nil
}

// StateFilePath returns the expected snapshot path in the given directory.
func StateFilePath(dir string) string {
	return filepath.Join(dir, stateFile)
}

// RemoveState removes the session snapshot from the given directory.
// It is not an error if the file does not exist.
func RemoveState(dir string) error {
	path := filepath.Join(dir, stateFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session state: %w", err)
	}
	return nil
}
