package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/recipebox/recipebox-go/internal/model"
)

// Session is the locally persisted login state.
type Session struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

// SessionStore keeps the current session in memory and mirrors it to a JSON
// file. Load it once on startup and Clear it on logout.
type SessionStore struct {
	path string

	mu      sync.Mutex
	current *Session
}

// NewSessionStore creates a store backed by the file at path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath returns the per-user session file location.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recipebox", "session.json"), nil
}

// Load reads the persisted session. A missing file means no session.
func (s *SessionStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.current = nil
			return nil
		}
		return err
	}
	defer f.Close()

	var sess Session
	if err := json.NewDecoder(f).Decode(&sess); err != nil {
		return fmt.Errorf("decoding session file %s: %w", s.path, err)
	}
	if sess.Token == "" {
		s.current = nil
		return nil
	}

	s.current = &sess
	return nil
}

// Save replaces the current session and writes it to disk with owner-only permissions.
func (s *SessionStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(sess); err != nil {
		return err
	}

	s.current = &sess
	return nil
}

// Clear forgets the session and removes the file.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Current returns the active session, if any.
func (s *SessionStore) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}
