package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Store persists the session across CLI invocations, the way the browser
// client kept it in local storage. It is a cache of server-issued identity,
// never a source of truth.
type Store struct {
	path string
	log  zerolog.Logger

	mu      sync.Mutex
	current *Session
}

// NewStore creates a store backed by the given file path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads the persisted session if one exists. A missing file means no
// session and is not an error; a corrupt file is discarded.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("discarding corrupt session file")
		_ = os.Remove(s.path)
		return nil
	}
	s.current = &sess
	return nil
}

// Establish decodes the token, stores the session in memory, and persists
// it. A token that fails to decode is a login failure.
func (s *Store) Establish(token string) (*Session, error) {
	user, err := Decode(token)
	if err != nil {
		return nil, err
	}

	sess := &Session{Token: token, User: user}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write session file: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session established")
	return sess, nil
}

// Clear destroys the session in memory and on disk. Called on logout and on
// any authorization failure from the backend.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.log.Info().Str("user_id", s.current.User.ID).Msg("session cleared")
	}
	s.current = nil
	_ = os.Remove(s.path)
}

// Current returns the held session, or nil when not logged in.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	sess := *s.current
	return &sess
}

// Token returns the bearer credential, or empty when not logged in. It
// satisfies the REST client's token source.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ""
	}
	return s.current.Token
}
