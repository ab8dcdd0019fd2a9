package ws

import "sync"

// SessionRegistry maps live connection IDs to authenticated user IDs. A
// connection appears here only after a successful authenticate message and is
// removed when the connection closes.
type SessionRegistry struct {
	mu    sync.RWMutex
	users map[string]string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		users: make(map[string]string),
	}
}

// Bind associates a connection with a user. Re-authenticating an already
// bound connection overwrites the previous binding.
func (s *SessionRegistry) Bind(connID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[connID] = userID
}

func (s *SessionRegistry) Unbind(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, connID)
}

func (s *SessionRegistry) Lookup(connID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.users[connID]
	return userID, ok
}
