// Package contextstore holds per-client conversational history: a bounded
// sequence of (user turn, assistant turn) pairs keyed by client identity.
package contextstore

import "sync"

// Turn is one (user, assistant) exchange.
type Turn struct {
	User      string
	Assistant string
}

type client struct {
	cap     int
	history []Turn
}

// Store is a shared, mutex-guarded map of client id to bounded history.
// The zero value is ready to use.
type Store struct {
	mu      sync.Mutex
	clients map[string]*client
}

// New returns an empty Store.
func New() *Store {
	return &Store{clients: make(map[string]*client)}
}

// Read returns a copy of clientId's history, created lazily if absent. If
// cap differs from the stored cap it is updated first, then the history is
// trimmed from the front until size <= cap.
func (s *Store) Read(clientID string, cap int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.getOrCreate(clientID, cap)
	if c.cap != cap {
		c.cap = cap
	}
	trim(c)
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}

// Append pushes a new turn for clientId, then trims to the stored cap. A
// client first seen here has no cap yet; its history is kept whole until
// the next Read applies one.
func (s *Store) Append(clientID string, userTurn, assistantTurn string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.getOrCreate(clientID, -1)
	c.history = append(c.history, Turn{User: userTurn, Assistant: assistantTurn})
	if c.cap >= 0 {
		trim(c)
	}
}

// ClearAll removes every client's history.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = make(map[string]*client)
}

func (s *Store) getOrCreate(clientID string, cap int) *client {
	if s.clients == nil {
		s.clients = make(map[string]*client)
	}
	c, ok := s.clients[clientID]
	if !ok {
		c = &client{cap: cap}
		s.clients[clientID] = c
	}
	return c
}

func trim(c *client) {
	if c.cap < 0 {
		c.cap = 0
	}
	for len(c.history) > c.cap {
		c.history = c.history[1:]
	}
}
