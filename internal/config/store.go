package config

import (
	"context"
	"sync"

	"github.com/projectmoil/gateway/internal/keyrotator"
	"github.com/projectmoil/gateway/internal/ports"
)

// Store publishes a configuration Snapshot atomically to readers and owns
// the credential pool derived from it. GetConfig is the only supported way
// to read: it returns a by-value copy taken under the config lock.
type Store struct {
	cfgMu sync.Mutex
	cur   Snapshot

	keys *keyrotator.Rotator

	// glossary is notified of path changes on every UpdateConfig while
	// glossary support is enabled; nil if the host didn't wire one.
	glossary ports.GlossaryProvider
}

// New builds a Store seeded with initial and wired to rotate initial's
// credential list immediately.
func New(initial Snapshot) *Store {
	s := &Store{cur: initial, keys: keyrotator.New(initial.APIKey)}
	return s
}

// SetGlossaryProvider wires the provider that UpdateConfig notifies of
// path changes. Optional — a nil provider means glossary notification is
// skipped even if EnableGlossary is true.
func (s *Store) SetGlossaryProvider(g ports.GlossaryProvider) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.glossary = g
}

// GetConfig returns a by-value copy of the current snapshot.
func (s *Store) GetConfig() Snapshot {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	return s.cur
}

// Keys returns the credential rotator backing the current snapshot.
func (s *Store) Keys() *keyrotator.Rotator {
	return s.keys
}

// UpdateConfig replaces the snapshot, rebuilds the credential pool, and
// resets its cursor to 0 — all under the credential lock acquired before
// the config lock, the fixed order the original uses
// (std::lock_guard keyLock(m_keyMutex) then cfgLock(m_configMutex)) to
// avoid deadlocking against a concurrent Next() call on the rotator. If
// glossary support is enabled, the glossary provider (if wired) is
// notified of the new path.
func (s *Store) UpdateConfig(ctx context.Context, next Snapshot) error {
	s.keys.Lock()
	defer s.keys.Unlock()

	s.cfgMu.Lock()
	s.cur = next
	glossary := s.glossary
	s.cfgMu.Unlock()

	s.keys.RebuildLocked(next.APIKey)

	if next.EnableGlossary && glossary != nil {
		return glossary.SetPath(ctx, next.GlossaryPath)
	}
	return nil
}
