// Package keyrotator round-robins a pool of upstream API credentials.
package keyrotator

import (
	"strings"
	"sync"
)

// Rotator hands out API keys round-robin. The zero value is an empty pool.
type Rotator struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// New builds a Rotator from a comma-separated credential string, trimming
// whitespace and dropping empty entries.
func New(raw string) *Rotator {
	r := &Rotator{}
	r.Rebuild(raw)
	return r
}

// Rebuild replaces the pool from a fresh comma-separated credential string
// and resets the cursor to 0, as updateConfig does on every snapshot swap.
func (r *Rotator) Rebuild(raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RebuildLocked(raw)
}

// RebuildLocked is Rebuild's body, for callers that already hold Lock — used
// by config.Store.UpdateConfig, which must co-acquire the credential lock
// and the config lock in a fixed order (see spec §4.J / §5).
func (r *Rotator) RebuildLocked(raw string) {
	keys := make([]string, 0, strings.Count(raw, ",")+1)
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}
	r.keys = keys
	r.cursor = 0
}

// Lock and Unlock expose the rotator's mutex directly so config.Store can
// co-acquire it alongside the config lock in UpdateConfig, matching the
// explicit two-lock ordering the original implementation uses
// (std::lock_guard keyLock then cfgLock) to avoid deadlocking against a
// concurrent Next() call.
func (r *Rotator) Lock()   { r.mu.Lock() }
func (r *Rotator) Unlock() { r.mu.Unlock() }

// Next returns the current key and advances the cursor modulo pool size.
// Returns "" if the pool is empty.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return ""
	}
	k := r.keys[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.keys)
	return k
}

// Len reports the current pool size.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}
