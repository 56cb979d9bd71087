// internal/store/memory.go
//
// In-memory session store.
// Holds one game.Session record per user for the lifetime of the process.
//
// Characteristics:
//   - Records are stored and returned by value; callers mutate a copy and
//     Save it back, so a rejected invocation never leaves partial state.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Records are never deleted; a new game overwrites the old record in place.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// ErrNotFound is returned by Get for a user with no record yet.
var ErrNotFound = errors.New("store: session not found")

// Store defines the persistence interface for session records.
type Store interface {
	// Save persists or replaces the record for user.
	Save(ctx context.Context, user game.Identity, s game.Session) error

	// Get retrieves a copy of the record for user.
	// Returns ErrNotFound if the user has never been seen.
	Get(ctx context.Context, user game.Identity) (game.Session, error)

	// Snapshot returns a copy of every record.
	Snapshot(ctx context.Context) (map[game.Identity]game.Session, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                    // guards sessions map
	sessions map[game.Identity]game.Session // keyed by user identity
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[game.Identity]game.Session)}
}

func (m *memory) Save(ctx context.Context, user game.Identity, s game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[user] = s
	return nil
}

func (m *memory) Get(ctx context.Context, user game.Identity) (game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[user]; ok {
		return s, nil
	}
	return game.Session{}, ErrNotFound
}

func (m *memory) Snapshot(ctx context.Context) (map[game.Identity]game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[game.Identity]game.Session, len(m.sessions))
	for k, v := range m.sessions {
		out[k] = v
	}
	return out, nil
}
