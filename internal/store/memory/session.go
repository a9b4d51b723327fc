package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/store"
)

// Store keeps sessions in process memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*domain.SessionState
	now      func() time.Time
}

var _ store.SessionStore = (*Store)(nil)

// NewStore creates an empty in-memory session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*domain.SessionState),
		now:      time.Now,
	}
}

// Name implements store.SessionStore
func (s *Store) Name() string { return store.BackendMemory }

// Ping implements store.SessionStore; memory is always reachable
func (s *Store) Ping(context.Context) error { return nil }

// Get returns a copy of the session
func (s *Store) Get(_ context.Context, id string) (*domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrSessionNotFound, id)
	}
	return state.Clone(), nil
}

// Update runs fn on a copy and keeps it only when fn succeeds
func (s *Store) Update(_ context.Context, id string, fn store.UpdateFunc) (*domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	var working *domain.SessionState
	if current, ok := s.sessions[id]; ok {
		working = current.Clone()
	} else {
		working = domain.NewSessionState(id, now)
	}

	if err := fn(working); err != nil {
		return nil, err
	}

	working.UpdatedAt = now
	s.sessions[id] = working
	return working.Clone(), nil
}

// Delete removes the session
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Len implements store.SessionStore
func (s *Store) Len(context.Context) (int, error) { return s.Count(), nil }

// Sweep evicts sessions not updated within idleTTL and returns how many were removed
func (s *Store) Sweep(now time.Time, idleTTL time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, state := range s.sessions {
		if now.Sub(state.UpdatedAt) > idleTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
