package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/souqra/pkg/domain"
)

// Store keeps encoded session snapshots in a map.
//
// States are stored in their JSON form so a session read back from memory
// looks exactly like one read back from the file or SQL backends: pointers
// are never shared with the caller and fields without a JSON form are dropped.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewStore returns an empty store. It is the library default backend.
func NewStore() *Store {
	return &Store{sessions: make(map[string][]byte)}
}

func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if sessionID == "" {
		return fmt.Errorf("memory: empty session id")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("memory: failed to encode session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	s.sessions[sessionID] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("memory: corrupt session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Delete is idempotent.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// List returns the stored session ids sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	return ids, nil
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
