package middleware_test

import (
	"context"
	"sync"

	"github.com/aretw0/souqra/pkg/adapters/memory"
	"github.com/aretw0/souqra/pkg/domain"
)

// spyStore is a memory store that remembers the exact value handed to it on
// each save, so tests can inspect what a middleware passed down.
type spyStore struct {
	*memory.Store

	mu      sync.Mutex
	written map[string]*domain.State
	deletes []string
}

func newSpyStore() *spyStore {
	return &spyStore{Store: memory.NewStore(), written: map[string]*domain.State{}}
}

func (s *spyStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	s.mu.Lock()
	s.written[sessionID] = state
	s.mu.Unlock()
	return s.Store.Save(ctx, sessionID, state)
}

func (s *spyStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, sessionID)
	s.mu.Unlock()
	return s.Store.Delete(ctx, sessionID)
}

func (s *spyStore) last(sessionID string) *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written[sessionID]
}
