package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/workflow"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
// It must outlast a full run, which includes several model calls.
const DefaultLockTTL = 5 * time.Minute

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
//
// Every write goes through a merge: the stored snapshot is loaded, the update
// applied field by field, the current_step label recomputed and the result
// saved, all while holding the session lock.
type Manager struct {
	store ports.StateStore
	def   workflow.Definition

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefinition sets the workflow used to compute the current_step label.
func WithDefinition(def workflow.Definition) Option {
	return func(m *Manager) {
		m.def = def
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		def:     workflow.Launch,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Get returns the latest persisted snapshot. It does not take the session lock,
// so it may observe a run in progress but never a partial write.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.store.Load(ctx, sessionID)
}

// Create performs the initial write of a session.
// It fails with domain.ErrSessionExists if the ID is already stored.
func (m *Manager) Create(ctx context.Context, state *domain.State) (*domain.State, error) {
	var created *domain.State
	err := m.Do(ctx, state.SessionID, func(ctx context.Context, tx *Tx) error {
		var err error
		created, err = tx.Create(ctx, state)
		return err
	})
	return created, err
}

// Merge applies a partial update to a stored session and returns the full snapshot.
// It never creates a session: a missing ID yields domain.ErrSessionNotFound.
func (m *Manager) Merge(ctx context.Context, sessionID string, update domain.Update) (*domain.State, error) {
	var merged *domain.State
	err := m.Do(ctx, sessionID, func(ctx context.Context, tx *Tx) error {
		var err error
		merged, err = tx.Merge(ctx, update)
		return err
	})
	return merged, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, sessionID); err != nil {
			return err
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Do runs fn as a transaction on one session: the session lock is held for
// the whole call and tx reads and writes without re-acquiring it.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *Tx) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return fn(ctx, &Tx{m: m, sessionID: sessionID})
	})
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The run context may already be cancelled; release with a fresh one.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Tx is a handle on a locked session, valid only inside Manager.Do.
type Tx struct {
	m         *Manager
	sessionID string
}

// SessionID returns the ID of the locked session.
func (tx *Tx) SessionID() string {
	return tx.sessionID
}

// Get loads the stored snapshot.
func (tx *Tx) Get(ctx context.Context) (*domain.State, error) {
	return tx.m.store.Load(ctx, tx.sessionID)
}

// Create writes the initial snapshot.
func (tx *Tx) Create(ctx context.Context, state *domain.State) (*domain.State, error) {
	if state.SessionID != tx.sessionID {
		return nil, fmt.Errorf("session id mismatch: %q != %q", state.SessionID, tx.sessionID)
	}
	_, err := tx.m.store.Load(ctx, tx.sessionID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionExists, tx.sessionID)
	case !errors.Is(err, domain.ErrSessionNotFound):
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}

	s := state.Clone()
	now := tx.m.now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.CurrentStep = tx.m.def.Locate(s).Label()

	if err := tx.m.store.Save(ctx, tx.sessionID, s); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	return s.Clone(), nil
}

// Merge applies update to the stored snapshot and persists the result.
func (tx *Tx) Merge(ctx context.Context, update domain.Update) (*domain.State, error) {
	s, err := tx.m.store.Load(ctx, tx.sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(update); err != nil {
		return nil, err
	}
	s.UpdatedAt = tx.m.now().UTC()
	s.CurrentStep = tx.m.def.Locate(s).Label()

	if err := tx.m.store.Save(ctx, tx.sessionID, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s.Clone(), nil
}
