package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/souqra/pkg/adapters/memory"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// laggyStore adds I/O latency to every read and write so an unserialized
// read-modify-write would interleave.
type laggyStore struct {
	*memory.Store
	delay time.Duration
}

func (s laggyStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(s.delay)
	return s.Store.Save(ctx, sessionID, state)
}

func (s laggyStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(s.delay)
	return s.Store.Load(ctx, sessionID)
}

func TestManager_ConcurrentMerges(t *testing.T) {
	manager := session.NewManager(laggyStore{Store: memory.NewStore(), delay: 2 * time.Millisecond})
	ctx := context.Background()
	id := "race-test"

	_, err := manager.Create(ctx, domain.NewState(id, domain.Brief{ProductName: "Kettle"}))
	require.NoError(t, err)

	// Without serialization, read-modify-write would lose style failures.
	var wg sync.WaitGroup
	styles := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, style := range styles {
		wg.Add(1)
		go func(style string) {
			defer wg.Done()
			_, err := manager.Merge(ctx, id, domain.Update{StyleFailures: map[string]string{style: "x"}})
			assert.NoError(t, err)
		}(style)
	}
	wg.Wait()

	state, err := manager.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.StyleFailures, len(styles))
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	manager := session.NewManager(memory.NewStore(), session.WithClock(func() time.Time { return fixed }))

	state, err := manager.Create(ctx, domain.NewState("s1", domain.Brief{ProductName: "Kettle"}))
	require.NoError(t, err)
	assert.Equal(t, "running_research", state.CurrentStep)
	assert.Equal(t, fixed, state.CreatedAt)

	_, err = manager.Create(ctx, domain.NewState("s1", domain.Brief{ProductName: "Other"}))
	assert.ErrorIs(t, err, domain.ErrSessionExists)

	stored, err := manager.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Kettle", stored.UserInput.ProductName, "a failed create must not overwrite")
}

func TestManager_Merge(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(memory.NewStore())

	t.Run("Unknown Session", func(t *testing.T) {
		_, err := manager.Merge(ctx, "missing", domain.Update{SelectedPersona: &domain.Persona{}})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Recomputes Label", func(t *testing.T) {
		_, err := manager.Create(ctx, domain.NewState("s2", domain.Brief{ProductName: "Kettle"}))
		require.NoError(t, err)

		state, err := manager.Merge(ctx, "s2", domain.Update{MarketResearch: &domain.MarketResearch{}})
		require.NoError(t, err)
		assert.Equal(t, "paused_before_strategy", state.CurrentStep)

		state, err = manager.Merge(ctx, "s2", domain.Update{SelectedPersona: &domain.Persona{PersonaName: "P"}})
		require.NoError(t, err)
		assert.Equal(t, "running_strategy", state.CurrentStep)
		assert.NotNil(t, state.MarketResearch, "merge keeps untouched fields")
	})

	t.Run("Rejected Update Is Not Persisted", func(t *testing.T) {
		_, err := manager.Merge(ctx, "s2", domain.Update{
			MarketResearch:  &domain.MarketResearch{ResearchSources: []string{"again"}},
			SelectedPersona: &domain.Persona{PersonaName: "Q"},
		})
		assert.ErrorIs(t, err, domain.ErrOutputAlreadySet)

		state, err := manager.Get(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, "P", state.SelectedPersona.PersonaName)
	})
}

func TestManager_Do(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(memory.NewStore())
	_, err := manager.Create(ctx, domain.NewState("tx", domain.Brief{ProductName: "Kettle"}))
	require.NoError(t, err)

	// Reads and writes inside a transaction must not deadlock on the session lock.
	done := make(chan error, 1)
	go func() {
		done <- manager.Do(ctx, "tx", func(ctx context.Context, tx *session.Tx) error {
			if _, err := tx.Get(ctx); err != nil {
				return err
			}
			_, err := tx.Merge(ctx, domain.Update{MarketResearch: &domain.MarketResearch{}})
			return err
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("transaction deadlocked")
	}

	sentinel := errors.New("abort")
	err = manager.Do(ctx, "tx", func(ctx context.Context, tx *session.Tx) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestManager_DistributedLock(t *testing.T) {
	ctx := context.Background()
	var (
		mu   sync.Mutex
		ttls []time.Duration
		held int
	)
	locker := ports.LockerFunc(func(ctx context.Context, sessionID string, ttl time.Duration) (ports.UnlockFunc, error) {
		mu.Lock()
		defer mu.Unlock()
		ttls = append(ttls, ttl)
		held++
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			held--
			return nil
		}, nil
	})
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(time.Minute),
	)

	_, err := manager.Create(ctx, domain.NewState("d1", domain.Brief{ProductName: "Kettle"}))
	require.NoError(t, err)
	require.NoError(t, manager.Delete(ctx, "d1"))

	assert.Equal(t, []time.Duration{time.Minute, time.Minute}, ttls)
	assert.Zero(t, held, "every distributed lock must be released")

	assert.ErrorIs(t, manager.Delete(ctx, "d1"), domain.ErrSessionNotFound)
}
