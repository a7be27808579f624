package retention_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/internal/retention"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func start(t *testing.T, engine *souqra.Engine, product string) string {
	t.Helper()
	state, err := engine.Start(context.Background(), ports.StartRequest{Brief: domain.Brief{ProductName: product}})
	require.NoError(t, err)
	return state.SessionID
}

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	engine, err := souqra.New(souqra.WithClock(c.Now))
	require.NoError(t, err)

	// 1. One session written long ago, one written recently
	old := start(t, engine, "Old Lamp")
	c.Advance(72 * time.Hour)
	fresh := start(t, engine, "New Lamp")
	c.Advance(time.Hour)

	sweeper, err := retention.New(engine, 24*time.Hour, retention.WithClock(c.Now))
	require.NoError(t, err)

	// 2. Sweep
	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// 3. Only the stale session is gone
	_, err = engine.Session(ctx, old)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = engine.Session(ctx, fresh)
	assert.NoError(t, err)

	// 4. A second pass has nothing to do
	n, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweeper_New(t *testing.T) {
	engine, err := souqra.New()
	require.NoError(t, err)

	_, err = retention.New(engine, 0)
	assert.Error(t, err)
}

func TestSweeper_Schedule(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	engine, err := souqra.New(souqra.WithClock(c.Now))
	require.NoError(t, err)
	id := start(t, engine, "Lamp")
	c.Advance(48 * time.Hour)

	sweeper, err := retention.New(engine, time.Hour, retention.WithClock(c.Now))
	require.NoError(t, err)

	t.Run("Invalid Expression", func(t *testing.T) {
		assert.Error(t, sweeper.Start(context.Background(), "every tuesday"))
	})

	t.Run("Runs On Schedule", func(t *testing.T) {
		require.NoError(t, sweeper.Start(context.Background(), "@every 1s"))
		defer sweeper.Stop()

		assert.Eventually(t, func() bool {
			_, err := engine.Session(context.Background(), id)
			return err != nil
		}, 5*time.Second, 50*time.Millisecond)
	})
}
