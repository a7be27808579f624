package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/souqra/pkg/adapters/memory"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	// 1. Save a state with a step output
	state := domain.NewState("s1", domain.Brief{ProductName: "Aero Kettle"})
	state.MarketResearch = &domain.MarketResearch{
		TargetAudiencePersonas: []domain.Persona{{PersonaName: "Commuter"}},
	}
	require.NoError(t, store.Save(ctx, "s1", state))

	// 2. Mutating the caller's copy must not reach the store
	state.MarketResearch.TargetAudiencePersonas[0].PersonaName = "Changed"
	state.UserInput.ProductName = "Changed"

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Aero Kettle", loaded.UserInput.ProductName)
	assert.Equal(t, "Commuter", loaded.MarketResearch.TargetAudiencePersonas[0].PersonaName)

	// 3. Neither must mutating a loaded copy
	loaded.MarketResearch.TargetAudiencePersonas[0].PersonaName = "Again"
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Commuter", again.MarketResearch.TargetAudiencePersonas[0].PersonaName)
}

func TestMemoryStore_Len(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	assert.Zero(t, store.Len())

	require.NoError(t, store.Save(ctx, "a", domain.NewState("a", domain.Brief{ProductName: "x"})))
	require.NoError(t, store.Save(ctx, "b", domain.NewState("b", domain.Brief{ProductName: "y"})))
	require.NoError(t, store.Save(ctx, "a", domain.NewState("a", domain.Brief{ProductName: "z"})))
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, 1, store.Len())

	assert.Error(t, store.Save(ctx, "", domain.NewState("", domain.Brief{})))
}
