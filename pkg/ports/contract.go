package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a state with a step output and a selection
		state := domain.NewState(sessionID, domain.Brief{ProductName: "Contract Lamp", USP: "glows"})
		state.Owner = "alice"
		state.MarketResearch = &domain.MarketResearch{
			TargetAudiencePersonas: []domain.Persona{{PersonaName: "Reader", Quote: "more light"}},
			CompetitorSummary:      map[string]any{"acme": "cheap"},
		}
		state.SelectedPersona = &state.MarketResearch.TargetAudiencePersonas[0]
		state.CurrentStep = "running_strategy"
		state.CreatedAt = time.Now().UTC().Truncate(time.Second)
		state.UpdatedAt = state.CreatedAt

		// 2. Save
		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, "alice", loaded.Owner)
		assert.Equal(t, "Contract Lamp", loaded.UserInput.ProductName)
		assert.Equal(t, "running_strategy", loaded.CurrentStep)
		require.NotNil(t, loaded.MarketResearch)
		assert.Equal(t, "more light", loaded.MarketResearch.TargetAudiencePersonas[0].Quote)
		require.NotNil(t, loaded.SelectedPersona)
		assert.Equal(t, "Reader", loaded.SelectedPersona.PersonaName)
		assert.True(t, state.CreatedAt.Equal(loaded.CreatedAt), "timestamps must round-trip")
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		state := domain.NewState(sessionID, domain.Brief{ProductName: "Contract Lamp"})
		state.Failures = map[domain.Step]string{domain.StepResearch: "boom"}
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Nil(t, loaded.MarketResearch)
		assert.Equal(t, "boom", loaded.Failures[domain.StepResearch])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, domain.Brief{ProductName: "x"}))
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 sessions
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, domain.Brief{ProductName: "one"})))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, domain.Brief{ProductName: "two"})))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
