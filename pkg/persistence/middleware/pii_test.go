package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/souqra/pkg/adapters/memory"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	spy := newSpyStore()
	mw, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	require.NoError(t, err)
	secureStore := mw(spy)

	ctx := context.Background()
	sessionID := "pii-session"
	state := domain.NewState(sessionID, domain.Brief{
		ProductName:        "Aero",
		ProductDescription: "Questions? Mail founder@aero.example or call +1 (555) 010-4477.",
	})
	state.SelectedPersona = &domain.Persona{PersonaName: "Night Owl", Quote: "Reach me at owl@example.org"}

	// 1. Save
	require.NoError(t, secureStore.Save(ctx, sessionID, state))

	// 2. The caller's state is untouched
	assert.Equal(t, "Reach me at owl@example.org", state.SelectedPersona.Quote)
	assert.NotSame(t, state, spy.last(sessionID))

	// 3. The backend received the masked copy
	storedState, err := spy.Load(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, "Aero", storedState.UserInput.ProductName)
	assert.Equal(t, "Questions? Mail *** or call ***.", storedState.UserInput.ProductDescription)
	assert.Equal(t, "Reach me at ***", storedState.SelectedPersona.Quote)
	assert.Equal(t, "Night Owl", storedState.SelectedPersona.PersonaName)
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	// Redaction runs first, so the masked text is what gets sealed.
	base := memory.NewStore()
	store := middleware.Chain(base, pii, enc)

	state := domain.NewState("c1", domain.Brief{ProductName: "Aero", USP: "ask sales@aero.example"})
	require.NoError(t, store.Save(ctx, "c1", state))

	raw, err := base.Load(ctx, "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ask ***", loaded.UserInput.USP)
}
