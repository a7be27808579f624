package souqra_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/internal/adapters/file"
	"github.com/aretw0/souqra/internal/testutils"
	"github.com/aretw0/souqra/pkg/adapters/llm"
	"github.com/aretw0/souqra/pkg/adapters/memory"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...souqra.Option) *souqra.Engine {
	t.Helper()
	engine, err := souqra.New(opts...)
	require.NoError(t, err)
	return engine
}

func start(t *testing.T, engine *souqra.Engine, owner string) *domain.State {
	t.Helper()
	state, err := engine.Start(context.Background(), ports.StartRequest{
		Brief: domain.Brief{ProductName: "Aero", USP: "lightweight"},
		Owner: owner,
	})
	require.NoError(t, err)
	return state
}

func TestEngine_Start(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, souqra.WithIDGenerator(func() string { return "fixed-id" }))

	t.Run("Snapshot At First Pause", func(t *testing.T) {
		state := start(t, engine, "alice")
		assert.Equal(t, "fixed-id", state.SessionID)
		assert.Equal(t, "alice", state.Owner)
		assert.Equal(t, "Aero", state.UserInput.ProductName)
		require.NotNil(t, state.MarketResearch)
		assert.NotEmpty(t, state.MarketResearch.TargetAudiencePersonas)
		assert.Equal(t, "paused_before_strategy", state.CurrentStep)
		assert.Nil(t, state.KeywordStrategy, "never advances past the first interrupt")
	})

	t.Run("Missing Product Name", func(t *testing.T) {
		_, err := engine.Start(ctx, ports.StartRequest{Brief: domain.Brief{ProductName: "   "}})
		assert.ErrorIs(t, err, domain.ErrInvalidBrief)
	})

	t.Run("Oversized Brief", func(t *testing.T) {
		_, err := engine.Start(ctx, ports.StartRequest{Brief: domain.Brief{
			ProductName:        "Aero",
			ProductDescription: strings.Repeat("x", 10000),
		}})
		assert.ErrorIs(t, err, domain.ErrInvalidBrief)
	})

	t.Run("Control Characters Stripped", func(t *testing.T) {
		e := newEngine(t)
		state, err := e.Start(ctx, ports.StartRequest{Brief: domain.Brief{ProductName: "Aero\x1b[31m "}})
		require.NoError(t, err)
		assert.Equal(t, "Aero[31m", state.UserInput.ProductName)
	})
}

func TestEngine_SubmitFeedback(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)

	t.Run("Persona By Name", func(t *testing.T) {
		state := start(t, engine, "")
		name := state.MarketResearch.TargetAudiencePersonas[0].PersonaName

		raw, _ := json.Marshal(strings.ToUpper(name))
		next, err := engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedPersona, raw)
		require.NoError(t, err)
		assert.Equal(t, state.MarketResearch.TargetAudiencePersonas[0], *next.SelectedPersona)
		assert.Equal(t, "paused_before_planning", next.CurrentStep)
		assert.Len(t, next.CreativeDrafts, 3)
	})

	t.Run("Persona Stub Is Completed", func(t *testing.T) {
		state := start(t, engine, "")
		want := state.MarketResearch.TargetAudiencePersonas[0]

		raw, _ := json.Marshal(map[string]string{"persona_name": want.PersonaName})
		next, err := engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedPersona, raw)
		require.NoError(t, err)
		assert.Equal(t, want, *next.SelectedPersona)
	})

	t.Run("Edited Draft Keeps Generated Style", func(t *testing.T) {
		state := start(t, engine, "")
		state, err := engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedPersona, json.RawMessage(`0`))
		require.NoError(t, err)

		edited := state.CreativeDrafts[2]
		edited.Style = strings.ToLower(edited.Style)
		edited.Muse.VisualInspirationKeywords = []string{"hand-picked"}
		raw, _ := json.Marshal(edited)

		done, err := engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedCreativeDraft, raw)
		require.NoError(t, err)
		assert.Equal(t, "completed", done.CurrentStep)
		assert.Equal(t, domain.DefaultStyles[2], done.SelectedCreativeDraft.Style)
		assert.Equal(t, []string{"hand-picked"}, done.SelectedCreativeDraft.Muse.VisualInspirationKeywords)
		require.NotNil(t, done.CampaignPlan)
		assert.NotEmpty(t, done.CampaignPlan.LaunchCampaignStrategy.LaunchPlan30Days)
	})

	t.Run("Invalid Selections", func(t *testing.T) {
		state := start(t, engine, "")
		for name, raw := range map[string]string{
			"null":          `null`,
			"empty string":  `""`,
			"empty object":  `{}`,
			"unknown name":  `"Nobody"`,
			"out of range":  `42`,
			"unnamed":       `{"quote":"hi"}`,
			"not a choice":  `true`,
		} {
			t.Run(name, func(t *testing.T) {
				_, err := engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedPersona, json.RawMessage(raw))
				assert.ErrorIs(t, err, domain.ErrInvalidSelection)
			})
		}

		after, err := engine.Session(ctx, state.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "paused_before_strategy", after.CurrentStep, "rejected selections write nothing")
	})

	t.Run("Draft Before Persona", func(t *testing.T) {
		state := start(t, engine, "")
		_, err := engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedCreativeDraft, json.RawMessage(`0`))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Unknown Session", func(t *testing.T) {
		_, err := engine.SubmitFeedback(ctx, "missing", domain.FieldSelectedPersona, json.RawMessage(`0`))
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestEngine_Kits(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t)

	complete := func(owner string) string {
		s := start(t, engine, owner)
		_, err := engine.SubmitFeedback(ctx, s.SessionID, domain.FieldSelectedPersona, json.RawMessage(`0`))
		require.NoError(t, err)
		_, err = engine.SubmitFeedback(ctx, s.SessionID, domain.FieldSelectedCreativeDraft, json.RawMessage(`0`))
		require.NoError(t, err)
		return s.SessionID
	}

	aliceDone := complete("alice")
	complete("bob")
	start(t, engine, "alice") // paused, not a kit

	kits, err := engine.Kits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, kits, 1)
	assert.Equal(t, aliceDone, kits[0].SessionID)
	assert.Equal(t, "completed", kits[0].Status)
	assert.Equal(t, domain.DefaultStyles[0], kits[0].Style)

	all, err := engine.Kits(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	md, err := engine.Report(ctx, aliceDone)
	require.NoError(t, err)
	assert.Contains(t, md, "## Launch plan")
}

// TestEngine_Durability resumes a paused session from a second engine
// sharing only the file store.
func TestEngine_Durability(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := newEngine(t, souqra.WithStore(file.New(dir)))
	state := start(t, first, "")

	second := newEngine(t, souqra.WithStore(file.New(dir)))
	restored, err := second.Session(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "paused_before_strategy", restored.CurrentStep)

	next, err := second.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedPersona, json.RawMessage(`0`))
	require.NoError(t, err)
	assert.Equal(t, "paused_before_planning", next.CurrentStep)
	assert.True(t, next.UpdatedAt.After(state.CreatedAt) || next.UpdatedAt.Equal(state.CreatedAt))
	assert.WithinDuration(t, time.Now(), next.UpdatedAt, time.Minute)
}

func TestEngine_DefaultStore(t *testing.T) {
	t.Run("Memory Store Is Announced", func(t *testing.T) {
		var buf bytes.Buffer
		engine := newEngine(t, souqra.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		assert.IsType(t, &memory.Store{}, engine.Store())
		assert.Contains(t, buf.String(), "sessions are kept in memory")
	})

	t.Run("Explicit Store Is Silent", func(t *testing.T) {
		var buf bytes.Buffer
		store := file.New(t.TempDir())
		engine := newEngine(t, souqra.WithStore(store), souqra.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		assert.Same(t, store, engine.Store())
		assert.NotContains(t, buf.String(), "sessions are kept in memory")
	})
}

func TestEngine_Retry(t *testing.T) {
	ctx := context.Background()
	gen := testutils.NewFlakyGenerator(llm.NewDryRun(), map[string]int{"keyword_strategy": 1})
	engine := newEngine(t, souqra.WithGenerator(gen))
	state := start(t, engine, "alice")

	// 1. The strategy step fails once
	failed, err := engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedPersona, json.RawMessage(`0`))
	require.NoError(t, err, "a step failure is data, not an error")
	assert.Equal(t, "failed", failed.CurrentStep)
	assert.Contains(t, failed.Failures[domain.StepStrategy], "model unavailable")
	assert.NotNil(t, failed.SelectedPersona, "the selection survives the failure")

	kits, err := engine.Kits(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, kits)

	// 2. Resume does not clear the marker
	again, err := engine.Resume(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "failed", again.CurrentStep)
	assert.Equal(t, 1, gen.Calls("keyword_strategy"))

	// 3. Retry runs the step again and continues to the next pause
	retried, err := engine.Retry(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "paused_before_planning", retried.CurrentStep)
	assert.Empty(t, retried.Failures)
	assert.Equal(t, 2, gen.Calls("keyword_strategy"))

	// 4. A creative step where every style failed starts clean on retry
	creativeGen := testutils.NewFlakyGenerator(llm.NewDryRun(), map[string]int{"creative_draft": len(domain.DefaultStyles)})
	creative := newEngine(t, souqra.WithGenerator(creativeGen), souqra.WithConcurrency(1))
	s := start(t, creative, "alice")

	failed, err = creative.SubmitFeedback(ctx, s.SessionID, domain.FieldSelectedPersona, json.RawMessage(`0`))
	require.NoError(t, err)
	assert.Equal(t, "failed", failed.CurrentStep)
	assert.Empty(t, failed.CreativeDrafts)
	assert.Len(t, failed.StyleFailures, len(domain.DefaultStyles))

	retried, err = creative.Retry(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "paused_before_planning", retried.CurrentStep)
	assert.Len(t, retried.CreativeDrafts, len(domain.DefaultStyles))
	assert.Empty(t, retried.StyleFailures, "style failures of the failed attempt are dropped")

	stored, err := creative.Session(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Empty(t, stored.StyleFailures)
}
