package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Apply(t *testing.T) {
	t.Run("Merges Only Present Fields", func(t *testing.T) {
		s := domain.NewState("s1", domain.Brief{ProductName: "Kettle"})
		persona := &domain.Persona{PersonaName: "Tea Lover"}

		require.NoError(t, s.Apply(domain.Update{
			MarketResearch: &domain.MarketResearch{TargetAudiencePersonas: []domain.Persona{*persona}},
		}))
		require.NoError(t, s.Apply(domain.Update{SelectedPersona: persona}))

		assert.True(t, s.HasOutput(domain.StepResearch))
		assert.True(t, s.HasSelection(domain.FieldSelectedPersona))
		assert.False(t, s.HasOutput(domain.StepStrategy))
		assert.Equal(t, "Kettle", s.UserInput.ProductName)
	})

	t.Run("Step Outputs Are Write Once", func(t *testing.T) {
		s := domain.NewState("s1", domain.Brief{ProductName: "Kettle"})
		first := &domain.KeywordStrategy{KeywordResearch: domain.KeywordResearch{Overview: "first"}}
		require.NoError(t, s.Apply(domain.Update{KeywordStrategy: first}))

		err := s.Apply(domain.Update{
			KeywordStrategy: &domain.KeywordStrategy{},
			SelectedPersona: &domain.Persona{PersonaName: "ignored"},
		})
		assert.ErrorIs(t, err, domain.ErrOutputAlreadySet)
		assert.Equal(t, "first", s.KeywordStrategy.KeywordResearch.Overview)
		assert.Nil(t, s.SelectedPersona, "a rejected update must not be partially applied")
	})

	t.Run("Failure Marker Set And Cleared", func(t *testing.T) {
		s := domain.NewState("s1", domain.Brief{ProductName: "Kettle"})
		require.NoError(t, s.Apply(domain.Update{Failure: &domain.StepFailure{Step: domain.StepResearch, Message: "timeout"}}))

		msg, ok := s.Failure(domain.StepResearch)
		require.True(t, ok)
		assert.Equal(t, "timeout", msg)

		require.NoError(t, s.Apply(domain.Update{ClearFailure: domain.StepResearch}))
		_, ok = s.Failure(domain.StepResearch)
		assert.False(t, ok)
		assert.Nil(t, s.Failures)
	})

	t.Run("Style Failures Accumulate", func(t *testing.T) {
		s := domain.NewState("s1", domain.Brief{ProductName: "Kettle"})
		require.NoError(t, s.Apply(domain.Update{
			CreativeDrafts: []domain.CreativeDraft{{Style: "Bold & Modern"}},
			StyleFailures:  map[string]string{"Playful & Engaging": "bad json"},
		}))
		assert.Len(t, s.CreativeDrafts, 1)
		assert.Equal(t, "bad json", s.StyleFailures["Playful & Engaging"])
	})
	t.Run("Clearing Creative Failure Drops Style Failures", func(t *testing.T) {
		s := domain.NewState("s1", domain.Brief{ProductName: "Kettle"})
		require.NoError(t, s.Apply(domain.Update{
			StyleFailures: map[string]string{"Bold & Modern": "timeout"},
			Failure:       &domain.StepFailure{Step: domain.StepCreative, Message: "no drafts"},
		}))

		// 1. Clearing another step keeps them
		require.NoError(t, s.Apply(domain.Update{ClearFailure: domain.StepResearch}))
		assert.Len(t, s.StyleFailures, 1)

		// 2. Clearing the creative step drops them with its marker
		require.NoError(t, s.Apply(domain.Update{ClearFailure: domain.StepCreative}))
		assert.Nil(t, s.StyleFailures)
		assert.Nil(t, s.Failures)
	})
}

func TestState_Clone(t *testing.T) {
	s := domain.NewState("s1", domain.Brief{ProductName: "Kettle"})
	s.Failures = map[domain.Step]string{domain.StepResearch: "x"}

	c := s.Clone()
	c.Failures[domain.StepStrategy] = "y"
	c.UserInput.ProductName = "Other"

	assert.Len(t, s.Failures, 1)
	assert.Equal(t, "Kettle", s.UserInput.ProductName)
}

func TestBrief_Validate(t *testing.T) {
	assert.NoError(t, domain.Brief{ProductName: "Kettle"}.Validate())
	assert.ErrorIs(t, domain.Brief{ProductName: "  "}.Validate(), domain.ErrInvalidBrief)
}

func TestCombineHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnPause: func(context.Context, *domain.PauseEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnPause:     func(context.Context, *domain.PauseEvent) { calls = append(calls, "b") },
		OnStepEnter: func(context.Context, *domain.StepEvent) { calls = append(calls, "enter") },
	}

	h := domain.CombineHooks(a, domain.LifecycleHooks{}, b)
	h.OnPause(context.Background(), &domain.PauseEvent{})
	h.OnStepEnter(context.Background(), &domain.StepEvent{})

	assert.Equal(t, []string{"a", "b", "enter"}, calls)
	assert.Nil(t, h.OnStateChange)
}
