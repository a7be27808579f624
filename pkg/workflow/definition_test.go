package workflow_test

import (
	"testing"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunch_Topology(t *testing.T) {
	d := workflow.Launch
	require.NoError(t, d.Validate())

	assert.Equal(t, domain.StepResearch, d.First())

	next, ok := d.Next(domain.StepResearch)
	assert.True(t, ok)
	assert.Equal(t, domain.StepStrategy, next)

	_, ok = d.Next(domain.StepPlanning)
	assert.False(t, ok, "planning is terminal")

	assert.True(t, d.IsInterrupt(domain.StepStrategy))
	assert.True(t, d.IsInterrupt(domain.StepPlanning))
	assert.False(t, d.IsInterrupt(domain.StepCreative))

	step, ok := d.GatedBy(domain.FieldSelectedCreativeDraft)
	assert.True(t, ok)
	assert.Equal(t, domain.StepPlanning, step)
}

func TestDefinition_Validate(t *testing.T) {
	cases := map[string]workflow.Definition{
		"empty":           {},
		"duplicate":       {Steps: []domain.Step{"a", "a"}},
		"unknown gate":    {Steps: []domain.Step{"a"}, Gates: map[domain.Step]domain.Field{"b": "f"}},
		"gate first step": {Steps: []domain.Step{"a", "b"}, Gates: map[domain.Step]domain.Field{"a": "f"}},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, d.Validate())
		})
	}
}

func TestLocate(t *testing.T) {
	d := workflow.Launch
	persona := &domain.Persona{PersonaName: "P"}
	draft := &domain.CreativeDraft{Style: "Bold & Modern"}

	tests := []struct {
		name  string
		state *domain.State
		want  workflow.Position
		label string
	}{
		{
			name:  "Fresh Session",
			state: &domain.State{},
			want:  workflow.Position{Phase: workflow.PhaseReady, Step: domain.StepResearch},
			label: "running_research",
		},
		{
			name:  "Paused Before Strategy",
			state: &domain.State{MarketResearch: &domain.MarketResearch{}},
			want:  workflow.Position{Phase: workflow.PhasePaused, Step: domain.StepStrategy},
			label: "paused_before_strategy",
		},
		{
			name:  "Persona Selected",
			state: &domain.State{MarketResearch: &domain.MarketResearch{}, SelectedPersona: persona},
			want:  workflow.Position{Phase: workflow.PhaseReady, Step: domain.StepStrategy},
			label: "running_strategy",
		},
		{
			name: "Strategy Done Creative Pending",
			state: &domain.State{MarketResearch: &domain.MarketResearch{}, SelectedPersona: persona,
				KeywordStrategy: &domain.KeywordStrategy{}},
			want:  workflow.Position{Phase: workflow.PhaseReady, Step: domain.StepCreative},
			label: "running_creative",
		},
		{
			name: "Paused Before Planning",
			state: &domain.State{MarketResearch: &domain.MarketResearch{}, SelectedPersona: persona,
				KeywordStrategy: &domain.KeywordStrategy{}, CreativeDrafts: []domain.CreativeDraft{*draft}},
			want:  workflow.Position{Phase: workflow.PhasePaused, Step: domain.StepPlanning},
			label: "paused_before_planning",
		},
		{
			name: "Completed",
			state: &domain.State{MarketResearch: &domain.MarketResearch{}, SelectedPersona: persona,
				KeywordStrategy: &domain.KeywordStrategy{}, CreativeDrafts: []domain.CreativeDraft{*draft},
				SelectedCreativeDraft: draft, CampaignPlan: &domain.CampaignPlan{}},
			want:  workflow.Position{Phase: workflow.PhaseCompleted},
			label: "completed",
		},
		{
			name:  "Failed Research",
			state: &domain.State{Failures: map[domain.Step]string{domain.StepResearch: "boom"}},
			want:  workflow.Position{Phase: workflow.PhaseFailed, Step: domain.StepResearch},
			label: "failed",
		},
		{
			name: "Failure Marker Wins Over Gate",
			state: &domain.State{MarketResearch: &domain.MarketResearch{},
				Failures: map[domain.Step]string{domain.StepStrategy: "boom"}},
			want:  workflow.Position{Phase: workflow.PhaseFailed, Step: domain.StepStrategy},
			label: "failed",
		},
		{
			name:  "Stale Label Is Ignored",
			state: &domain.State{CurrentStep: "completed"},
			want:  workflow.Position{Phase: workflow.PhaseReady, Step: domain.StepResearch},
			label: "running_research",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Locate(tt.state)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.label, got.Label())
		})
	}
}
