package domain

import (
	"maps"
	"slices"
	"time"
)

// Step identifies one stage of the launch pipeline.
type Step string

const (
	StepResearch Step = "research"
	StepStrategy Step = "strategy"
	StepCreative Step = "creative"
	StepPlanning Step = "planning"
)

// Field names a selection written by a human between steps.
type Field string

const (
	FieldSelectedPersona       Field = "selected_persona"
	FieldSelectedCreativeDraft Field = "selected_creative_draft"
)

// State is the persisted record of one session.
// Position in the pipeline is derived from which fields are present;
// CurrentStep is only a label recomputed on every write.
type State struct {
	SessionID string `json:"session_id"`
	Owner     string `json:"owner,omitempty"`
	UserInput Brief  `json:"user_input"`

	MarketResearch        *MarketResearch  `json:"market_maven_output,omitempty"`
	SelectedPersona       *Persona         `json:"selected_persona,omitempty"`
	KeywordStrategy       *KeywordStrategy `json:"seo_sage_output,omitempty"`
	CreativeDrafts        []CreativeDraft  `json:"creative_drafts,omitempty"`
	SelectedCreativeDraft *CreativeDraft   `json:"selected_creative_draft,omitempty"`
	CampaignPlan          *CampaignPlan    `json:"campaign_architect_output,omitempty"`

	// Failures holds the error marker of a step that failed, keyed by step.
	Failures map[Step]string `json:"errors,omitempty"`
	// StyleFailures records creative styles that could not be generated.
	StyleFailures map[string]string `json:"style_failures,omitempty"`

	CurrentStep string    `json:"current_step,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Sealed carries the encrypted payload when the state is stored as an envelope.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates the initial record for a session.
func NewState(sessionID string, brief Brief) *State {
	return &State{
		SessionID: sessionID,
		UserInput: brief,
	}
}

// HasOutput reports whether the given step has persisted its output.
func (s *State) HasOutput(step Step) bool {
	switch step {
	case StepResearch:
		return s.MarketResearch != nil
	case StepStrategy:
		return s.KeywordStrategy != nil
	case StepCreative:
		return len(s.CreativeDrafts) > 0
	case StepPlanning:
		return s.CampaignPlan != nil
	}
	return false
}

// HasSelection reports whether the given selection field is set.
func (s *State) HasSelection(f Field) bool {
	switch f {
	case FieldSelectedPersona:
		return s.SelectedPersona != nil
	case FieldSelectedCreativeDraft:
		return s.SelectedCreativeDraft != nil
	}
	return false
}

// Failure returns the error marker of a step, if any.
func (s *State) Failure(step Step) (string, bool) {
	msg, ok := s.Failures[step]
	return msg, ok
}

// Clone returns a copy that can be mutated without affecting s.
// Step outputs are append-only, so they are shared rather than copied.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.CreativeDrafts = slices.Clone(s.CreativeDrafts)
	c.Failures = maps.Clone(s.Failures)
	c.StyleFailures = maps.Clone(s.StyleFailures)
	c.Sealed = slices.Clone(s.Sealed)
	return &c
}
