package domain

import "fmt"

// StepFailure sets the error marker of a step.
type StepFailure struct {
	Step    Step
	Message string
}

// Update is a partial write to a session. Nil fields are left untouched.
type Update struct {
	MarketResearch        *MarketResearch
	SelectedPersona       *Persona
	KeywordStrategy       *KeywordStrategy
	CreativeDrafts        []CreativeDraft
	StyleFailures         map[string]string
	SelectedCreativeDraft *CreativeDraft
	CampaignPlan          *CampaignPlan

	Failure      *StepFailure
	ClearFailure Step
}

// IsEmpty reports whether applying u would change nothing.
func (u Update) IsEmpty() bool {
	return u.MarketResearch == nil &&
		u.SelectedPersona == nil &&
		u.KeywordStrategy == nil &&
		len(u.CreativeDrafts) == 0 &&
		len(u.StyleFailures) == 0 &&
		u.SelectedCreativeDraft == nil &&
		u.CampaignPlan == nil &&
		u.Failure == nil &&
		u.ClearFailure == ""
}

// Apply merges u into s field by field. Clearing the creative failure also
// drops the recorded style failures. Step outputs are write-once:
// setting one that is already present fails with ErrOutputAlreadySet and
// leaves s unchanged.
func (s *State) Apply(u Update) error {
	for _, step := range u.outputs() {
		if s.HasOutput(step) {
			return fmt.Errorf("%w: %s", ErrOutputAlreadySet, step)
		}
	}

	if u.MarketResearch != nil {
		s.MarketResearch = u.MarketResearch
	}
	if u.KeywordStrategy != nil {
		s.KeywordStrategy = u.KeywordStrategy
	}
	if len(u.CreativeDrafts) > 0 {
		s.CreativeDrafts = u.CreativeDrafts
	}
	if u.CampaignPlan != nil {
		s.CampaignPlan = u.CampaignPlan
	}
	if u.SelectedPersona != nil {
		s.SelectedPersona = u.SelectedPersona
	}
	if u.SelectedCreativeDraft != nil {
		s.SelectedCreativeDraft = u.SelectedCreativeDraft
	}
	if u.ClearFailure == StepCreative {
		s.StyleFailures = nil
	}
	if len(u.StyleFailures) > 0 {
		if s.StyleFailures == nil {
			s.StyleFailures = make(map[string]string, len(u.StyleFailures))
		}
		for style, msg := range u.StyleFailures {
			s.StyleFailures[style] = msg
		}
	}
	if u.ClearFailure != "" {
		delete(s.Failures, u.ClearFailure)
		if len(s.Failures) == 0 {
			s.Failures = nil
		}
	}
	if u.Failure != nil {
		if s.Failures == nil {
			s.Failures = make(map[Step]string)
		}
		s.Failures[u.Failure.Step] = u.Failure.Message
	}
	return nil
}

func (u Update) outputs() []Step {
	var steps []Step
	if u.MarketResearch != nil {
		steps = append(steps, StepResearch)
	}
	if u.KeywordStrategy != nil {
		steps = append(steps, StepStrategy)
	}
	if len(u.CreativeDrafts) > 0 {
		steps = append(steps, StepCreative)
	}
	if u.CampaignPlan != nil {
		steps = append(steps, StepPlanning)
	}
	return steps
}
