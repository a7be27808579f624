package domain

import (
	"reflect"
	"sort"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStep *string `json:"current_step,omitempty"`

	// Set contains fields that were added or changed, keyed by their JSON name.
	Set map[string]any `json:"set,omitempty"`

	// Cleared lists fields that were present before and are now absent
	// (e.g. an error marker removed by a retry).
	Cleared []string `json:"cleared,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.CurrentStep != newState.CurrentStep {
		step := newState.CurrentStep
		diff.CurrentStep = &step
	}

	oldFields := map[string]any{}
	if oldState != nil {
		oldFields = trackedFields(oldState)
	}
	newFields := trackedFields(newState)

	for k, v := range newFields {
		if old, ok := oldFields[k]; !ok || !reflect.DeepEqual(old, v) {
			if diff.Set == nil {
				diff.Set = make(map[string]any)
			}
			diff.Set[k] = v
		}
	}
	for k := range oldFields {
		if _, ok := newFields[k]; !ok {
			diff.Cleared = append(diff.Cleared, k)
		}
	}
	sort.Strings(diff.Cleared)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// trackedFields returns the present fields of s keyed by JSON name.
func trackedFields(s *State) map[string]any {
	f := map[string]any{"user_input": s.UserInput}
	if s.MarketResearch != nil {
		f["market_maven_output"] = s.MarketResearch
	}
	if s.SelectedPersona != nil {
		f["selected_persona"] = s.SelectedPersona
	}
	if s.KeywordStrategy != nil {
		f["seo_sage_output"] = s.KeywordStrategy
	}
	if len(s.CreativeDrafts) > 0 {
		f["creative_drafts"] = s.CreativeDrafts
	}
	if s.SelectedCreativeDraft != nil {
		f["selected_creative_draft"] = s.SelectedCreativeDraft
	}
	if s.CampaignPlan != nil {
		f["campaign_architect_output"] = s.CampaignPlan
	}
	if len(s.Failures) > 0 {
		f["errors"] = s.Failures
	}
	if len(s.StyleFailures) > 0 {
		f["style_failures"] = s.StyleFailures
	}
	return f
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentStep == nil && len(d.Set) == 0 && len(d.Cleared) == 0
}
