package workflow

import (
	"errors"
	"fmt"

	"github.com/aretw0/souqra/pkg/domain"
)

// Definition is the static topology of the pipeline: an ordered list of
// steps, some of which are gated by a human selection.
type Definition struct {
	Steps []domain.Step
	// Gates maps an interrupt step to the selection field that must be set
	// before it may run.
	Gates map[domain.Step]domain.Field
}

// Launch is the four-step launch-kit pipeline with its two checkpoints.
var Launch = Definition{
	Steps: []domain.Step{
		domain.StepResearch,
		domain.StepStrategy,
		domain.StepCreative,
		domain.StepPlanning,
	},
	Gates: map[domain.Step]domain.Field{
		domain.StepStrategy: domain.FieldSelectedPersona,
		domain.StepPlanning: domain.FieldSelectedCreativeDraft,
	},
}

// Validate checks the definition is usable by the engine.
func (d Definition) Validate() error {
	if len(d.Steps) == 0 {
		return errors.New("workflow has no steps")
	}
	seen := make(map[domain.Step]bool, len(d.Steps))
	for _, s := range d.Steps {
		if seen[s] {
			return fmt.Errorf("duplicate step %q", s)
		}
		seen[s] = true
	}
	for s := range d.Gates {
		if !seen[s] {
			return fmt.Errorf("interrupt on unknown step %q", s)
		}
	}
	if _, ok := d.Gates[d.Steps[0]]; ok {
		return fmt.Errorf("first step %q cannot be an interrupt", d.Steps[0])
	}
	return nil
}

// First returns the entry step.
func (d Definition) First() domain.Step {
	return d.Steps[0]
}

// Next returns the step after s. ok is false when s is the last step or unknown.
func (d Definition) Next(s domain.Step) (next domain.Step, ok bool) {
	for i, step := range d.Steps {
		if step == s && i+1 < len(d.Steps) {
			return d.Steps[i+1], true
		}
	}
	return "", false
}

// IsInterrupt reports whether s waits for a selection before running.
func (d Definition) IsInterrupt(s domain.Step) bool {
	_, ok := d.Gates[s]
	return ok
}

// Gate returns the selection field guarding s.
func (d Definition) Gate(s domain.Step) (domain.Field, bool) {
	f, ok := d.Gates[s]
	return f, ok
}

// GatedBy returns the step guarded by the selection field f.
func (d Definition) GatedBy(f domain.Field) (domain.Step, bool) {
	for _, s := range d.Steps {
		if d.Gates[s] == f {
			return s, true
		}
	}
	return "", false
}
