package workflow

import (
	"fmt"

	"github.com/aretw0/souqra/pkg/domain"
)

// Phase is the coarse engine state of a session.
type Phase string

const (
	PhaseReady     Phase = "ready"
	PhasePaused    Phase = "paused"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// Position is where a session stands in a definition.
// Step is empty only when Phase is PhaseCompleted.
type Position struct {
	Phase Phase
	Step  domain.Step
}

// Locate derives the position of s from which fields are present.
// It never reads CurrentStep.
func (d Definition) Locate(s *domain.State) Position {
	for _, step := range d.Steps {
		if s.HasOutput(step) {
			continue
		}
		if _, failed := s.Failure(step); failed {
			return Position{Phase: PhaseFailed, Step: step}
		}
		if gate, ok := d.Gates[step]; ok && !s.HasSelection(gate) {
			return Position{Phase: PhasePaused, Step: step}
		}
		return Position{Phase: PhaseReady, Step: step}
	}
	return Position{Phase: PhaseCompleted}
}

// Label renders the position as the current_step projection.
func (p Position) Label() string {
	switch p.Phase {
	case PhaseReady:
		return fmt.Sprintf("running_%s", p.Step)
	case PhasePaused:
		return fmt.Sprintf("paused_before_%s", p.Step)
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

func (p Position) String() string {
	if p.Step == "" {
		return string(p.Phase)
	}
	return fmt.Sprintf("%s(%s)", p.Phase, p.Step)
}
