package workflow

import (
	"context"

	"github.com/aretw0/souqra/pkg/domain"
)

// StepFunc computes one step from a snapshot. It returns the partial update
// to merge; on error the update may still carry side records (such as style
// failures) and the engine adds the step's error marker.
type StepFunc func(ctx context.Context, state *domain.State) (domain.Update, error)

// Steps binds a StepFunc to every step of a definition.
type Steps map[domain.Step]StepFunc

// Covers reports the first step of d without a bound function.
func (s Steps) Covers(d Definition) (missing domain.Step, ok bool) {
	for _, step := range d.Steps {
		if s[step] == nil {
			return step, false
		}
	}
	return "", true
}
