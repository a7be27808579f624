package runtime

import (
	"context"
	"time"

	"github.com/aretw0/souqra/pkg/domain"
)

func (e *Engine) base(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now().UTC(), Type: t, SessionID: sessionID}
}

func (e *Engine) emitStepEnter(ctx context.Context, sessionID string, step domain.Step) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventStepEnter, sessionID),
		Step:      step,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, sessionID string, step domain.Step, d time.Duration, err error) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventStepLeave, sessionID),
		Step:      step,
		Duration:  d,
		Err:       err,
	})
}

func (e *Engine) emitPause(ctx context.Context, sessionID string, before domain.Step, field domain.Field) {
	if e.hooks.OnPause == nil {
		return
	}
	e.hooks.OnPause(ctx, &domain.PauseEvent{
		EventBase: e.base(domain.EventPause, sessionID),
		Before:    before,
		Field:     field,
	})
}

func (e *Engine) emitStateChange(ctx context.Context, oldState, newState *domain.State) {
	if e.hooks.OnStateChange == nil {
		return
	}
	e.hooks.OnStateChange(ctx, &domain.StateEvent{
		EventBase: e.base(domain.EventStateChange, newState.SessionID),
		Old:       oldState,
		New:       newState,
	})
}
