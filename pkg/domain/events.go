package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter   EventType = "step_enter"
	EventStepLeave   EventType = "step_leave"
	EventPause       EventType = "pause"
	EventStateChange EventType = "state_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
// Duration and Err are only set on leave.
type StepEvent struct {
	EventBase
	Step     Step          `json:"step"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// PauseEvent is emitted when a run halts waiting for a selection.
type PauseEvent struct {
	EventBase
	Before Step  `json:"before"`
	Field  Field `json:"field"`
}

// StateEvent carries the snapshots before and after a persisted write.
// Old is nil for the initial write.
type StateEvent struct {
	EventBase
	Old *State `json:"-"`
	New *State `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter   func(context.Context, *StepEvent)
	OnStepLeave   func(context.Context, *StepEvent)
	OnPause       func(context.Context, *PauseEvent)
	OnStateChange func(context.Context, *StateEvent)
}

// CombineHooks fans every callback out to all given hook sets, in order.
func CombineHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hooks {
		out.OnStepEnter = chain(out.OnStepEnter, h.OnStepEnter)
		out.OnStepLeave = chain(out.OnStepLeave, h.OnStepLeave)
		out.OnPause = chain(out.OnPause, h.OnPause)
		out.OnStateChange = chain(out.OnStateChange, h.OnStateChange)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
