package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/session"
	"github.com/aretw0/souqra/pkg/workflow"
)

// Engine drives sessions through a workflow definition.
// Its position in a session is always derived from the stored snapshot,
// so every entry point is safe to replay.
type Engine struct {
	sessions *session.Manager
	def      workflow.Definition
	steps    workflow.Steps
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDefinition replaces the launch pipeline topology.
// The session manager must be built with the same definition.
func WithDefinition(def workflow.Definition) EngineOption {
	return func(e *Engine) {
		e.def = def
	}
}

// WithClock overrides the time source of events.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine that persists through sessions and executes steps.
func NewEngine(sessions *session.Manager, steps workflow.Steps, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		sessions: sessions,
		def:      workflow.Launch,
		steps:    steps,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}
	if missing, ok := steps.Covers(e.def); !ok {
		return nil, fmt.Errorf("no step function bound to %q", missing)
	}
	return e, nil
}

// Definition returns the workflow the engine runs.
func (e *Engine) Definition() workflow.Definition {
	return e.def
}

// Locate returns the derived position of a snapshot.
func (e *Engine) Locate(s *domain.State) workflow.Position {
	return e.def.Locate(s)
}

// Start performs the initial write of a session and runs it until the first
// pause, failure or completion.
func (e *Engine) Start(ctx context.Context, state *domain.State) (*domain.State, error) {
	var out *domain.State
	err := e.sessions.Do(ctx, state.SessionID, func(ctx context.Context, tx *session.Tx) error {
		created, err := tx.Create(ctx, state)
		if err != nil {
			return err
		}
		e.logger.Info("Session started", "session_id", created.SessionID, "product", created.UserInput.ProductName)
		e.emitStateChange(ctx, nil, created)

		out, err = e.run(ctx, tx, created)
		return err
	})
	return out, err
}

// Select writes the human selection carried by sel into field and runs the
// session onward. The session must be paused before the step the field gates.
// Replaying a selection equal to the stored one writes nothing.
func (e *Engine) Select(ctx context.Context, sessionID string, field domain.Field, sel domain.Update) (*domain.State, error) {
	gated, ok := e.def.GatedBy(field)
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidSelection, field)
	}
	value, err := selectionValue(field, sel)
	if err != nil {
		return nil, err
	}

	var out *domain.State
	err = e.sessions.Do(ctx, sessionID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Get(ctx)
		if err != nil {
			return err
		}

		if stored, set := storedSelection(s, field); set {
			if !sameJSON(stored, value) {
				return fmt.Errorf("%w: %s is already set", domain.ErrInvalidTransition, field)
			}
			e.logger.Debug("Selection replayed", "session_id", sessionID, "field", field)
			out, err = e.run(ctx, tx, s)
			return err
		}

		pos := e.def.Locate(s)
		if pos.Phase != workflow.PhasePaused || pos.Step != gated {
			return fmt.Errorf("%w: %s expects %s, session is %s",
				domain.ErrInvalidTransition, field, workflow.Position{Phase: workflow.PhasePaused, Step: gated}, pos)
		}

		merged, err := tx.Merge(ctx, sel)
		if err != nil {
			return err
		}
		e.logger.Info("Selection recorded", "session_id", sessionID, "field", field)
		e.emitStateChange(ctx, s, merged)

		out, err = e.run(ctx, tx, merged)
		return err
	})
	return out, err
}

// Advance runs a session from its stored position without new input.
// Paused, failed and completed sessions are returned unchanged.
func (e *Engine) Advance(ctx context.Context, sessionID string) (*domain.State, error) {
	var out *domain.State
	err := e.sessions.Do(ctx, sessionID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Get(ctx)
		if err != nil {
			return err
		}
		out, err = e.run(ctx, tx, s)
		return err
	})
	return out, err
}

// Retry clears the error marker of a failed session and runs the failed step again.
func (e *Engine) Retry(ctx context.Context, sessionID string) (*domain.State, error) {
	var out *domain.State
	err := e.sessions.Do(ctx, sessionID, func(ctx context.Context, tx *session.Tx) error {
		s, err := tx.Get(ctx)
		if err != nil {
			return err
		}
		pos := e.def.Locate(s)
		if pos.Phase != workflow.PhaseFailed {
			return fmt.Errorf("%w: only failed sessions can be retried, session is %s", domain.ErrInvalidTransition, pos)
		}

		cleared, err := tx.Merge(ctx, domain.Update{ClearFailure: pos.Step})
		if err != nil {
			return err
		}
		e.logger.Info("Retrying step", "session_id", sessionID, "step", pos.Step)
		e.emitStateChange(ctx, s, cleared)

		out, err = e.run(ctx, tx, cleared)
		return err
	})
	return out, err
}

// run executes ready steps in order, merging each result before the next
// step starts, until the session pauses, fails or completes.
func (e *Engine) run(ctx context.Context, tx *session.Tx, s *domain.State) (*domain.State, error) {
	// Each iteration completes or fails a step, so the loop is bounded.
	for range len(e.def.Steps) + 1 {
		pos := e.def.Locate(s)
		switch pos.Phase {
		case workflow.PhaseCompleted:
			e.logger.Info("Session completed", "session_id", s.SessionID)
			return s, nil
		case workflow.PhaseFailed:
			return s, nil
		case workflow.PhasePaused:
			field, _ := e.def.Gate(pos.Step)
			e.logger.Info("Session paused", "session_id", s.SessionID, "before", pos.Step, "awaiting", field)
			e.emitPause(ctx, s.SessionID, pos.Step, field)
			return s, nil
		}

		next, err := e.execute(ctx, tx, s, pos.Step)
		if err != nil {
			return nil, err
		}
		s = next
	}
	return nil, fmt.Errorf("workflow did not settle for session %s", s.SessionID)
}

// execute runs one step and persists its result. A step failure is recorded
// as the step's error marker; only cancellation and store errors are returned.
func (e *Engine) execute(ctx context.Context, tx *session.Tx, s *domain.State, step domain.Step) (*domain.State, error) {
	e.emitStepEnter(ctx, s.SessionID, step)
	e.logger.Debug("Step started", "session_id", s.SessionID, "step", step)
	start := e.now()

	update, stepErr := e.steps[step](ctx, s.Clone())
	if stepErr == nil && !produces(update, step) {
		stepErr = errors.New("step produced no output")
	}
	duration := e.now().Sub(start)

	if stepErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Interrupted runs leave no marker; Advance picks the step up again.
			e.emitStepLeave(ctx, s.SessionID, step, duration, ctxErr)
			return nil, ctxErr
		}
		e.logger.Warn("Step failed", "session_id", s.SessionID, "step", step, "duration", duration, "err", stepErr)
		update = domain.Update{
			StyleFailures: update.StyleFailures,
			Failure:       &domain.StepFailure{Step: step, Message: stepErr.Error()},
		}
	} else {
		e.logger.Info("Step completed", "session_id", s.SessionID, "step", step, "duration", duration)
	}

	merged, err := tx.Merge(ctx, update)
	if err != nil {
		e.emitStepLeave(ctx, s.SessionID, step, duration, err)
		return nil, fmt.Errorf("failed to persist step %s: %w", step, err)
	}

	var leaveErr error
	if stepErr != nil {
		leaveErr = &domain.StepError{Step: step, Err: stepErr}
	}
	e.emitStepLeave(ctx, s.SessionID, step, duration, leaveErr)
	e.emitStateChange(ctx, s, merged)
	return merged, nil
}

// produces reports whether u carries the output of step.
func produces(u domain.Update, step domain.Step) bool {
	switch step {
	case domain.StepResearch:
		return u.MarketResearch != nil
	case domain.StepStrategy:
		return u.KeywordStrategy != nil
	case domain.StepCreative:
		return len(u.CreativeDrafts) > 0
	case domain.StepPlanning:
		return u.CampaignPlan != nil
	}
	return false
}

func selectionValue(field domain.Field, sel domain.Update) (any, error) {
	switch field {
	case domain.FieldSelectedPersona:
		if sel.SelectedPersona != nil && sel.SelectedCreativeDraft == nil {
			return sel.SelectedPersona, nil
		}
	case domain.FieldSelectedCreativeDraft:
		if sel.SelectedCreativeDraft != nil && sel.SelectedPersona == nil {
			return sel.SelectedCreativeDraft, nil
		}
	}
	return nil, fmt.Errorf("%w: update does not carry exactly %s", domain.ErrInvalidSelection, field)
}

func storedSelection(s *domain.State, field domain.Field) (any, bool) {
	switch field {
	case domain.FieldSelectedPersona:
		return s.SelectedPersona, s.SelectedPersona != nil
	case domain.FieldSelectedCreativeDraft:
		return s.SelectedCreativeDraft, s.SelectedCreativeDraft != nil
	}
	return nil, false
}

func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}
