package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/workflow"
)

// Start selects the session a Runner drives: an existing one by ID, or a
// new one from Brief.
type Start struct {
	SessionID string
	Brief     domain.Brief
	Owner     string
}

// Runner handles the checkpoint loop of a session using the provided IO.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdio.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// AutoSelect answers every checkpoint with the first option.
	AutoSelect bool

	def workflow.Definition
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
		def:    workflow.Launch,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run drives the session until it completes or the user stops at a
// checkpoint. It returns the last snapshot seen.
func (r *Runner) Run(ctx context.Context, ctrl ports.Controller, start Start) (*domain.State, error) {
	signals := watchInterrupts(ctx)
	defer signals.Close()

	state, err := r.open(signals.Context(), ctrl, start)
	if err != nil {
		return nil, r.interrupted(signals, nil, err)
	}

	for {
		if err := r.Handler.Show(ctx, state); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}

		pos := r.def.Locate(state)
		r.Logger.Debug("Runner at position", "session_id", state.SessionID, "position", pos)

		var next *domain.State
		switch pos.Phase {
		case workflow.PhaseCompleted:
			return state, nil

		case workflow.PhaseReady:
			next, err = ctrl.Resume(signals.Context(), state.SessionID)

		case workflow.PhaseFailed:
			idx, cerr := r.choose(signals, Choice{
				Field:   ChoiceRetry,
				Prompt:  fmt.Sprintf("The %s step failed. What now?", pos.Step),
				Options: []string{"Retry", "Quit"},
			})
			if cerr != nil || idx != 0 {
				return state, r.stop(signals, state, cerr)
			}
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Retrying %s...", pos.Step))
			next, err = ctrl.Retry(signals.Context(), state.SessionID)

		case workflow.PhasePaused:
			field, _ := r.def.Gate(pos.Step)
			c := choiceFor(state, field)
			if len(c.Options) == 0 {
				return state, fmt.Errorf("nothing to choose for %s", field)
			}
			idx, cerr := r.choose(signals, c)
			if cerr != nil || idx < 0 {
				return state, r.stop(signals, state, cerr)
			}
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Selected %q, running %s...", c.Options[idx], pos.Step))
			next, err = ctrl.SubmitFeedback(signals.Context(), state.SessionID, field, json.RawMessage(strconv.Itoa(idx)))
		}

		if err != nil {
			return state, r.interrupted(signals, state, err)
		}
		state = next
	}
}

func (r *Runner) open(ctx context.Context, ctrl ports.Controller, start Start) (*domain.State, error) {
	if start.SessionID != "" {
		state, err := ctrl.Session(ctx, start.SessionID)
		if err != nil {
			return nil, err
		}
		_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Resuming session %s (%s)", state.SessionID, state.CurrentStep))
		return ctrl.Resume(ctx, start.SessionID)
	}
	_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Researching the market for %s...", start.Brief.ProductName))
	return ctrl.Start(ctx, ports.StartRequest{Brief: start.Brief, Owner: start.Owner})
}

func (r *Runner) choose(signals *interruptWatch, c Choice) (int, error) {
	if r.AutoSelect {
		if c.Field == ChoiceRetry {
			return -1, nil
		}
		return 0, nil
	}
	idx, err := r.Handler.Choose(signals.Context(), c)
	if err != nil {
		signals.Settle()
	}
	return idx, err
}

// stop ends the loop at a checkpoint, telling the user how to come back.
func (r *Runner) stop(signals *interruptWatch, state *domain.State, err error) error {
	_ = r.Handler.SystemOutput(context.Background(),
		fmt.Sprintf("Session %s saved at %s. Resume it with: souqra run --session %s", state.SessionID, state.CurrentStep, state.SessionID))
	if errors.Is(err, io.EOF) {
		return nil
	}
	return r.interrupted(signals, state, err)
}

// interrupted maps a user interrupt to a clean exit; other errors pass through.
func (r *Runner) interrupted(signals *interruptWatch, state *domain.State, err error) error {
	if err == nil {
		return nil
	}
	if signals.Interrupted() && state != nil {
		r.Logger.Debug("Runner interrupted", "session_id", state.SessionID, "err", err)
		return nil
	}
	return err
}

// choiceFor lists the candidates for a selection field.
func choiceFor(s *domain.State, field domain.Field) Choice {
	c := Choice{Field: field}
	switch field {
	case domain.FieldSelectedPersona:
		c.Prompt = "Which persona should the campaign target?"
		if s.MarketResearch != nil {
			for _, p := range s.MarketResearch.TargetAudiencePersonas {
				c.Options = append(c.Options, p.PersonaName)
			}
		}
	case domain.FieldSelectedCreativeDraft:
		c.Prompt = "Which creative direction should the launch use?"
		for _, d := range s.CreativeDrafts {
			c.Options = append(c.Options, d.Style)
		}
	}
	return c
}
