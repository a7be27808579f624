package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *souqra.Engine {
	t.Helper()
	engine, err := souqra.New()
	require.NoError(t, err)
	return engine
}

func run(t *testing.T, r *runner.Runner, engine *souqra.Engine, start runner.Start) (*domain.State, error) {
	t.Helper()
	type result struct {
		state *domain.State
		err   error
	}
	done := make(chan result, 1)
	go func() {
		s, err := r.Run(context.Background(), engine, start)
		done <- result{s, err}
	}()

	select {
	case res := <-done:
		return res.state, res.err
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not finish")
		return nil, nil
	}
}

func TestRunner_TextFlow(t *testing.T) {
	engine := newEngine(t)

	// 1. An invalid answer is asked again, then a number and a style name
	input := strings.NewReader("7\n2\nplayful & engaging\n")
	output := &bytes.Buffer{}
	r := runner.New(runner.WithHandler(runner.NewTextHandler(input, output)))

	state, err := run(t, r, engine, runner.Start{Brief: domain.Brief{ProductName: "Aero"}})
	require.NoError(t, err)

	// 2. Verify
	assert.Equal(t, "completed", state.CurrentStep)
	assert.Equal(t, state.MarketResearch.TargetAudiencePersonas[1].PersonaName, state.SelectedPersona.PersonaName)
	assert.Equal(t, "Playful & Engaging", state.SelectedCreativeDraft.Style)

	out := output.String()
	assert.Contains(t, out, "Please enter a number between 1 and")
	assert.Contains(t, out, "# Launch kit: Aero")
}

func TestRunner_QuitAndResume(t *testing.T) {
	engine := newEngine(t)

	// 1. Quit at the first checkpoint
	output := &bytes.Buffer{}
	r := runner.New(runner.WithHandler(runner.NewTextHandler(strings.NewReader("q\n"), output)))
	state, err := run(t, r, engine, runner.Start{Brief: domain.Brief{ProductName: "Aero"}})
	require.NoError(t, err)
	assert.Equal(t, "paused_before_strategy", state.CurrentStep)
	assert.Contains(t, output.String(), "souqra run --session "+state.SessionID)

	// 2. Resume by ID with auto-selection
	r = runner.New(runner.WithHandler(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})), runner.WithAutoSelect(true))
	done, err := run(t, r, engine, runner.Start{SessionID: state.SessionID})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.CurrentStep)
	assert.Equal(t, state.SessionID, done.SessionID)
}

func TestRunner_EOFStops(t *testing.T) {
	engine := newEngine(t)
	r := runner.New(runner.WithHandler(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})))

	state, err := run(t, r, engine, runner.Start{Brief: domain.Brief{ProductName: "Aero"}})
	require.NoError(t, err)
	assert.Equal(t, "paused_before_strategy", state.CurrentStep)
}

func TestRunner_JSONFlow(t *testing.T) {
	engine := newEngine(t)
	output := &bytes.Buffer{}
	r := runner.New(runner.WithHandler(runner.NewJSONHandler(strings.NewReader("0\n\"Bold & Modern\"\n"), output)))

	state, err := run(t, r, engine, runner.Start{Brief: domain.Brief{ProductName: "Aero"}})
	require.NoError(t, err)
	assert.Equal(t, "completed", state.CurrentStep)

	var types []string
	dec := json.NewDecoder(output)
	for dec.More() {
		var m runner.Message
		require.NoError(t, dec.Decode(&m))
		types = append(types, m.Type)
	}
	assert.Contains(t, types, "choice")
	assert.Equal(t, "state", types[len(types)-1])
}

func TestRunner_UnknownSession(t *testing.T) {
	r := runner.New(runner.WithHandler(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})))
	_, err := run(t, r, newEngine(t), runner.Start{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
