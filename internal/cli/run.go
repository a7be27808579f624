package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/souqra/internal/config"
	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	SessionID string
	Brief     domain.Brief
	Owner     string
	JSON      bool
	Auto      bool

	In       io.Reader
	Out      io.Writer
	Renderer runner.ContentRenderer
}

// RunSession drives one session in the terminal and returns its last snapshot.
func RunSession(ctx context.Context, ctrl ports.Controller, opts RunOptions, logger *slog.Logger) (*domain.State, error) {
	if opts.SessionID == "" {
		if err := opts.Brief.Validate(); err != nil {
			return nil, fmt.Errorf("%w (use --product or --brief)", err)
		}
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		var textOpts []runner.TextHandlerOption
		if opts.Renderer != nil {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(opts.Renderer))
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, textOpts...)
	}

	r := runner.New(
		runner.WithHandler(handler),
		runner.WithLogger(logger),
		runner.WithAutoSelect(opts.Auto),
	)
	state, err := r.Run(ctx, ctrl, runner.Start{
		SessionID: opts.SessionID,
		Brief:     opts.Brief,
		Owner:     opts.Owner,
	})
	if state != nil {
		logger.Info("Session finished", "session_id", state.SessionID, "step", state.CurrentStep)
	}
	return state, err
}

// LoadBrief reads a brief from a JSON or YAML file using the wire field names
// (productName, usp, ...).
func LoadBrief(path string) (domain.Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Brief{}, fmt.Errorf("failed to read brief: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Brief{}, fmt.Errorf("failed to parse brief %s: %w", path, err)
	}
	// Round-trip through JSON so the struct's json tags apply.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return domain.Brief{}, err
	}
	var brief domain.Brief
	if err := json.Unmarshal(encoded, &brief); err != nil {
		return domain.Brief{}, fmt.Errorf("invalid brief %s: %w", path, err)
	}
	return brief, nil
}

// NewLogger builds the process logger. debug forces the debug level.
func NewLogger(cfg config.Log, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.Level)
	if debug {
		level = slog.LevelDebug
	}
	if cfg.Format == "json" {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}
