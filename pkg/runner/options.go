package runner

import (
	"log/slog"

	"github.com/aretw0/souqra/pkg/workflow"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures the IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithAutoSelect picks the first option at every checkpoint without asking.
func WithAutoSelect(auto bool) Option {
	return func(r *Runner) {
		r.AutoSelect = auto
	}
}

// WithDefinition sets the workflow used to read positions (default workflow.Launch).
func WithDefinition(def workflow.Definition) Option {
	return func(r *Runner) {
		r.def = def
	}
}
