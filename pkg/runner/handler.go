package runner

import (
	"context"

	"github.com/aretw0/souqra/pkg/domain"
)

// ChoiceRetry is the Choice field used when a step failed.
const ChoiceRetry domain.Field = "retry"

// Choice is a question with numbered options.
type Choice struct {
	Field   domain.Field `json:"field"`
	Prompt  string       `json:"prompt"`
	Options []string     `json:"options"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (scripted) modes.
type IOHandler interface {
	// Show presents a snapshot.
	Show(ctx context.Context, state *domain.State) error

	// Choose asks the user to pick one option and returns its zero-based index.
	// A negative index means the user declined.
	Choose(ctx context.Context, c Choice) (int, error)

	// SystemOutput presents a meta-message (progress, warnings).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms Markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)
