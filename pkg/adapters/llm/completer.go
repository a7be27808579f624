package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a provider answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// CompletionRequest is a single-turn chat request.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature *float64
	// JSON asks the provider for a JSON object when it supports a JSON mode.
	JSON bool
}

// Completer is a raw text completion provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
