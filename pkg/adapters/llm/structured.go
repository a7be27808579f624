package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/schema"
)

// Structured turns a Completer into a ports.Generator: the schema is appended
// to the system prompt, the reply is parsed as JSON and validated.
type Structured struct {
	completer Completer
	logger    *slog.Logger
}

// NewStructured wraps c. A nil logger discards.
func NewStructured(c Completer, logger *slog.Logger) *Structured {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Structured{completer: c, logger: logger}
}

// Generate implements ports.Generator.
func (g *Structured) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	system := req.System
	if len(req.Schema) > 0 {
		system += "\n\nOutput a single JSON object that strictly conforms to this JSON Schema:\n" + string(req.Schema)
	}

	start := time.Now()
	text, err := g.completer.Complete(ctx, CompletionRequest{
		System:      system,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: completion failed: %w", req.Name, err)
	}
	g.logger.Debug("Completion received", "artifact", req.Name, "bytes", len(text), "duration", time.Since(start))

	doc, err := schema.ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Name, err)
	}
	if err := schema.Validate(req.Schema, doc); err != nil {
		return nil, fmt.Errorf("%s: output does not match schema: %w", req.Name, err)
	}
	return doc, nil
}
