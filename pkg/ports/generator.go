package ports

import (
	"context"
	"encoding/json"
)

// GenerateRequest asks a language model for one structured JSON document.
type GenerateRequest struct {
	// Name identifies the artifact being produced (e.g. "market_research").
	Name string
	// System is the role instruction.
	System string
	// Prompt is the task content.
	Prompt string
	// Schema is the JSON Schema the output must satisfy.
	Schema json.RawMessage
	// Temperature overrides the provider default when non-nil.
	Temperature *float64
}

// Generator produces structured output from a language model.
// Implementations must return a document that validates against req.Schema.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (json.RawMessage, error)
}

// Searcher performs a web search and returns a plain-text digest of the results.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Prompt is a system instruction for one step, possibly overridden by the operator.
type Prompt struct {
	ID          string
	System      string
	Temperature *float64
}

// PromptSource resolves step prompts. It returns ok=false when it has no
// override for id, letting the caller fall back to its built-in prompt.
type PromptSource interface {
	Prompt(ctx context.Context, id string) (p Prompt, ok bool, err error)
}

// Artifact names carried in GenerateRequest.Name.
const (
	ArtifactMarketResearch  = "market_research"
	ArtifactKeywordStrategy = "keyword_strategy"
	ArtifactCreativeDraft   = "creative_draft"
	ArtifactCampaignPlan    = "campaign_plan"
)
