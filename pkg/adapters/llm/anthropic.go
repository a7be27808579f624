package llm

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// DefaultAnthropicModel is used when no model is configured for the Anthropic provider.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicCompleter implements Completer using the Anthropic Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter creates a completer. Extra request options (such as
// option.WithBaseURL) are passed to the SDK client.
func NewAnthropicCompleter(apiKey, model string, opts ...option.RequestOption) *AnthropicCompleter {
	if model == "" {
		model = DefaultAnthropicModel
	}
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	return &AnthropicCompleter{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 8192,
	}
}

// Complete sends a non-streaming message and concatenates the text blocks.
func (c *AnthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	prompt := req.Prompt
	if req.JSON {
		prompt += "\n\nRespond with a single JSON object and nothing else."
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = param.NewOpt(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}
