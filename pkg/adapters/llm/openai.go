package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL points at OpenRouter, which speaks the OpenAI chat API.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is used when no model is configured.
	DefaultModel = "openai/gpt-oss-120b"
	// DefaultTemperature keeps structured output stable.
	DefaultTemperature = 0.2
)

// OpenAICompleter calls an OpenAI-compatible chat completions endpoint.
// Works with: OpenRouter, OpenAI, Together AI, local Ollama /v1, etc.
type OpenAICompleter struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	appName     string
}

// OpenAIOption configures an OpenAICompleter.
type OpenAIOption func(*OpenAICompleter)

// WithHTTPClient replaces the default client (120s timeout).
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(p *OpenAICompleter) {
		p.client = c
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) OpenAIOption {
	return func(p *OpenAICompleter) {
		p.temperature = t
	}
}

// WithAppName sets the X-Title header OpenRouter uses for attribution.
func WithAppName(name string) OpenAIOption {
	return func(p *OpenAICompleter) {
		p.appName = name
	}
}

// NewOpenAICompleter creates a completer. Empty baseURL and model fall back
// to DefaultBaseURL and DefaultModel.
func NewOpenAICompleter(baseURL, apiKey, model string, opts ...OpenAIOption) *OpenAICompleter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	p := &OpenAICompleter{
		client:      &http.Client{Timeout: 120 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request.
func (p *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	body := chatRequest{
		Model:       p.model,
		Temperature: p.temperature,
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})
	if req.JSON {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	if p.appName != "" {
		httpReq.Header.Set("X-Title", p.appName)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return result.Choices[0].Message.Content, nil
}
