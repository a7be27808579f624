// Package agents implements the four step functions of the launch pipeline
// on top of a structured generator and an optional web searcher.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/schema"
	"github.com/aretw0/souqra/pkg/workflow"
)

// contextBudget caps every upstream artifact quoted in a prompt.
const contextBudget = 2000

// Team produces the pipeline steps.
type Team struct {
	gen         ports.Generator
	search      ports.Searcher
	prompts     ports.PromptSource
	styles      []string
	concurrency int
	logger      *slog.Logger
}

// Option configures a Team.
type Option func(*Team)

// WithSearcher enables web research in the research and strategy steps.
func WithSearcher(s ports.Searcher) Option {
	return func(t *Team) {
		t.search = s
	}
}

// WithPrompts lets an operator override the built-in system prompts.
func WithPrompts(p ports.PromptSource) Option {
	return func(t *Team) {
		t.prompts = p
	}
}

// WithStyles replaces the creative style set. Order is kept in the drafts.
func WithStyles(styles ...string) Option {
	return func(t *Team) {
		if len(styles) > 0 {
			t.styles = styles
		}
	}
}

// WithConcurrency bounds the parallel creative generations (default: one per style).
func WithConcurrency(n int) Option {
	return func(t *Team) {
		t.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Team) {
		t.logger = l
	}
}

// New creates a Team backed by gen.
func New(gen ports.Generator, opts ...Option) *Team {
	t := &Team{
		gen:    gen,
		styles: domain.DefaultStyles,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Styles returns the creative style set.
func (t *Team) Styles() []string {
	return t.styles
}

// Steps binds the team to the steps of workflow.Launch.
func (t *Team) Steps() workflow.Steps {
	return workflow.Steps{
		domain.StepResearch: t.Research,
		domain.StepStrategy: t.Strategy,
		domain.StepCreative: t.Creative,
		domain.StepPlanning: t.Planning,
	}
}

// Research proposes personas and a competitor summary for the brief.
func (t *Team) Research(ctx context.Context, s *domain.State) (domain.Update, error) {
	var sb strings.Builder
	sb.WriteString(s.UserInput.String())
	query := s.UserInput.ProductName + " competitors market trends"
	if s.UserInput.TargetLocation != "" {
		query += " " + s.UserInput.TargetLocation
	}
	t.appendFindings(ctx, &sb, s.SessionID, query)

	out, err := generate[domain.MarketResearch](ctx, t, ports.ArtifactMarketResearch, "", sb.String())
	if err != nil {
		return domain.Update{}, err
	}
	return domain.Update{MarketResearch: out}, nil
}

// Strategy builds the keyword strategy for the selected persona.
func (t *Team) Strategy(ctx context.Context, s *domain.State) (domain.Update, error) {
	persona := domain.PersonaName(s.SelectedPersona)

	var sb strings.Builder
	sb.WriteString(s.UserInput.String())
	fmt.Fprintf(&sb, "Target Persona Name: %s\n", persona)
	if s.SelectedPersona != nil {
		fmt.Fprintf(&sb, "Persona profile: %s\n", quote(s.SelectedPersona))
	}
	t.appendFindings(ctx, &sb, s.SessionID, s.UserInput.ProductName+" keywords search trends "+persona)

	out, err := generate[domain.KeywordStrategy](ctx, t, ports.ArtifactKeywordStrategy, "", sb.String())
	if err != nil {
		return domain.Update{}, err
	}
	return domain.Update{KeywordStrategy: out}, nil
}

// Planning turns the selected direction into a 30-day campaign.
func (t *Team) Planning(ctx context.Context, s *domain.State) (domain.Update, error) {
	var sb strings.Builder
	sb.WriteString(s.UserInput.String())
	fmt.Fprintf(&sb, "Persona: %s\n", domain.PersonaName(s.SelectedPersona))
	if s.SelectedPersona != nil {
		fmt.Fprintf(&sb, "Persona profile: %s\n", quote(s.SelectedPersona))
	}
	if s.KeywordStrategy != nil {
		fmt.Fprintf(&sb, "Keyword strategy: %s\n", quote(s.KeywordStrategy.KeywordResearch))
	}
	if d := s.SelectedCreativeDraft; d != nil {
		fmt.Fprintf(&sb, "Creative style: %s\n", d.Style)
		fmt.Fprintf(&sb, "Creative direction: %s\n", quote(d.Muse.VisualIdentityProposal))
	}

	out, err := generate[domain.CampaignPlan](ctx, t, ports.ArtifactCampaignPlan, "", sb.String())
	if err != nil {
		return domain.Update{}, err
	}
	return domain.Update{CampaignPlan: out}, nil
}

// appendFindings runs a best-effort web search. Failures are logged and the
// prompt goes out without findings.
func (t *Team) appendFindings(ctx context.Context, sb *strings.Builder, sessionID, query string) {
	if t.search == nil {
		return
	}
	digest, err := t.search.Search(ctx, query)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Warn("Web search failed, continuing without findings",
				"session_id", sessionID, "query", query, "err", err)
		}
		return
	}
	if digest = strings.TrimSpace(digest); digest != "" {
		fmt.Fprintf(sb, "\nWeb findings:\n%s\n", digest)
	}
}

// system resolves the system prompt and temperature for an artifact.
func (t *Team) system(ctx context.Context, name string) (string, *float64, error) {
	if t.prompts != nil {
		p, ok, err := t.prompts.Prompt(ctx, name)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load prompt %q: %w", name, err)
		}
		if ok && strings.TrimSpace(p.System) != "" {
			return p.System, p.Temperature, nil
		}
	}
	return builtinPrompts[name], nil, nil
}

// generate asks the model for a T. suffix is appended to the system prompt.
func generate[T any](ctx context.Context, t *Team, name, suffix, prompt string) (*T, error) {
	system, temp, err := t.system(ctx, name)
	if err != nil {
		return nil, err
	}
	raw, err := t.gen.Generate(ctx, ports.GenerateRequest{
		Name:        name,
		System:      system + suffix,
		Prompt:      prompt,
		Schema:      schema.For[T](),
		Temperature: temp,
	})
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: failed to decode output: %w", name, err)
	}
	return &out, nil
}

// quote renders v as compact JSON, cut to contextBudget bytes.
func quote(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	if len(b) <= contextBudget {
		return string(b)
	}
	cut := b[:contextBudget]
	for len(cut) > 0 && !utf8.Valid(cut) {
		cut = cut[:len(cut)-1]
	}
	return string(cut) + "..."
}

// ErrNoDrafts is the creative step failure when every style failed.
var ErrNoDrafts = errors.New("no creative style could be generated")
