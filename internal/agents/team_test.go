package agents_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/souqra/internal/agents"
	"github.com/aretw0/souqra/pkg/adapters/llm"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingGenerator delegates to the dry-run generator, records every
// request and fails the styles listed in failStyles.
type recordingGenerator struct {
	mu         sync.Mutex
	reqs       []ports.GenerateRequest
	failStyles map[string]bool
	dry        *llm.DryRun
}

func newRecorder(failStyles ...string) *recordingGenerator {
	g := &recordingGenerator{failStyles: map[string]bool{}, dry: llm.NewDryRun()}
	for _, s := range failStyles {
		g.failStyles[s] = true
	}
	return g
}

func (g *recordingGenerator) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	g.mu.Lock()
	g.reqs = append(g.reqs, req)
	g.mu.Unlock()
	for style := range g.failStyles {
		if strings.Contains(req.System, "TARGET STYLE: "+style) {
			return nil, errors.New("model refused")
		}
	}
	return g.dry.Generate(ctx, req)
}

func (g *recordingGenerator) requests(name string) []ports.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []ports.GenerateRequest
	for _, r := range g.reqs {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// cancelOn cancels the run when the given style is requested.
type cancelOn struct {
	next   ports.Generator
	style  string
	cancel context.CancelFunc
}

func (g cancelOn) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	if strings.Contains(req.System, "TARGET STYLE: "+g.style) {
		g.cancel()
		return nil, ctx.Err()
	}
	return g.next.Generate(ctx, req)
}

type failingSearcher struct{ calls int }

func (s *failingSearcher) Search(ctx context.Context, q string) (string, error) {
	s.calls++
	return "", errors.New("network down")
}

type staticSearcher string

func (s staticSearcher) Search(ctx context.Context, q string) (string, error) {
	return string(s), nil
}

func newState() *domain.State {
	return domain.NewState("s1", domain.Brief{ProductName: "Aero", USP: "lightweight"})
}

func TestResearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Search Failure Degrades", func(t *testing.T) {
		gen := newRecorder()
		searcher := &failingSearcher{}
		team := agents.New(gen, agents.WithSearcher(searcher))

		u, err := team.Research(ctx, newState())
		require.NoError(t, err)
		require.NotNil(t, u.MarketResearch)
		assert.NotEmpty(t, u.MarketResearch.TargetAudiencePersonas)
		assert.Equal(t, 1, searcher.calls)

		reqs := gen.requests(ports.ArtifactMarketResearch)
		require.Len(t, reqs, 1)
		assert.Contains(t, reqs[0].Prompt, "Product: Aero")
		assert.NotContains(t, reqs[0].Prompt, "Web findings")
		assert.NotEmpty(t, reqs[0].Schema)
	})

	t.Run("Findings Are Quoted", func(t *testing.T) {
		gen := newRecorder()
		team := agents.New(gen, agents.WithSearcher(staticSearcher("1. Rival Bike\n   https://rival.example\n")))

		_, err := team.Research(ctx, newState())
		require.NoError(t, err)
		assert.Contains(t, gen.requests(ports.ArtifactMarketResearch)[0].Prompt, "https://rival.example")
	})
}

func TestStrategy_DefaultPersona(t *testing.T) {
	gen := newRecorder()
	team := agents.New(gen)

	u, err := team.Strategy(context.Background(), newState())
	require.NoError(t, err)
	require.NotNil(t, u.KeywordStrategy)

	prompt := gen.requests(ports.ArtifactKeywordStrategy)[0].Prompt
	assert.Contains(t, prompt, "Target Persona Name: "+domain.DefaultPersonaName)
}

func TestCreative_DefaultPersona(t *testing.T) {
	gen := newRecorder()
	team := agents.New(gen)

	state := newState()
	require.Nil(t, state.SelectedPersona)
	u, err := team.Creative(context.Background(), state)
	require.NoError(t, err)
	assert.Len(t, u.CreativeDrafts, len(domain.DefaultStyles))

	reqs := gen.requests(ports.ArtifactCreativeDraft)
	require.Len(t, reqs, len(domain.DefaultStyles))
	for _, req := range reqs {
		assert.Contains(t, req.Prompt, "Persona: "+domain.DefaultPersonaName)
	}
}

func TestCreative(t *testing.T) {
	ctx := context.Background()

	t.Run("One Draft Per Style", func(t *testing.T) {
		team := agents.New(newRecorder())
		u, err := team.Creative(ctx, newState())
		require.NoError(t, err)

		require.Len(t, u.CreativeDrafts, 3)
		for i, style := range domain.DefaultStyles {
			assert.Equal(t, style, u.CreativeDrafts[i].Style)
		}
		assert.Empty(t, u.StyleFailures)
	})

	t.Run("Partial Failure", func(t *testing.T) {
		team := agents.New(newRecorder("Professional & Trustworthy"))
		u, err := team.Creative(ctx, newState())
		require.NoError(t, err)

		require.Len(t, u.CreativeDrafts, 2)
		assert.Equal(t, "Bold & Modern", u.CreativeDrafts[0].Style)
		assert.Equal(t, "Playful & Engaging", u.CreativeDrafts[1].Style)
		assert.Contains(t, u.StyleFailures, "Professional & Trustworthy")
	})

	t.Run("All Styles Fail", func(t *testing.T) {
		team := agents.New(newRecorder(domain.DefaultStyles...), agents.WithConcurrency(1))
		u, err := team.Creative(ctx, newState())
		assert.ErrorIs(t, err, agents.ErrNoDrafts)
		assert.Empty(t, u.CreativeDrafts)
		assert.Len(t, u.StyleFailures, 3)
	})

	t.Run("Cancelled Mid Fan-Out", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		gen := cancelOn{next: llm.NewDryRun(), style: "Professional & Trustworthy", cancel: cancel}
		team := agents.New(gen, agents.WithConcurrency(1))

		u, err := team.Creative(cctx, newState())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, u.CreativeDrafts, "finished styles are discarded")
		assert.Empty(t, u.StyleFailures)
	})

	t.Run("Configured Styles", func(t *testing.T) {
		gen := newRecorder()
		team := agents.New(gen, agents.WithStyles("Retro"))
		u, err := team.Creative(ctx, newState())
		require.NoError(t, err)
		require.Len(t, u.CreativeDrafts, 1)
		assert.Equal(t, "Retro", u.CreativeDrafts[0].Style)
		assert.Contains(t, gen.requests(ports.ArtifactCreativeDraft)[0].System, "TARGET STYLE: Retro")
	})
}

func TestPlanning(t *testing.T) {
	gen := newRecorder()
	team := agents.New(gen)

	s := newState()
	s.SelectedPersona = &domain.Persona{PersonaName: "Commuter"}
	s.SelectedCreativeDraft = &domain.CreativeDraft{Style: "Bold & Modern"}

	u, err := team.Planning(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, u.CampaignPlan)
	assert.NotEmpty(t, u.CampaignPlan.LaunchCampaignStrategy.LaunchPlan30Days)

	prompt := gen.requests(ports.ArtifactCampaignPlan)[0].Prompt
	assert.Contains(t, prompt, "Persona: Commuter")
	assert.Contains(t, prompt, "Creative style: Bold & Modern")
}

type overridePrompts map[string]ports.Prompt

func (o overridePrompts) Prompt(ctx context.Context, id string) (ports.Prompt, bool, error) {
	p, ok := o[id]
	return p, ok, nil
}

func TestPromptOverride(t *testing.T) {
	gen := newRecorder()
	temp := 0.7
	team := agents.New(gen, agents.WithPrompts(overridePrompts{
		ports.ArtifactMarketResearch: {ID: ports.ArtifactMarketResearch, System: "Be brief.", Temperature: &temp},
	}))

	_, err := team.Research(context.Background(), newState())
	require.NoError(t, err)
	_, err = team.Strategy(context.Background(), newState())
	require.NoError(t, err)

	research := gen.requests(ports.ArtifactMarketResearch)[0]
	assert.Equal(t, "Be brief.", research.System)
	require.NotNil(t, research.Temperature)
	assert.Equal(t, 0.7, *research.Temperature)

	strategy := gen.requests(ports.ArtifactKeywordStrategy)[0]
	assert.Contains(t, strategy.System, "SEO strategist", "no override falls back to the built-in prompt")
	assert.Nil(t, strategy.Temperature)
}
