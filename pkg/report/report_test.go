package report_test

import (
	"strings"
	"testing"

	"github.com/aretw0/souqra/pkg/adapters/llm"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/report"
	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	got := report.ImageURL(" A kettle, golden hour ")
	assert.Equal(t, "https://image.pollinations.ai/A%20kettle%2C%20golden%20hour", got)
}

func TestMarkdown(t *testing.T) {
	research := llm.SampleMarketResearch("Aero")
	strategy := llm.SampleKeywordStrategy("Aero", "Commuter")
	assets := llm.SampleCreativeAssets("Aero", "Commuter", "Bold & Modern")
	plan := llm.SampleCampaignPlan("Aero")

	s := domain.NewState("s1", domain.Brief{ProductName: "Aero", USP: "lightweight"})
	s.CurrentStep = "completed"
	s.MarketResearch = &research
	s.SelectedPersona = &research.TargetAudiencePersonas[0]
	s.KeywordStrategy = &strategy
	s.SelectedCreativeDraft = &domain.CreativeDraft{Wordsmith: assets.Wordsmith, Muse: assets.Muse, Style: "Bold & Modern"}
	s.CampaignPlan = &plan

	md := report.Markdown(s)

	assert.True(t, strings.HasPrefix(md, "# Launch kit: Aero\n"))
	assert.Contains(t, md, "- **USP:** lightweight")
	assert.Contains(t, md, research.TargetAudiencePersonas[0].PersonaName+" (selected)")
	assert.Contains(t, md, "## Creative direction: Bold & Modern")
	assert.Contains(t, md, report.ImageBaseURL+"/")
	for _, phase := range plan.LaunchCampaignStrategy.Phases() {
		assert.Contains(t, md, "### "+phase+":")
	}
	assert.NotContains(t, md, "## Failures")
}

func TestMarkdown_Partial(t *testing.T) {
	s := domain.NewState("s2", domain.Brief{ProductName: "Aero"})
	s.CurrentStep = "failed"
	s.Failures = map[domain.Step]string{domain.StepResearch: "model unavailable"}

	md := report.Markdown(s)
	assert.Contains(t, md, "- **research:** model unavailable")
	assert.NotContains(t, md, "## Audience")
	assert.NotContains(t, md, "## Launch plan")
}
