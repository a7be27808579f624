// Package report renders a session as a Markdown launch-kit document.
package report

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
)

// ImageBaseURL is the text-to-image endpoint used for image prompt links.
const ImageBaseURL = "https://image.pollinations.ai"

// ImageURL returns a link that renders prompt with the image service.
func ImageURL(prompt string) string {
	return ImageBaseURL + "/" + url.PathEscape(strings.TrimSpace(prompt))
}

// Markdown renders every available part of s. Missing outputs are skipped,
// so partial sessions produce a partial report.
func Markdown(s *domain.State) string {
	var w writer
	w.line("# Launch kit: %s", s.UserInput.ProductName)
	w.blank()
	w.line("- Session: `%s`", s.SessionID)
	w.line("- Status: %s", s.CurrentStep)
	if !s.UpdatedAt.IsZero() {
		w.line("- Updated: %s", s.UpdatedAt.Format("2006-01-02 15:04 MST"))
	}
	w.blank()

	w.line("## Brief")
	w.blank()
	for _, f := range s.UserInput.Fields() {
		w.line("- **%s:** %s", f[0], f[1])
	}
	w.blank()

	if len(s.Failures) > 0 {
		w.line("## Failures")
		w.blank()
		for _, step := range sortedKeys(s.Failures) {
			w.line("- **%s:** %s", step, s.Failures[step])
		}
		w.blank()
	}

	if s.MarketResearch != nil {
		research(&w, s)
	}
	if s.KeywordStrategy != nil {
		keywords(&w, s.KeywordStrategy)
	}
	if d := s.SelectedCreativeDraft; d != nil {
		creative(&w, *d)
	} else if len(s.CreativeDrafts) > 0 {
		w.line("## Creative drafts")
		w.blank()
		for _, d := range s.CreativeDrafts {
			w.line("- %s", d.Style)
		}
		w.blank()
	}
	if s.CampaignPlan != nil {
		campaign(&w, s.CampaignPlan.LaunchCampaignStrategy)
	}
	return w.String()
}

func research(w *writer, s *domain.State) {
	w.line("## Audience")
	w.blank()
	selected := domain.PersonaName(s.SelectedPersona)
	for _, p := range s.MarketResearch.TargetAudiencePersonas {
		marker := ""
		if s.SelectedPersona != nil && strings.EqualFold(p.PersonaName, selected) {
			marker = " (selected)"
		}
		w.line("### %s%s", p.PersonaName, marker)
		w.blank()
		if p.Quote != "" {
			w.line("> %s", p.Quote)
			w.blank()
		}
		d := p.Demographics
		w.line("- **Demographics:** %s", joinNonEmpty(", ", d.AgeRange, d.GenderIdentity, d.Location, d.IncomeLevel, d.Occupation))
		if len(p.Psychographics.PainPoints) > 0 {
			w.line("- **Pain points:** %s", strings.Join(p.Psychographics.PainPoints, "; "))
		}
		if len(p.MarketingInsights.PreferredChannels) > 0 {
			w.line("- **Channels:** %s", strings.Join(p.MarketingInsights.PreferredChannels, ", "))
		}
		w.blank()
	}
	if len(s.MarketResearch.CompetitorSummary) > 0 {
		w.line("### Competitors")
		w.blank()
		for _, name := range sortedKeys(s.MarketResearch.CompetitorSummary) {
			w.line("- **%s:** %v", name, s.MarketResearch.CompetitorSummary[name])
		}
		w.blank()
	}
	sources(w, s.MarketResearch.ResearchSources)
}

func keywords(w *writer, k *domain.KeywordStrategy) {
	w.line("## Keyword strategy")
	w.blank()
	if k.KeywordResearch.Overview != "" {
		w.line("%s", k.KeywordResearch.Overview)
		w.blank()
	}
	all := k.KeywordResearch.CategorizedKeywords.All()
	if len(all) > 0 {
		w.line("| Keyword | Intent |")
		w.line("|---|---|")
		for _, kw := range all {
			w.line("| %s | %s |", cell(kw.Keyword), cell(kw.SearchIntent))
		}
		w.blank()
	}
	for _, g := range k.SEOContentRecommendations.GeneralGuidelines {
		w.line("- %s", g)
	}
	if len(k.SEOContentRecommendations.GeneralGuidelines) > 0 {
		w.blank()
	}
}

func creative(w *writer, d domain.CreativeDraft) {
	w.line("## Creative direction: %s", d.Style)
	w.blank()
	cg := d.Wordsmith.ContentGeneration
	for _, pd := range cg.ProductDescriptions {
		w.line("%s", pd.Copy)
		w.blank()
	}
	for _, ad := range cg.AdCopyVariations {
		if len(ad.HeadlineSuggestions) > 0 {
			w.line("- **%s headline:** %s", ad.AdPlatform, ad.HeadlineSuggestions[0])
		}
	}
	vip := d.Muse.VisualIdentityProposal
	if vip.OverallVision != "" {
		w.blank()
		w.line("**Vision:** %s", vip.OverallVision)
	}
	var colors []string
	for _, c := range vip.ColorPalette.PrimaryColors {
		colors = append(colors, fmt.Sprintf("%s `%s`", c.Name, c.HexCode))
	}
	if len(colors) > 0 {
		w.line("**Palette:** %s", strings.Join(colors, ", "))
	}
	w.blank()

	if prompts := d.ImagePrompts(); len(prompts) > 0 {
		w.line("### Image prompts")
		w.blank()
		for i, p := range prompts {
			w.line("%d. %s ([render](%s))", i+1, p, ImageURL(p))
		}
		w.blank()
	}
}

func campaign(w *writer, l domain.LaunchStrategy) {
	w.line("## Launch plan")
	w.blank()
	if l.OverallObjective != "" {
		w.line("**Objective:** %s", l.OverallObjective)
		w.blank()
	}
	for _, m := range l.KeyMetricsForSuccess {
		w.line("- %s", m)
	}
	if len(l.KeyMetricsForSuccess) > 0 {
		w.blank()
	}
	if len(l.RecommendedChannels) > 0 {
		w.line("| Channel | Role | Budget |")
		w.line("|---|---|---|")
		for _, c := range l.RecommendedChannels {
			w.line("| %s | %s | %s |", cell(c.ChannelName), cell(c.PrimaryRoleInFunnel), cell(c.EstimatedBudgetAllocation))
		}
		w.blank()
	}
	for _, label := range l.Phases() {
		phase := l.LaunchPlan30Days[label]
		w.line("### %s: %s", label, phase.Focus)
		w.blank()
		for _, task := range phase.Tasks {
			w.line("- [ ] %s", task)
		}
		w.blank()
	}
	if len(l.NextSteps) > 0 {
		w.line("### Next steps")
		w.blank()
		for _, s := range l.NextSteps {
			w.line("- %s", s)
		}
		w.blank()
	}
}

func sources(w *writer, srcs []string) {
	if len(srcs) == 0 {
		return
	}
	w.line("### Sources")
	w.blank()
	for _, s := range srcs {
		w.line("- %s", s)
	}
	w.blank()
}

type writer struct {
	strings.Builder
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}

func (w *writer) blank() {
	w.WriteByte('\n')
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
