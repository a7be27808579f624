package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/report"
)

// Summary renders the part of a snapshot relevant to its position as Markdown.
func Summary(s *domain.State) string {
	var sb strings.Builder
	switch {
	case s.CampaignPlan != nil:
		return report.Markdown(s)
	case len(s.Failures) > 0:
		fmt.Fprintf(&sb, "## %s: failed\n\n", s.UserInput.ProductName)
		for step, msg := range s.Failures {
			fmt.Fprintf(&sb, "- **%s:** %s\n", step, msg)
		}
	case len(s.CreativeDrafts) > 0:
		fmt.Fprintf(&sb, "## Creative drafts for %s\n\n", s.UserInput.ProductName)
		for i, d := range s.CreativeDrafts {
			fmt.Fprintf(&sb, "%d. **%s**", i+1, d.Style)
			if v := d.Muse.VisualIdentityProposal.OverallVision; v != "" {
				fmt.Fprintf(&sb, ": %s", v)
			}
			sb.WriteString("\n")
		}
		for style, msg := range s.StyleFailures {
			fmt.Fprintf(&sb, "\n_%s could not be generated: %s_\n", style, msg)
		}
	case s.MarketResearch != nil:
		fmt.Fprintf(&sb, "## Personas for %s\n\n", s.UserInput.ProductName)
		for i, p := range s.MarketResearch.TargetAudiencePersonas {
			fmt.Fprintf(&sb, "%d. **%s**", i+1, p.PersonaName)
			if p.Quote != "" {
				fmt.Fprintf(&sb, ": \"%s\"", p.Quote)
			}
			sb.WriteString("\n")
		}
	default:
		fmt.Fprintf(&sb, "## %s: %s\n", s.UserInput.ProductName, s.CurrentStep)
	}
	return sb.String()
}
