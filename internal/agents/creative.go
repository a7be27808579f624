package agents

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
)

// Creative fans out one generation per style. A failed style is recorded
// and skipped; the step fails only when no style succeeds. Cancellation
// discards every finished style.
func (t *Team) Creative(ctx context.Context, s *domain.State) (domain.Update, error) {
	persona := domain.PersonaName(s.SelectedPersona)

	var base strings.Builder
	base.WriteString(s.UserInput.String())
	fmt.Fprintf(&base, "Persona: %s\n", persona)
	if s.KeywordStrategy != nil {
		var kws []string
		for _, k := range s.KeywordStrategy.KeywordResearch.CategorizedKeywords.All() {
			kws = append(kws, k.Keyword)
		}
		if len(kws) > 0 {
			fmt.Fprintf(&base, "SEO keywords: %s\n", strings.Join(kws, ", "))
		}
	}

	slots := make([]*domain.CreativeDraft, len(t.styles))
	errs := make([]error, len(t.styles))

	var g errgroup.Group
	if t.concurrency > 0 {
		g.SetLimit(t.concurrency)
	}
	for i, style := range t.styles {
		g.Go(func() error {
			prompt := fmt.Sprintf("%s\nTASK: Generate creative assets for the style '%s'.\n", base.String(), style)
			assets, err := generate[domain.CreativeAssets](ctx, t, ports.ArtifactCreativeDraft, "\n\nTARGET STYLE: "+style, prompt)
			if err != nil {
				errs[i] = err
				return nil
			}
			slots[i] = &domain.CreativeDraft{
				Wordsmith: assets.Wordsmith,
				Muse:      assets.Muse,
				Style:     style,
			}
			return nil
		})
	}
	_ = g.Wait()

	// A cancelled fan-out is not a partial result: drafts are write-once.
	if err := ctx.Err(); err != nil {
		return domain.Update{}, err
	}

	var u domain.Update
	for i, style := range t.styles {
		if slots[i] != nil {
			u.CreativeDrafts = append(u.CreativeDrafts, *slots[i])
			continue
		}
		if u.StyleFailures == nil {
			u.StyleFailures = make(map[string]string)
		}
		u.StyleFailures[style] = errs[i].Error()
		t.logger.Warn("Creative style failed, skipping",
			"session_id", s.SessionID, "style", style, "err", errs[i])
	}

	if len(u.CreativeDrafts) == 0 {
		return u, ErrNoDrafts
	}
	return u, nil
}
