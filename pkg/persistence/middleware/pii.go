package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s().\-]{7,}\d`,
}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks contact details in the
// free text a user submits: the brief and any edited selection.
// Generated outputs are stored as produced.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	// 1. Deep Clone to avoid side effects on the in-memory state used by the Engine.
	cloned := state.Clone()

	// 2. Mask PII
	cloned.UserInput = cloned.UserInput.Map(m.mask)
	if cloned.SelectedPersona != nil {
		p := *cloned.SelectedPersona
		p.Quote = m.mask(p.Quote)
		cloned.SelectedPersona = &p
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
