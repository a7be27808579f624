package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/souqra/internal/logging"
)

// ErrNoResults is returned when a provider answered but found nothing.
var ErrNoResults = errors.New("no search results")

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Provider returns raw search hits.
type Provider interface {
	Name() string
	Results(ctx context.Context, query string) ([]Result, error)
}

// Digest renders results as the plain-text block handed to the model.
func Digest(results []Result) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
	}
	return sb.String()
}

// Searcher implements ports.Searcher over an ordered list of providers:
// the first one that returns results wins.
type Searcher struct {
	providers []Provider
	limit     int
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLimit caps the number of results in the digest (default 5).
func WithLimit(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger used to report provider fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = l
	}
}

// New creates a Searcher trying providers in order.
func New(providers []Provider, opts ...Option) *Searcher {
	s := &Searcher{providers: providers, limit: 5, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search implements ports.Searcher.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	var errs []error
	for _, p := range s.providers {
		results, err := p.Results(ctx, query)
		if err == nil && len(results) == 0 {
			err = ErrNoResults
		}
		if err != nil {
			s.logger.Debug("Search provider failed", "provider", p.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(results) > s.limit {
			results = results[:s.limit]
		}
		return Digest(results), nil
	}
	if len(errs) == 0 {
		return "", ErrNoResults
	}
	return "", errors.Join(errs...)
}

// Nop is a Searcher that never finds anything. Steps proceed without research.
type Nop struct{}

// Search implements ports.Searcher.
func (Nop) Search(ctx context.Context, query string) (string, error) {
	return "", nil
}
