package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/souqra/pkg/ports"
)

// FlakyGenerator fails the first calls for chosen artifact names, then delegates.
type FlakyGenerator struct {
	Next ports.Generator

	mu    sync.Mutex
	fails map[string]int
	calls map[string]int
}

// NewFlakyGenerator fails fails[name] calls for each artifact name before
// passing requests through to next.
func NewFlakyGenerator(next ports.Generator, fails map[string]int) *FlakyGenerator {
	return &FlakyGenerator{Next: next, fails: fails, calls: map[string]int{}}
}

func (g *FlakyGenerator) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	g.mu.Lock()
	g.calls[req.Name]++
	failing := g.fails[req.Name] > 0
	if failing {
		g.fails[req.Name]--
	}
	g.mu.Unlock()

	if failing {
		return nil, fmt.Errorf("model unavailable for %s", req.Name)
	}
	return g.Next.Generate(ctx, req)
}

// Calls reports how many requests were made for an artifact name.
func (g *FlakyGenerator) Calls(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}
