package llm

import (
	"context"
	"encoding/json"

	"github.com/aretw0/souqra/pkg/ports"
	"golang.org/x/time/rate"
)

// RateLimited caps the request rate of a Generator. The creative fan-out
// issues several calls at once, which free-tier providers reject.
type RateLimited struct {
	next    ports.Generator
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond requests with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimited(next ports.Generator, perSecond float64, burst int) ports.Generator {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Generate waits for a token, then delegates.
func (r *RateLimited) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Generate(ctx, req)
}
