package observability_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/observability"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct{ err error }

func (g stubGenerator) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	return json.RawMessage(`{}`), g.err
}

func TestMetrics_Hooks(t *testing.T) {
	m := observability.New()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepEnter(ctx, &domain.StepEvent{Step: domain.StepResearch})
	hooks.OnStepLeave(ctx, &domain.StepEvent{Step: domain.StepResearch, Duration: time.Second})
	hooks.OnStepEnter(ctx, &domain.StepEvent{Step: domain.StepStrategy})
	hooks.OnStepLeave(ctx, &domain.StepEvent{Step: domain.StepStrategy, Err: errors.New("boom")})
	hooks.OnPause(ctx, &domain.PauseEvent{Before: domain.StepStrategy, Field: domain.FieldSelectedPersona})

	done := &domain.State{CampaignPlan: &domain.CampaignPlan{}}
	hooks.OnStateChange(ctx, &domain.StateEvent{Old: &domain.State{}, New: done})
	hooks.OnStateChange(ctx, &domain.StateEvent{Old: done, New: done})

	body := scrape(t, m)
	assert.Contains(t, body, `souqra_steps_total{status="success",step="research"} 1`)
	assert.Contains(t, body, `souqra_steps_total{status="error",step="strategy"} 1`)
	assert.Contains(t, body, `souqra_steps_active 0`)
	assert.Contains(t, body, `souqra_pauses_total{field="selected_persona"} 1`)
	assert.Contains(t, body, `souqra_sessions_completed_total 1`)
}

func TestMetrics_Decorators(t *testing.T) {
	m := observability.New()
	ctx := context.Background()

	_, err := m.Generator(stubGenerator{}).Generate(ctx, ports.GenerateRequest{Name: "market_research"})
	require.NoError(t, err)
	_, err = m.Generator(stubGenerator{err: errors.New("down")}).Generate(ctx, ports.GenerateRequest{Name: "market_research"})
	require.Error(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "souqra_generate_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per status")
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return strings.ReplaceAll(rec.Body.String(), "\r", "")
}
