package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "souqra"

// Metrics holds the collectors of one engine.
type Metrics struct {
	registry *prometheus.Registry

	stepDuration     *prometheus.HistogramVec
	stepsTotal       *prometheus.CounterVec
	stepsActive      prometheus.Gauge
	pausesTotal      *prometheus.CounterVec
	completedTotal   prometheus.Counter
	generateDuration *prometheus.HistogramVec
	searchesTotal    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline step executions in seconds",
			Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"step"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of step executions",
		}, []string{"step", "status"}), // status: success, error
		stepsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "steps_active",
			Help:      "Number of steps currently executing",
		}),
		pausesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pauses_total",
			Help:      "Total number of runs halted for a human selection",
		}, []string{"field"}),
		completedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Total number of sessions that produced a launch plan",
		}),
		generateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Duration of structured model calls in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"artifact", "status"}),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of web searches",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.stepDuration,
		m.stepsTotal,
		m.stepsActive,
		m.pausesTotal,
		m.completedTotal,
		m.generateDuration,
		m.searchesTotal,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks recording step and pause metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.stepsActive.Inc()
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.stepsActive.Dec()
			m.stepDuration.WithLabelValues(string(e.Step)).Observe(e.Duration.Seconds())
			m.stepsTotal.WithLabelValues(string(e.Step), status(e.Err)).Inc()
		},
		OnPause: func(_ context.Context, e *domain.PauseEvent) {
			m.pausesTotal.WithLabelValues(string(e.Field)).Inc()
		},
		OnStateChange: func(_ context.Context, e *domain.StateEvent) {
			if e.New != nil && e.New.CampaignPlan != nil && (e.Old == nil || e.Old.CampaignPlan == nil) {
				m.completedTotal.Inc()
			}
		},
	}
}

// Generator wraps gen, timing every call by artifact name.
func (m *Metrics) Generator(gen ports.Generator) ports.Generator {
	return &generator{next: gen, m: m}
}

// Searcher wraps s, counting searches by outcome.
func (m *Metrics) Searcher(s ports.Searcher) ports.Searcher {
	return &searcher{next: s, m: m}
}

type generator struct {
	next ports.Generator
	m    *Metrics
}

func (g *generator) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	start := time.Now()
	doc, err := g.next.Generate(ctx, req)
	g.m.generateDuration.WithLabelValues(req.Name, status(err)).Observe(time.Since(start).Seconds())
	return doc, err
}

type searcher struct {
	next ports.Searcher
	m    *Metrics
}

func (s *searcher) Search(ctx context.Context, query string) (string, error) {
	text, err := s.next.Search(ctx, query)
	s.m.searchesTotal.WithLabelValues(status(err)).Inc()
	return text, err
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
