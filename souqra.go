package souqra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/souqra/internal/agents"
	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/internal/runtime"
	"github.com/aretw0/souqra/pkg/adapters/llm"
	"github.com/aretw0/souqra/pkg/adapters/memory"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/report"
	"github.com/aretw0/souqra/pkg/runner"
	"github.com/aretw0/souqra/pkg/session"
	"github.com/aretw0/souqra/pkg/workflow"
)

// Engine is the session controller: the entry point used by the CLI, the
// HTTP server and the MCP server. It satisfies ports.Controller.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	team     *agents.Team

	store       ports.StateStore
	generator   ports.Generator
	searcher    ports.Searcher
	prompts     ports.PromptSource
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	styles      []string
	concurrency int
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	newID       func() string
	now         func() time.Time
}

var _ ports.Controller = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the session backend.
//
// The default is an in-memory store: sessions are lost when the process
// exits and are not shared between processes. Pass a file or SQL store for
// anything that must survive a restart, e.g. WithStore(file.New(dir)) as
// the CLI does.
func WithStore(s ports.StateStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithGenerator sets the language model used by the steps.
func WithGenerator(g ports.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithSearcher enables web research.
func WithSearcher(s ports.Searcher) Option {
	return func(e *Engine) {
		e.searcher = s
	}
}

// WithPrompts overrides the built-in step prompts.
func WithPrompts(p ports.PromptSource) Option {
	return func(e *Engine) {
		e.prompts = p
	}
}

// WithLocker serializes sessions across processes.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithStyles sets the creative styles, in order.
func WithStyles(styles ...string) Option {
	return func(e *Engine) {
		e.styles = styles
	}
}

// WithConcurrency bounds the parallel creative generations.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIDGenerator replaces the session ID source (default: random UUIDs).
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New builds a controller. Without WithGenerator the engine runs on the
// dry-run generator, which returns canned artifacts. Without WithStore
// sessions live in memory only and a warning is logged.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.store == nil {
		e.logger.Warn("No store configured, sessions are kept in memory and lost on exit")
		e.store = memory.NewStore()
	}
	if e.generator == nil {
		e.logger.Warn("No generator configured, using dry run")
		e.generator = llm.NewDryRun()
	}

	sessionOpts := []session.Option{
		session.WithLogger(e.logger),
		session.WithClock(e.now),
	}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker), session.WithLockTTL(e.lockTTL))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	teamOpts := []agents.Option{
		agents.WithLogger(e.logger),
		agents.WithStyles(e.styles...),
		agents.WithConcurrency(e.concurrency),
	}
	if e.searcher != nil {
		teamOpts = append(teamOpts, agents.WithSearcher(e.searcher))
	}
	if e.prompts != nil {
		teamOpts = append(teamOpts, agents.WithPrompts(e.prompts))
	}
	e.team = agents.New(e.generator, teamOpts...)

	rt, err := runtime.NewEngine(e.sessions, e.team.Steps(),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
		runtime.WithClock(e.now),
	)
	if err != nil {
		return nil, err
	}
	e.runtime = rt
	return e, nil
}

// Start validates the brief, creates a session and runs it to the first pause.
func (e *Engine) Start(ctx context.Context, req ports.StartRequest) (*domain.State, error) {
	brief, err := sanitizeBrief(req.Brief)
	if err != nil {
		return nil, err
	}
	if err := brief.Validate(); err != nil {
		return nil, err
	}
	owner, err := sanitize(req.Owner)
	if err != nil {
		return nil, fmt.Errorf("%w: owner: %v", domain.ErrInvalidBrief, err)
	}

	state := domain.NewState(e.newID(), brief)
	state.Owner = owner
	return e.runtime.Start(ctx, state)
}

// SelectPersona picks one of the research personas and runs strategy and creative.
func (e *Engine) SelectPersona(ctx context.Context, sessionID string, p domain.Persona) (*domain.State, error) {
	return e.runtime.Select(ctx, sessionID, domain.FieldSelectedPersona, domain.Update{SelectedPersona: &p})
}

// SelectCreativeDraft picks a creative draft and runs the planning step.
func (e *Engine) SelectCreativeDraft(ctx context.Context, sessionID string, d domain.CreativeDraft) (*domain.State, error) {
	return e.runtime.Select(ctx, sessionID, domain.FieldSelectedCreativeDraft, domain.Update{SelectedCreativeDraft: &d})
}

// Resume runs a session from its stored position without new input.
func (e *Engine) Resume(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.runtime.Advance(ctx, sessionID)
}

// Retry re-runs the failed step of a session.
func (e *Engine) Retry(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.runtime.Retry(ctx, sessionID)
}

// Session returns the stored snapshot.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.sessions.Get(ctx, sessionID)
}

// Sessions lists the stored session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Kits lists the completed sessions of owner (everyone when empty), newest first.
// Sessions that vanish while listing are skipped.
func (e *Engine) Kits(ctx context.Context, owner string) ([]domain.LaunchKit, error) {
	ids, err := e.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	kits := []domain.LaunchKit{}
	for _, id := range ids {
		s, err := e.sessions.Get(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", id, err)
		}
		if owner != "" && s.Owner != owner {
			continue
		}
		if e.runtime.Locate(s).Phase != workflow.PhaseCompleted {
			continue
		}
		kits = append(kits, s.Kit())
	}
	slices.SortStableFunc(kits, func(a, b domain.LaunchKit) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return kits, nil
}

// Delete removes a session.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// Report renders the session as a Markdown launch kit.
func (e *Engine) Report(ctx context.Context, sessionID string) (string, error) {
	s, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return report.Markdown(s), nil
}

// Position returns where a snapshot stands in the pipeline.
func (e *Engine) Position(s *domain.State) workflow.Position {
	return e.runtime.Locate(s)
}

// Definition returns the pipeline topology.
func (e *Engine) Definition() workflow.Definition {
	return e.runtime.Definition()
}

// Styles returns the configured creative styles.
func (e *Engine) Styles() []string {
	return e.team.Styles()
}

// Store returns the session backend.
func (e *Engine) Store() ports.StateStore {
	return e.store
}

func sanitizeBrief(b domain.Brief) (domain.Brief, error) {
	var errs []error
	clean := b.Map(func(v string) string {
		out, err := sanitize(v)
		if err != nil {
			errs = append(errs, err)
		}
		return out
	})
	if len(errs) > 0 {
		return domain.Brief{}, fmt.Errorf("%w: %v", domain.ErrInvalidBrief, errors.Join(errs...))
	}
	return clean, nil
}

func sanitize(v string) (string, error) {
	return runner.SanitizeInput(v)
}
