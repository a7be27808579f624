package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/internal/adapters/file"
	"github.com/aretw0/souqra/internal/config"
	"github.com/aretw0/souqra/pkg/adapters/llm"
	"github.com/aretw0/souqra/pkg/adapters/loam"
	"github.com/aretw0/souqra/pkg/adapters/memory"
	"github.com/aretw0/souqra/pkg/adapters/redis"
	"github.com/aretw0/souqra/pkg/adapters/search"
	"github.com/aretw0/souqra/pkg/adapters/sqlstore"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/observability"
	"github.com/aretw0/souqra/pkg/persistence/middleware"
	"github.com/aretw0/souqra/pkg/ports"
)

// OpenAIBaseURL is used for llm.provider "openai" when no base_url is set.
const OpenAIBaseURL = "https://api.openai.com/v1"

// App is a fully wired controller plus the resources it owns.
type App struct {
	Engine  *souqra.Engine
	Metrics *observability.Metrics
	Config  config.Config
	Logger  *slog.Logger

	closers []func() error
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// Build wires every adapter selected by cfg into a controller. hooks are
// combined with the metrics and debug hooks.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*App, error) {
	app := &App{
		Metrics: observability.New(),
		Config:  cfg,
		Logger:  logger,
	}

	// 1. Persistence
	store, locker, err := app.store(ctx, cfg.Store)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	store, err = secure(store, cfg.Store)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	// 2. Model and search
	gen := app.Metrics.Generator(generator(cfg.LLM, logger))
	searcher := app.Metrics.Searcher(newSearcher(cfg.Search, logger))

	hooks = append([]domain.LifecycleHooks{app.Metrics.Hooks(), DebugHooks(logger)}, hooks...)
	opts := []souqra.Option{
		souqra.WithLogger(logger),
		souqra.WithStore(store),
		souqra.WithGenerator(gen),
		souqra.WithSearcher(searcher),
		souqra.WithConcurrency(cfg.Pipeline.Concurrency),
		souqra.WithLifecycleHooks(domain.CombineHooks(hooks...)),
	}
	if locker != nil {
		opts = append(opts, souqra.WithLocker(locker, cfg.Store.LockTTL))
	}
	if len(cfg.Pipeline.Styles) > 0 {
		opts = append(opts, souqra.WithStyles(cfg.Pipeline.Styles...))
	}

	// 3. Prompt overrides
	if cfg.Pipeline.PromptsDir != "" {
		lib, err := loam.Open(cfg.Pipeline.PromptsDir)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to open prompt library: %w", err)
		}
		opts = append(opts, souqra.WithPrompts(lib))
	}

	engine, err := souqra.New(opts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Engine = engine
	return app, nil
}

func (a *App) store(ctx context.Context, cfg config.Store) (ports.StateStore, ports.DistributedLocker, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewStore(), nil, nil
	case "file":
		return file.New(cfg.Dir), nil, nil
	case "redis":
		opts := []redis.Option{redis.WithPrefix(cfg.RedisPrefix + "session:")}
		if cfg.RedisTTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.RedisTTL))
		}
		s := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		a.closers = append(a.closers, s.Close)
		if err := s.Client().Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return s, redis.NewLocker(s.Client(), cfg.RedisPrefix), nil
	case "sqlite", "postgres":
		s, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// secure wraps the backend with redaction (outermost) and encryption.
func secure(store ports.StateStore, cfg config.Store) (ports.StateStore, error) {
	var mws []middleware.Middleware
	if cfg.Redact {
		pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		key, err := middleware.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		var fallbacks [][]byte
		for i, s := range cfg.FallbackKeys {
			k, err := middleware.DecodeKey(s)
			if err != nil {
				return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
			}
			fallbacks = append(fallbacks, k)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    key,
			FallbackKeys: fallbacks,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(store, mws...), nil
}

func generator(cfg config.LLM, logger *slog.Logger) ports.Generator {
	var completer llm.Completer
	switch cfg.Provider {
	case "dryrun":
		return llm.NewDryRun()
	case "anthropic":
		if cfg.APIKey == "" {
			break
		}
		completer = llm.NewAnthropicCompleter(cfg.APIKey, cfg.Model)
	default:
		if cfg.APIKey == "" {
			break
		}
		baseURL := cfg.BaseURL
		if baseURL == "" && cfg.Provider == "openai" {
			baseURL = OpenAIBaseURL
		}
		completer = llm.NewOpenAICompleter(baseURL, cfg.APIKey, cfg.Model,
			llm.WithTemperature(cfg.Temperature),
			llm.WithAppName("souqra"),
		)
	}
	if completer == nil {
		logger.Warn("No API key for the configured LLM provider, using dry run", "provider", cfg.Provider)
		return llm.NewDryRun()
	}

	var gen ports.Generator = llm.NewStructured(completer, logger)
	if cfg.RateLimit > 0 {
		gen = llm.NewRateLimited(gen, cfg.RateLimit, cfg.Burst)
	}
	return gen
}

func newSearcher(cfg config.Search, logger *slog.Logger) ports.Searcher {
	var providers []search.Provider
	switch cfg.Provider {
	case "none":
		return search.Nop{}
	case "brave":
		if cfg.BraveAPIKey != "" {
			providers = append(providers, search.NewBrave(cfg.BraveAPIKey, ""))
		} else {
			logger.Warn("No Brave API key, falling back to DuckDuckGo")
		}
	}
	providers = append(providers, search.NewDuckDuckGo(""))
	return search.New(providers, search.WithLimit(cfg.Limit), search.WithLogger(logger))
}
