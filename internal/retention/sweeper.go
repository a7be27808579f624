// Package retention removes sessions that have not been written for a configured age.
package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
)

// Sessions is the slice of the controller the sweeper needs.
type Sessions interface {
	Sessions(ctx context.Context) ([]string, error)
	Session(ctx context.Context, sessionID string) (*domain.State, error)
	Delete(ctx context.Context, sessionID string) error
}

// Sweeper deletes sessions whose UpdatedAt is older than MaxAge.
type Sweeper struct {
	sessions Sessions
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
	cron     *cron.Cron
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// New creates a Sweeper. maxAge must be positive.
func New(sessions Sessions, maxAge time.Duration, opts ...Option) (*Sweeper, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %s", maxAge)
	}
	s := &Sweeper{
		sessions: sessions,
		maxAge:   maxAge,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sweep runs one pass and returns how many sessions were deleted.
// Per-session failures are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.sessions.Sessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	cutoff := s.now().Add(-s.maxAge)
	deleted := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		state, err := s.sessions.Session(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				s.logger.Warn("Retention skipped session", "session_id", id, "err", err)
			}
			continue
		}
		if !state.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := s.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Warn("Retention failed to delete session", "session_id", id, "err", err)
			continue
		}
		deleted++
		s.logger.Info("Session expired", "session_id", id, "updated_at", state.UpdatedAt)
	}
	return deleted, nil
}

// Start schedules Sweep with a cron expression (standard 5 fields or descriptors like "@daily").
// Overlapping runs are skipped.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s.cron.Schedule(sched, cron.FuncJob(func() {
		n, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error("Retention sweep failed", "err", err)
			return
		}
		s.logger.Debug("Retention sweep finished", "deleted", n)
	}))
	s.cron.Start()
	s.logger.Info("Retention sweeper started", "schedule", schedule, "max_age", s.maxAge)
	return nil
}

// Stop halts the schedule and waits for a running sweep to return.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
