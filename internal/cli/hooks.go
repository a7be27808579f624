package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/souqra/pkg/domain"
)

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Enter Step", "session_id", e.SessionID, "step", e.Step)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.Debug("Leave Step (Error)", "session_id", e.SessionID, "step", e.Step, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.Debug("Leave Step", "session_id", e.SessionID, "step", e.Step, "duration", e.Duration)
		},
		OnPause: func(ctx context.Context, e *domain.PauseEvent) {
			logger.Debug("Paused", "session_id", e.SessionID, "before", e.Before, "field", e.Field)
		},
	}
}
