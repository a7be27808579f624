package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// interruptGrace is how long an input error waits for a pending signal.
// On some terminals Ctrl+C surfaces as EOF on stdin just before SIGINT.
const interruptGrace = 100 * time.Millisecond

// interruptWatch cancels its context on SIGINT or SIGTERM and can tell a
// user interrupt apart from the caller cancelling the run.
type interruptWatch struct {
	parent context.Context
	ctx    context.Context
	stop   context.CancelFunc
	grace  time.Duration
}

func watchInterrupts(parent context.Context) *interruptWatch {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &interruptWatch{parent: parent, ctx: ctx, stop: stop, grace: interruptGrace}
}

// Context is cancelled by an interrupt or by the parent.
func (w *interruptWatch) Context() context.Context { return w.ctx }

// Interrupted reports whether the watch fired while the parent is still live.
func (w *interruptWatch) Interrupted() bool {
	return w.ctx.Err() != nil && w.parent.Err() == nil
}

// Settle waits up to the grace period for an interrupt that may be in flight.
func (w *interruptWatch) Settle() {
	if w.ctx.Err() != nil {
		return
	}
	t := time.NewTimer(w.grace)
	defer t.Stop()
	select {
	case <-w.ctx.Done():
	case <-t.C:
	}
}

// Close stops listening for signals.
func (w *interruptWatch) Close() { w.stop() }
