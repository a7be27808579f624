package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockLost is returned by an UnlockFunc when the lock expired and another
// holder took it before release.
var ErrLockLost = errors.New("session lock lost before release")

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one session across engine replicas
// sharing a store. The in-process mutex of the session manager still applies;
// this lock is taken after it and held for the whole transaction.
type DistributedLocker interface {
	// Lock blocks until sessionID is held or ctx ends. The lock expires after
	// ttl even if never released.
	Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)
}

// LockerFunc adapts a plain function to DistributedLocker.
type LockerFunc func(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)

func (f LockerFunc) Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error) {
	return f(ctx, sessionID, ttl)
}
