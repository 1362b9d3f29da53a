package fiber

import "errors"

// Standard errors returned by the scheduler's public surface.
var (
	// ErrEnvClosed is returned when Go/GoAsync is called on a closed Environment.
	ErrEnvClosed = errors.New("fiber: environment is closed")

	// ErrBusy is returned by FiberMutex.TryLock when the lock is already held.
	ErrBusy = errors.New("fiber: lock is busy")

	// ErrOwnerMismatch is the warning-path error surfaced to a strict-mode
	// caller of FiberMutex.Unlock when the caller does not hold the lock.
	ErrOwnerMismatch = errors.New("fiber: unlock called by non-owner")

	// ErrSpawnFailed is logged (never returned to task callers) when the
	// scheduler fails to spawn a worker goroutine during scale-up.
	ErrSpawnFailed = errors.New("fiber: worker spawn failed")
)
