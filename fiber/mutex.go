package fiber

import (
	"container/list"
	"sync"
)

// FiberMutex is a mutual-exclusion lock whose fiber waiters yield instead
// of blocking their worker goroutine, while non-fiber waiters (callers
// passing a nil *Task) block on a condition variable as usual. Unlock
// wakes at most one of each kind: one condition-variable waiter, and the
// longest-waiting fiber.
//
// The zero value is ready to use. Init exists only for callers that want
// to apply MutexOption values before first use.
//
// The Go analogue of synclock_t.
type FiberMutex struct {
	once sync.Once

	guard sync.Mutex
	cond  *sync.Cond

	locked  bool
	owner   *Task
	waiters list.List // of *Task, FIFO

	strict bool
	logger Logger
}

// MutexOption configures a FiberMutex via Init.
type MutexOption interface {
	applyMutex(*FiberMutex)
}

type mutexOptionFunc func(*FiberMutex)

func (f mutexOptionFunc) applyMutex(m *FiberMutex) { f(m) }

// WithStrictOwnership makes Unlock return ErrOwnerMismatch when called by
// a Task that does not hold the lock, instead of the default behavior of
// logging a warning through the configured Logger and proceeding anyway
// (matching synclock's advisory-only ownership check).
func WithStrictOwnership(strict bool) MutexOption {
	return mutexOptionFunc(func(m *FiberMutex) { m.strict = strict })
}

// WithMutexLogger sets the Logger used to report owner mismatches when
// strict ownership is not enabled. Defaults to NewNoopLogger.
func WithMutexLogger(logger Logger) MutexOption {
	return mutexOptionFunc(func(m *FiberMutex) { m.logger = logger })
}

// Init applies opts and prepares the mutex for use. Calling it is
// optional; the zero value works without it, defaulting every option.
func (m *FiberMutex) Init(opts ...MutexOption) {
	for _, o := range opts {
		if o != nil {
			o.applyMutex(m)
		}
	}
	m.lazyInit()
}

func (m *FiberMutex) lazyInit() {
	m.once.Do(func() {
		m.cond = sync.NewCond(&m.guard)
		if m.logger == nil {
			m.logger = NewNoopLogger()
		}
	})
}

// Lock acquires the mutex, blocking until it is available. t identifies
// the calling fiber; pass nil if the caller is not running inside a
// fiber, in which case Lock blocks the calling goroutine directly.
func (m *FiberMutex) Lock(t *Task) {
	m.lazyInit()
	m.guard.Lock()
	defer m.guard.Unlock()
	m.lockLocked(t)
}

// TryLock attempts to acquire the mutex without blocking, returning
// ErrBusy if it is already held.
func (m *FiberMutex) TryLock(t *Task) error {
	m.lazyInit()
	m.guard.Lock()
	defer m.guard.Unlock()
	if m.locked {
		return ErrBusy
	}
	m.lockLocked(t)
	return nil
}

// lockLocked performs the actual acquisition loop. Must be called with
// m.guard held; it is released and reacquired around each suspension.
func (m *FiberMutex) lockLocked(t *Task) {
	for m.locked {
		if t != nil {
			elem := m.waiters.PushBack(t)
			m.guard.Unlock()
			t.Yield()
			m.guard.Lock()
			m.waiters.Remove(elem)
		} else {
			m.cond.Wait()
		}
	}
	m.locked = true
	m.owner = t
}

// Unlock releases the mutex. t should be whatever was passed to the Lock
// or TryLock call that acquired it; a mismatch is logged (or, with
// WithStrictOwnership, returned as ErrOwnerMismatch) but the mutex is
// unlocked regardless, matching the advisory-only ownership check of the
// primitive this type is modeled on.
func (m *FiberMutex) Unlock(t *Task) error {
	m.lazyInit()
	m.guard.Lock()
	defer m.guard.Unlock()

	var err error
	if m.owner != t {
		if m.strict {
			err = ErrOwnerMismatch
		} else if m.logger.Enabled(LevelWarn) {
			m.logger.Log(LevelWarn, "fiber mutex unlocked by non-owner")
		}
	}

	m.locked = false
	m.owner = nil

	// At most two goroutines wake per unlock: one condition-variable
	// waiter and the longest-waiting fiber. Cheaper than tracking exact
	// waiter counts, and avoids a thundering herd.
	m.cond.Signal()
	if front := m.waiters.Front(); front != nil {
		front.Value.(*Task).Wake()
	}

	return err
}
