package fiber

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Identity is the uid/gid a Task's operations run as. It defaults to the
// zero value and is only meaningful to callers that interpret it (e.g. an
// fsop.Backend enforcing permission checks).
type Identity struct {
	UID int
	GID int
}

// Task is a fiber: a cooperatively scheduled unit of work with its own
// goroutine, parked whenever the work suspends and resumed by whichever
// worker goroutine next switches into it.
//
// All exported methods are safe to call from any goroutine except where
// documented otherwise; see the package doc for the fiber/worker/callback
// concurrency domains.
type Task struct {
	id  uint64
	env *Environment

	state atomicState

	fn  func(*Task) int
	cbk func(int)

	ctx context.Context

	identityMu sync.Mutex
	identity   Identity

	// guarded by env.mu
	woken     uint64
	waitfor   uint64
	slept     bool
	queueElem *list.Element
	queuedAt  time.Time

	started  atomic.Bool
	resumeCh chan struct{}
	parkCh   chan struct{}

	ret  int
	done chan struct{} // nil when cbk != nil (GoAsync); closed on completion otherwise
}

// ID returns the task's unique, environment-scoped identifier.
func (t *Task) ID() uint64 { return t.id }

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState { return t.state.load() }

// Context returns the context the task was created with (see WithContext).
// Never nil; defaults to context.Background().
func (t *Task) Context() context.Context { return t.ctx }

// Identity returns the task's current uid/gid.
func (t *Task) Identity() Identity {
	t.identityMu.Lock()
	defer t.identityMu.Unlock()
	return t.identity
}

// SetID updates the task's uid/gid. A negative value leaves the
// corresponding field unchanged, mirroring synctask_setid's uid_t/gid_t(-1)
// sentinel convention.
func (t *Task) SetID(uid, gid int) {
	t.identityMu.Lock()
	defer t.identityMu.Unlock()
	if uid >= 0 {
		t.identity.UID = uid
	}
	if gid >= 0 {
		t.identity.GID = gid
	}
}

// Yield suspends the calling fiber until it has been woken once (via
// Wake), handing its worker goroutine back to the pool in the meantime.
// Equivalent to WaitFor(1): if the fiber was already woken before calling
// Yield, the worker puts it straight back on the run queue instead of the
// wait queue.
//
// Must only be called from within the fiber it suspends.
func (t *Task) Yield() {
	t.WaitFor(1)
}

// WaitFor suspends the calling fiber until it has been woken n times (via
// Wake) since its last resumption. If it has already accumulated n or more
// wakes, the worker puts it straight back on the run queue instead of the
// wait queue.
//
// Must only be called from within the fiber it suspends.
func (t *Task) WaitFor(n uint64) {
	e := t.env
	e.mu.Lock()
	t.waitfor = n
	e.mu.Unlock()
	t.park()
}

// Yawn resets the task's wake/wait counters without suspending. Useful
// before a sequence of WaitFor calls that should not be influenced by
// wakes accumulated earlier in the fiber's execution.
func (t *Task) Yawn() {
	e := t.env
	e.mu.Lock()
	t.woken = 0
	t.waitfor = 0
	e.mu.Unlock()
}

// Wake records one wake-up for the task. If the task is parked on the
// wait queue and has now accumulated enough wakes to satisfy its last
// WaitFor call, it is moved to the run queue. Safe to call from any
// goroutine, any number of times, before or after the corresponding
// WaitFor/Yield call (wakes are never lost).
func (t *Task) Wake() {
	e := t.env
	e.mu.Lock()
	t.woken++
	if t.slept && t.woken >= t.waitfor {
		e.enqueueRunLocked(t)
	}
	e.cond.Broadcast()
	e.mu.Unlock()
}

// park hands control back to the worker goroutine currently switched into
// this task, and blocks until that (or another) worker switches back in.
// The Go analogue of swapcontext(task->ctx, task->proc->sched).
func (t *Task) park() {
	t.parkCh <- struct{}{}
	<-t.resumeCh
}

// trampoline is the task's dedicated goroutine body. It runs the user
// function exactly once, then reports completion. The goroutine parks via
// park (invoked indirectly, by Yield/WaitFor inside fn) every time the
// fiber suspends, so trampoline itself only ever executes fn and the
// finishing sequence.
func (t *Task) trampoline() {
	<-t.resumeCh
	t.ret = t.fn(t)
	if t.cbk != nil {
		t.cbk(t.ret)
	}
	t.state.store(TaskDone)
	t.parkCh <- struct{}{}
}

// taskOptions holds per-task configuration resolved from TaskOption values.
type taskOptions struct {
	identity Identity
	ctx      context.Context
}

// TaskOption configures a Task at creation time, via Go or GoAsync.
type TaskOption interface {
	applyTask(*taskOptions)
}

type taskOptionFunc func(*taskOptions)

func (f taskOptionFunc) applyTask(o *taskOptions) { f(o) }

// WithIdentity sets the uid/gid a task starts with.
func WithIdentity(id Identity) TaskOption {
	return taskOptionFunc(func(o *taskOptions) { o.identity = id })
}

// WithContext sets the context.Context a task's Context method returns.
// Defaults to context.Background() if never set.
func WithContext(ctx context.Context) TaskOption {
	return taskOptionFunc(func(o *taskOptions) { o.ctx = ctx })
}

func resolveTaskOptions(opts []TaskOption) *taskOptions {
	cfg := &taskOptions{ctx: context.Background()}
	for _, o := range opts {
		if o != nil {
			o.applyTask(cfg)
		}
	}
	return cfg
}
