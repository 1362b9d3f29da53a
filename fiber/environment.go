package fiber

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/fiber/ratelimit"
	"github.com/joeycumines/fiber/telemetry"
)

// Environment owns a bounded pool of worker goroutines, the run and wait
// queues they share, and the scaling policy that grows the pool (up to
// ProcMax) when the run queue backs up and shrinks it (down to ProcMin)
// when workers sit idle.
//
// The Go analogue of struct syncenv: runq/waitq are container/list.Lists
// instead of intrusive list_heads, and each "processor" is a worker
// goroutine instead of a pthread.
type Environment struct {
	mu   sync.Mutex
	cond *sync.Cond

	runq  list.List
	waitq list.List

	procs   int
	procMin int
	procMax int

	closed      bool
	idleTimeout time.Duration
	stackHint   int

	spawnLimiter *ratelimit.Limiter
	metrics      *telemetry.Recorder
	logger       Logger

	drainOnClose bool

	nextTaskID atomic.Uint64
	workers    sync.WaitGroup
	tasks      sync.WaitGroup
}

// NewEnvironment constructs an Environment and brings its initial pool of
// ProcMin worker goroutines online.
func NewEnvironment(opts ...Option) *Environment {
	cfg, err := resolveEnvOptions(opts)
	if err != nil {
		// Only WithSpawnRateLimit/WithMetrics-style options could ever
		// fail, and none of the options defined in this package return
		// an error; resolveEnvOptions's signature exists for forward
		// compatibility with options that validate input.
		panic(err)
	}

	e := &Environment{
		procMin:      cfg.procMin,
		procMax:      cfg.procMax,
		idleTimeout:  cfg.idleTimeout,
		stackHint:    cfg.stackHint,
		spawnLimiter: cfg.spawnLimiter,
		metrics:      cfg.metrics,
		logger:       cfg.logger,
		drainOnClose: cfg.drainOnClose,
	}
	e.cond = sync.NewCond(&e.mu)

	for i := 0; i < e.procMin; i++ {
		e.spawnWorker("initial")
	}

	return e
}

// GoroutineStackHint returns the informational stack-size hint configured
// via WithGoroutineStackHint. Go does not support fixed per-goroutine
// stack allocation, so this value is never used to size anything; it is
// preserved only for diagnostics/API parity with the system this
// scheduler is modeled on.
func (e *Environment) GoroutineStackHint() int { return e.stackHint }

// Metrics returns a snapshot of the Environment's latency and scaling
// counters. Returns the zero Stats if metrics were never configured via
// WithMetrics.
func (e *Environment) Metrics() telemetry.Stats {
	return e.metrics.Snapshot()
}

// EnvStats is a point-in-time snapshot of queue depths and pool size.
type EnvStats struct {
	Procs        int
	RunQueueLen  int
	WaitQueueLen int
}

// Stats returns the Environment's current queue depths and worker count.
func (e *Environment) Stats() EnvStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EnvStats{
		Procs:        e.procs,
		RunQueueLen:  e.runq.Len(),
		WaitQueueLen: e.waitq.Len(),
	}
}

// Close signals every worker goroutine to retire once the run and wait
// queues are both empty, and, unless WithAbandonOnClose was configured, blocks until
// every outstanding task has finished running or ctx is done.
func (e *Environment) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()

	if !e.drainOnClose {
		return nil
	}

	done := make(chan struct{})
	go func() {
		e.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go runs fn as a new fiber and blocks the calling goroutine until it
// finishes, returning the value fn returned.
func Go(env *Environment, fn func(*Task) int, opts ...TaskOption) (int, error) {
	t, err := env.newTask(fn, nil, opts)
	if err != nil {
		return 0, err
	}
	env.schedule(t)
	<-t.done
	return t.ret, nil
}

// GoAsync runs fn as a new fiber and returns immediately; cbk is invoked
// with fn's return value once the fiber finishes, from the task's own
// trampoline goroutine, not any worker goroutine. GoAsync never blocks
// the caller.
func GoAsync(env *Environment, fn func(*Task) int, cbk func(int), opts ...TaskOption) (*Task, error) {
	t, err := env.newTask(fn, cbk, opts)
	if err != nil {
		return nil, err
	}
	env.schedule(t)
	return t, nil
}

func (e *Environment) newTask(fn func(*Task) int, cbk func(int), opts []TaskOption) (*Task, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrEnvClosed
	}

	cfg := resolveTaskOptions(opts)

	t := &Task{
		id:       e.nextTaskID.Add(1),
		env:      e,
		fn:       fn,
		cbk:      cbk,
		ctx:      cfg.ctx,
		identity: cfg.identity,
		resumeCh: make(chan struct{}, 1),
		parkCh:   make(chan struct{}, 1),
	}
	if cbk == nil {
		t.done = make(chan struct{})
	}
	t.state.store(TaskInit)

	return t, nil
}

func (e *Environment) schedule(t *Task) {
	e.tasks.Add(1)
	e.mu.Lock()
	e.enqueueRunLocked(t)
	e.mu.Unlock()
	e.scale()
}

// enqueueRunLocked places t at the back of the run queue, removing it
// from the wait queue first if it was parked there. Must be called with
// e.mu held. The Go analogue of __run.
func (e *Environment) enqueueRunLocked(t *Task) {
	e.dequeueLocked(t)
	t.queuedAt = time.Now()
	t.queueElem = e.runq.PushBack(t)
	t.state.store(TaskRun)
	e.cond.Signal()
}

// enqueueWaitLocked places t at the back of the wait queue. Must be
// called with e.mu held. The Go analogue of __wait.
func (e *Environment) enqueueWaitLocked(t *Task) {
	e.dequeueLocked(t)
	t.queueElem = e.waitq.PushBack(t)
	t.state.store(TaskWait)
}

func (e *Environment) dequeueLocked(t *Task) {
	if t.queueElem == nil {
		return
	}
	switch t.state.load() {
	case TaskRun:
		e.runq.Remove(t.queueElem)
	case TaskWait:
		e.waitq.Remove(t.queueElem)
	}
	t.queueElem = nil
}

// takeTask blocks until a task is available on the run queue, or returns
// nil once the worker decides to retire (either the Environment closed
// with both the run and wait queues empty, or this worker is above
// procMin and timed out idle). The Go analogue of syncenv_task.
func (e *Environment) takeTask() *Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.runq.Len() == 0 {
		if e.closed && e.waitq.Len() == 0 {
			e.procs--
			// Let the other idle workers re-check and retire as well.
			e.cond.Broadcast()
			return nil
		}
		if e.procs > e.procMin {
			if !e.waitRunqLocked(e.idleTimeout) && e.runq.Len() == 0 {
				e.procs--
				e.metrics.RecordRetire()
				return nil
			}
			continue
		}
		e.cond.Wait()
	}

	front := e.runq.Front()
	e.runq.Remove(front)
	t := front.Value.(*Task)
	t.queueElem = nil
	t.woken = 0
	t.waitfor = 0
	t.slept = false

	return t
}

// waitRunqLocked waits on e.cond for up to d, returning true if something
// else (a broadcast not caused by our own timeout) woke it first. Must be
// called with e.mu held; sync.Cond.Wait releases and reacquires it.
func (e *Environment) waitRunqLocked(d time.Duration) (woken bool) {
	timer := time.AfterFunc(d, func() {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	})
	e.cond.Wait()
	return timer.Stop()
}

// switchTo resumes t's goroutine and blocks until it parks or finishes,
// then applies the post-switch run/wait decision. The Go analogue of
// synctask_switchto.
func (e *Environment) switchTo(t *Task) {
	e.metrics.RecordQueueWait(time.Since(t.queuedAt))
	start := time.Now()

	if t.started.CompareAndSwap(false, true) {
		go t.trampoline()
	}
	t.resumeCh <- struct{}{}
	<-t.parkCh

	e.metrics.RecordSwitch(time.Since(start))

	if t.state.load() == TaskDone {
		e.tasks.Done()
		if t.done != nil {
			close(t.done)
		}
		return
	}

	e.mu.Lock()
	if t.woken >= t.waitfor {
		e.enqueueRunLocked(t)
	} else {
		t.slept = true
		e.enqueueWaitLocked(t)
	}
	e.mu.Unlock()
}

func (e *Environment) workerLoop() {
	defer e.workers.Done()
	for {
		t := e.takeTask()
		if t == nil {
			return
		}
		e.switchTo(t)
		e.scale()
	}
}

// scale grows the worker pool towards the current run queue depth
// (capped at procMax), one spawn at a time. The Go analogue of
// syncenv_scale.
func (e *Environment) scale() {
	e.mu.Lock()
	if e.procs > e.runq.Len() || e.closed {
		e.mu.Unlock()
		return
	}
	target := e.runq.Len()
	if target > e.procMax {
		target = e.procMax
	}
	diff := target - e.procs
	e.mu.Unlock()

	for i := 0; i < diff; i++ {
		if !e.spawnWorker("backlog") {
			break
		}
	}
}

// spawnWorker brings one additional worker goroutine online, subject to
// procMax and the configured spawn rate limit. reason is passed to the
// rate limiter as the category and to the logger on rejection.
func (e *Environment) spawnWorker(reason string) bool {
	e.mu.Lock()
	if e.procs >= e.procMax || e.closed {
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	if e.spawnLimiter != nil {
		if _, ok := e.spawnLimiter.Allow(reason); !ok {
			e.metrics.RecordSpawnRejected()
			if e.logger.Enabled(LevelWarn) {
				e.logger.Log(LevelWarn, "worker spawn rate-limited", F("reason", reason), F("error", ErrSpawnFailed))
			}
			return false
		}
	}

	e.mu.Lock()
	if e.procs >= e.procMax || e.closed {
		e.mu.Unlock()
		return false
	}
	e.procs++
	e.mu.Unlock()

	e.workers.Add(1)
	go e.workerLoop()
	e.metrics.RecordSpawn()
	return true
}
