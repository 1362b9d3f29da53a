package fiber

// SyncOp adapts a single callback-driven asynchronous operation into a
// call that blocks the calling fiber, without blocking its worker
// goroutine, until the operation completes.
//
// start is invoked exactly once, synchronously, and must arrange for
// complete to be invoked exactly once, from any goroutine (including
// start's own caller, synchronously, if the operation can complete
// immediately). Calling complete more than once, or never, is a caller
// bug: a second call blocks forever on the internal result channel if the
// first result has not been received yet, and is otherwise discarded
// (apart from its extra Wake of t); never calling it leaks the fiber.
//
// If t is nil, the caller is assumed not to be running inside a fiber,
// and SyncOp blocks the calling goroutine directly instead of yielding.
//
// This is the generic form of the GlusterFS SYNCOP macro: fsop builds the
// filesystem operation surface on top of it.
func SyncOp[Out any](t *Task, start func(complete func(Out, error))) (Out, error) {
	type result struct {
		val Out
		err error
	}

	resCh := make(chan result, 1)

	start(func(v Out, err error) {
		resCh <- result{val: v, err: err}
		if t != nil {
			t.Wake()
		}
	})

	if t == nil {
		r := <-resCh
		return r.val, r.err
	}

	for {
		select {
		case r := <-resCh:
			return r.val, r.err
		default:
		}
		// If complete already ran (and already called Wake), this Yield
		// does not wait: t.woken was incremented before this call,
		// satisfying WaitFor(1), so the worker puts the task straight
		// back on the run queue instead of the wait queue.
		t.Yield()
	}
}
