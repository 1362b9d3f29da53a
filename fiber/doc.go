// Package fiber implements a synchronous-over-asynchronous task runtime: a
// cooperative fiber scheduler that lets callback-driven I/O code be written
// as straight-line "blocking" calls while the underlying work stays fully
// event-driven underneath.
//
// # Architecture
//
// A bounded pool of worker goroutines multiplexes many fibers ([Task]). Each
// task owns a dedicated goroutine that is parked (not destroyed) whenever it
// suspends, and resumed when the condition it is waiting for is satisfied.
// Three concurrency domains interact here:
//
//   - Fibers: cooperative, stack-switch-equivalent units of work.
//   - Workers: goroutines that execute fibers, drawn from [Environment]'s
//     bounded pool.
//   - Async callbacks: arbitrary goroutines that deliver completions via
//     [Task.Wake].
//
// The scheduler preserves ordering, avoids lost wakeups across all three
// domains, and remains correct under dynamic worker scaling, fiber-aware
// recursive-style mutexes ([FiberMutex]), and mixed fiber/non-fiber
// contention.
//
// # Usage
//
//	env := fiber.NewEnvironment(fiber.WithProcMin(2), fiber.WithProcMax(8))
//	defer env.Close(context.Background())
//
//	ret, err := fiber.Go(env, func(t *fiber.Task) int {
//	    // blocking-looking code; t.Yield()/t.WaitFor(n) suspend the fiber
//	    // without blocking the worker goroutine executing it.
//	    return 42
//	})
//
// # Thread safety
//
// [Environment] methods, [Task.Wake], and [FiberMutex] methods are safe to
// call from any goroutine, fiber or not. [Task.Yield], [Task.WaitFor], and
// [Task.Yawn] must only be called from within the fiber they suspend.
package fiber
