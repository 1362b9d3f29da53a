// Package telemetry provides low-overhead latency tracking for an
// Environment: time spent waiting on the run queue before a worker picks a
// task up, and time spent inside a single switch (the span between a
// worker resuming a task and that task next yielding or finishing).
package telemetry
