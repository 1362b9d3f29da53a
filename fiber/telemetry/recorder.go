package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// latencyTracker guards a latencyQuantiles with a mutex and translates
// between time.Duration and the float64 nanosecond counts it operates
// on.
type latencyTracker struct {
	mu sync.Mutex
	q  *latencyQuantiles
}

func newLatencyTracker() *latencyTracker {
	return &latencyTracker{q: newLatencyQuantiles()}
}

func (t *latencyTracker) record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.q.Observe(float64(d))
}

// Snapshot is a point-in-time copy of a latencyTracker's statistics.
type Snapshot struct {
	Count int64
	Mean  time.Duration
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
}

func (t *latencyTracker) snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	var mean time.Duration
	if count := t.q.Count(); count > 0 {
		mean = time.Duration(t.q.Sum() / float64(count))
	}
	return Snapshot{
		Count: t.q.Count(),
		Mean:  mean,
		P50:   time.Duration(t.q.P50()),
		P90:   time.Duration(t.q.P90()),
		P99:   time.Duration(t.q.P99()),
		Max:   time.Duration(t.q.Max()),
	}
}

// Recorder tracks scheduler latency and scaling counters for one
// Environment. All methods are safe for concurrent use; a nil *Recorder is
// valid and every method on it is a no-op, so it can be wired
// unconditionally into hot paths.
type Recorder struct {
	queueWait  *latencyTracker
	switchTime *latencyTracker

	spawned  atomic.Int64
	retired  atomic.Int64
	rejected atomic.Int64
}

// NewRecorder constructs a Recorder ready to accept observations.
func NewRecorder() *Recorder {
	return &Recorder{
		queueWait:  newLatencyTracker(),
		switchTime: newLatencyTracker(),
	}
}

// RecordQueueWait records how long a task sat on the run queue before a
// worker switched into it.
func (r *Recorder) RecordQueueWait(d time.Duration) {
	if r == nil {
		return
	}
	r.queueWait.record(d)
}

// RecordSwitch records how long a single switch into a task ran before it
// yielded, waited, or finished.
func (r *Recorder) RecordSwitch(d time.Duration) {
	if r == nil {
		return
	}
	r.switchTime.record(d)
}

// RecordSpawn increments the worker-spawn counter.
func (r *Recorder) RecordSpawn() {
	if r == nil {
		return
	}
	r.spawned.Add(1)
}

// RecordRetire increments the idle-worker-retired counter.
func (r *Recorder) RecordRetire() {
	if r == nil {
		return
	}
	r.retired.Add(1)
}

// RecordSpawnRejected increments the counter of scale-up attempts denied
// by the spawn rate limiter.
func (r *Recorder) RecordSpawnRejected() {
	if r == nil {
		return
	}
	r.rejected.Add(1)
}

// Stats is a full point-in-time snapshot of a Recorder.
type Stats struct {
	QueueWait      Snapshot
	Switch         Snapshot
	WorkersSpawned int64
	WorkersRetired int64
	SpawnsRejected int64
}

// Snapshot returns the current statistics. Safe to call on a nil Recorder,
// returning the zero Stats.
func (r *Recorder) Snapshot() Stats {
	if r == nil {
		return Stats{}
	}
	return Stats{
		QueueWait:      r.queueWait.snapshot(),
		Switch:         r.switchTime.snapshot(),
		WorkersSpawned: r.spawned.Load(),
		WorkersRetired: r.retired.Load(),
		SpawnsRejected: r.rejected.Load(),
	}
}
