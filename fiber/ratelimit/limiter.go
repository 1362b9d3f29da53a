package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const noDeadline = math.MinInt64

// Limiter gates events per category against a set of sliding-window rates.
// An Environment uses one Limiter instance, shared across all scale-up
// decisions, with the spawn reason as the category.
type Limiter struct {
	running    int32
	rates      Rates
	retention  time.Duration
	categories sync.Map // category -> *bucket
	mu         sync.RWMutex
}

// bucket holds per-category state: a fast-path deadline plus the sliding
// window of recorded event timestamps.
type bucket struct {
	// cell[0] is the next permitted event time (UnixNano, or noDeadline),
	// cell[1] is the most recent Allow call's timestamp, used by cleanup.
	cell   [2]int64
	events *window
	mu     sync.Mutex
}

var bucketPool = sync.Pool{New: func() any {
	return &bucket{events: newWindow(8)}
}}

var (
	timeNow       = time.Now
	timeNewTicker = time.NewTicker
)

// NewLimiter constructs a Limiter enforcing every window in rates.
// Panics if rates is empty, contains a non-positive duration/count, or is
// not monotonic (a shorter window must permit fewer events than any
// longer window it nests inside).
func NewLimiter(rates Rates) *Limiter {
	retention, ok := rates.validate()
	if !ok {
		panic(fmt.Errorf("ratelimit: invalid rates: %v", rates))
	}
	return &Limiter{rates: rates, retention: retention}
}

func (l *Limiter) enabled() bool {
	return l != nil && len(l.rates) != 0
}

// Allow attempts to record an event for category at the current time. The
// bool reports whether the event was accepted. The returned time is the
// earliest point at which a further event may be accepted for category;
// it is the zero Time when another event may be recorded immediately.
func (l *Limiter) Allow(category any) (time.Time, bool) {
	if !l.enabled() {
		return time.Time{}, true
	}

	// Held for the duration of the call so cleanup (which takes the write
	// lock) never races a concurrent Allow.
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := timeNow()
	nowNano := now.UnixNano()

	if atomic.CompareAndSwapInt32(&l.running, 0, 1) {
		go l.cleanupLoop()
	}

	b, loaded := l.loadOrCreateBucket(category, nowNano)
	if !loaded {
		defer b.mu.Unlock()
	}

	if next := atomic.LoadInt64(&b.cell[0]); next != noDeadline && nowNano < next {
		return time.Unix(0, next), false
	}

	if loaded {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.cell[0] != noDeadline && nowNano < b.cell[0] {
			return time.Unix(0, b.cell[0]), false
		}
		if b.cell[1] < nowNano {
			atomic.StoreInt64(&b.cell[1], nowNano)
		}
	}

	b.events.Insert(b.events.Search(nowNano), nowNano)

	if wait := prune(now, l.rates, b.events); wait > 0 {
		next := now.Add(wait)
		atomic.StoreInt64(&b.cell[0], next.UnixNano())
		return next, true
	}

	atomic.StoreInt64(&b.cell[0], noDeadline)
	return time.Time{}, true
}

func (l *Limiter) loadOrCreateBucket(category any, nowNano int64) (b *bucket, loaded bool) {
	fresh := bucketPool.Get().(*bucket)
	fresh.cell = [2]int64{noDeadline, nowNano}
	fresh.mu.Lock()

	value, wasLoaded := l.categories.LoadOrStore(category, fresh)
	if wasLoaded {
		fresh.mu.Unlock()
		bucketPool.Put(fresh)
		return value.(*bucket), true
	}
	return fresh, false
}

type expiredCategory struct {
	key any
	b   *bucket
}

// cleanupLoop evicts categories that have been idle for the limiter's
// retention period, and retires itself once none remain.
func (l *Limiter) cleanupLoop() {
	var expired []expiredCategory

	interval := time.Duration(math.Max(float64(l.retention)*0.5, float64(time.Second)))
	ticker := timeNewTicker(interval)
	defer ticker.Stop()

	for {
		<-ticker.C

		threshold := timeNow().Add(-l.retention).UnixNano()
		mayStop := true
		l.categories.Range(func(key, value any) bool {
			b := value.(*bucket)
			if atomic.LoadInt64(&b.cell[1]) < threshold {
				expired = append(expired, expiredCategory{key, b})
			} else {
				mayStop = false
			}
			return true
		})

		if len(expired) != 0 {
			if l.evict(expired, mayStop) {
				return
			}
			expired = expired[:0]
		}
	}
}

// evict removes confirmed-idle categories under the write lock, and
// reports whether the cleanup goroutine should retire.
func (l *Limiter) evict(expired []expiredCategory, mayStop bool) (stop bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := timeNow().Add(-l.retention).UnixNano()

	for i, e := range expired {
		if e.b.cell[1] < threshold {
			l.categories.Delete(e.key)
			const maxPooledCap = 1 << 10
			if e.b.events.Cap() <= maxPooledCap {
				e.b.events.RemoveBefore(e.b.events.Len())
				bucketPool.Put(e.b)
			}
		} else {
			mayStop = false
		}
		expired[i] = expiredCategory{}
	}

	if mayStop {
		l.categories.Range(func(_, _ any) bool {
			mayStop = false
			return false
		})
		if mayStop {
			atomic.StoreInt32(&l.running, 0)
			return true
		}
	}

	return false
}
