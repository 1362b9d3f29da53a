package telemetry

// latencyQuantiles tracks P50/P90/P99 estimates, plus count/sum/max, for
// one observed series, using the P² algorithm (Jain & Chlamtac, 1985):
// O(1) per-observation updates and O(1) retrieval, without storing
// observation history.
//
// All three percentiles see the same input in lockstep, so the
// bookkeeping a naive per-percentile estimator would each keep on its
// own — the observation count, and the first five raw samples used to
// seed the markers before the algorithm has enough data to run — is
// kept once here instead of three times, and folded into the same
// Observe call that adjusts the markers.
//
// Not safe for concurrent use; callers must serialize access (Recorder
// does this with a mutex).
type latencyQuantiles struct {
	marks [3]marker // p50, p90, p99, in that order

	count int64
	sum   float64
	max   float64
	init  [5]float64
}

// marker is one P² estimator's marker state: q holds the five tracked
// heights, n their actual positions, np their desired (floating-point)
// positions, and dn the per-observation increment to np.
type marker struct {
	p  float64
	q  [5]float64
	n  [5]int
	np [5]float64
	dn [5]float64
}

func newMarker(p float64) marker {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return marker{p: p, dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1}}
}

func newLatencyQuantiles() *latencyQuantiles {
	return &latencyQuantiles{
		marks: [3]marker{newMarker(0.50), newMarker(0.90), newMarker(0.99)},
	}
}

// Observe folds x into the shared count/sum/max and every tracked
// percentile's markers.
func (l *latencyQuantiles) Observe(x float64) {
	l.count++
	l.sum += x
	if l.count == 1 || x > l.max {
		l.max = x
	}

	if l.count <= 5 {
		l.init[l.count-1] = x
		if l.count == 5 {
			sorted := l.init
			insertionSort(sorted[:])
			for i := range l.marks {
				l.marks[i].seed(sorted)
			}
		}
		return
	}

	for i := range l.marks {
		l.marks[i].adjust(x)
	}
}

// Count returns the number of observations folded in so far.
func (l *latencyQuantiles) Count() int64 { return l.count }

// Sum returns the running total of every observed value.
func (l *latencyQuantiles) Sum() float64 { return l.sum }

// Max returns the largest observed value, or 0 before the first Observe.
func (l *latencyQuantiles) Max() float64 {
	if l.count == 0 {
		return 0
	}
	return l.max
}

// P50 returns the current median estimate.
func (l *latencyQuantiles) P50() float64 { return l.percentile(0) }

// P90 returns the current 90th-percentile estimate.
func (l *latencyQuantiles) P90() float64 { return l.percentile(1) }

// P99 returns the current 99th-percentile estimate.
func (l *latencyQuantiles) P99() float64 { return l.percentile(2) }

func (l *latencyQuantiles) percentile(i int) float64 {
	if l.count == 0 {
		return 0
	}
	if l.count < 5 {
		sorted := l.init
		insertionSort(sorted[:l.count])
		idx := int(float64(l.count-1) * l.marks[i].p)
		if idx >= int(l.count) {
			idx = int(l.count) - 1
		}
		return sorted[idx]
	}
	return l.marks[i].value()
}

// seed initializes a marker's heights and positions from the five
// already-sorted samples collected before the algorithm had enough data
// to adjust markers incrementally.
func (m *marker) seed(sorted [5]float64) {
	m.q = sorted
	for i := range m.n {
		m.n[i] = i
	}
	m.np = [5]float64{0, 2 * m.p, 4 * m.p, 2 + 2*m.p, 4}
}

// adjust folds one further observation into the marker heights and
// positions.
func (m *marker) adjust(x float64) {
	var k int
	switch {
	case x < m.q[0]:
		m.q[0] = x
		k = 0
	case x >= m.q[4]:
		m.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if m.q[k] <= x && x < m.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		m.n[i]++
	}
	for i := 0; i < 5; i++ {
		m.np[i] += m.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := m.np[i] - float64(m.n[i])
		if (d >= 1 && m.n[i+1]-m.n[i] > 1) || (d <= -1 && m.n[i-1]-m.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			adjusted := m.parabolic(i, sign)
			if m.q[i-1] < adjusted && adjusted < m.q[i+1] {
				m.q[i] = adjusted
			} else {
				m.q[i] = m.linear(i, sign)
			}
			m.n[i] += sign
		}
	}
}

func (m *marker) parabolic(i, d int) float64 {
	df := float64(d)
	ni, niPrev, niNext := float64(m.n[i]), float64(m.n[i-1]), float64(m.n[i+1])
	t1 := df / (niNext - niPrev)
	t2 := (ni - niPrev + df) * (m.q[i+1] - m.q[i]) / (niNext - ni)
	t3 := (niNext - ni - df) * (m.q[i] - m.q[i-1]) / (ni - niPrev)
	return m.q[i] + t1*(t2+t3)
}

func (m *marker) linear(i, d int) float64 {
	if d == 1 {
		return m.q[i] + (m.q[i+1]-m.q[i])/float64(m.n[i+1]-m.n[i])
	}
	return m.q[i] - (m.q[i]-m.q[i-1])/float64(m.n[i]-m.n[i-1])
}

func (m *marker) value() float64 { return m.q[2] }

// insertionSort sorts s in place. s is always length <= 5 here, so the
// quadratic behavior is irrelevant.
func insertionSort(s []float64) {
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && s[j] > key {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
}
