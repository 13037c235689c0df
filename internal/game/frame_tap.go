package game

import (
	"sync"
	"time"
)

// frameTap records the cost of the last N ticks into a ring buffer so the
// overlay can show how close the field runs to the frame budget.
type frameTap struct {
	buffer    []time.Duration
	nextIndex int
	filled    int
	mu        sync.RWMutex
}

func newFrameTap(ringSize int) *frameTap {
	if ringSize < 1 {
		ringSize = 1
	}
	return &frameTap{
		buffer: make([]time.Duration, ringSize),
	}
}

// Record stores one tick duration, overwriting the oldest when full.
func (t *frameTap) Record(d time.Duration) {
	t.mu.Lock()
	t.buffer[t.nextIndex] = d
	t.nextIndex++
	if t.nextIndex >= len(t.buffer) {
		t.nextIndex = 0
	}
	if t.filled < len(t.buffer) {
		t.filled++
	}
	t.mu.Unlock()
}

// snapshot returns up to the last n samples, oldest first.
func (t *frameTap) snapshot(n int) []time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > t.filled {
		n = t.filled
	}
	out := make([]time.Duration, n)
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := range out {
		out[i] = t.buffer[idx]
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return out
}

// stats returns the mean and max over the recorded samples.
func (t *frameTap) stats() (mean, peak time.Duration) {
	samples := t.snapshot(len(t.buffer))
	if len(samples) == 0 {
		return 0, 0
	}
	var total time.Duration
	for _, d := range samples {
		total += d
		if d > peak {
			peak = d
		}
	}
	return total / time.Duration(len(samples)), peak
}
