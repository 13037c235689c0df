package field

import "sync"

// FrameQueue is a FrameScheduler stepped by its host: each RunFrame call is
// one repaint. Callbacks requested while a frame runs wait for the next one.
type FrameQueue struct {
	mu      sync.Mutex
	lastID  FrameID
	order   []FrameID
	pending map[FrameID]func()
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: make(map[FrameID]func())}
}

func (q *FrameQueue) RequestFrame(fn func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastID++
	q.pending[q.lastID] = fn
	q.order = append(q.order, q.lastID)
	return q.lastID
}

// CancelFrame drops a pending callback. Unknown or already run ids are ignored.
func (q *FrameQueue) CancelFrame(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
}

// RunFrame runs the callbacks pending at call time, in request order, and
// returns how many ran.
func (q *FrameQueue) RunFrame() int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, id := range batch {
		q.mu.Lock()
		fn, ok := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()
		if !ok {
			continue
		}
		fn()
		ran++
	}
	return ran
}

// Len returns the number of pending callbacks.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
