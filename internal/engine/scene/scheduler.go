package scene

import (
	"container/heap"
	"time"
)

// Timer is a pending scheduled callback.
type Timer struct {
	due   time.Duration
	seq   uint64
	fn    func()
	index int
	s     *Scheduler
}

// Pending reports whether the timer has neither fired nor been stopped.
// A nil timer is never pending.
func (t *Timer) Pending() bool {
	return t != nil && t.index >= 0
}

// Stop cancels the timer. It returns false if it already fired or was stopped.
func (t *Timer) Stop() bool {
	if !t.Pending() {
		return false
	}
	heap.Remove(&t.s.queue, t.index)
	return true
}

// Scheduler is the simulation clock. Time only moves through Advance.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue timerQueue
}

// NewScheduler creates a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current simulation time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{due: s.now + d, seq: s.seq, fn: fn, s: s}
	heap.Push(&s.queue, t)
	return t
}

// Advance moves the clock forward by dt and runs every callback that falls due,
// ordered by due time then by scheduling order. Callbacks scheduled while
// advancing run in the same call if they fall due.
func (s *Scheduler) Advance(dt time.Duration) {
	target := s.now + dt
	for len(s.queue) > 0 && s.queue[0].due <= target {
		t := heap.Pop(&s.queue).(*Timer)
		if t.due > s.now {
			s.now = t.due
		}
		t.fn()
	}
	s.now = target
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Reset drops every pending timer and rewinds the clock.
func (s *Scheduler) Reset() {
	for _, t := range s.queue {
		t.index = -1
	}
	s.queue = nil
	s.now = 0
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
