package input

import "sync"

// Queue buffers events between the producing thread and the UI thread.
// Any thread may Post; the UI thread drains in posting order.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// Post appends an event. Safe from any thread.
func (q *Queue) Post(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain removes and returns every pending event in posting order. The
// returned slice is owned by the caller; an empty queue drains to nil.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	events := q.events
	q.events = nil
	q.mu.Unlock()
	return events
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
