package timer

import (
	"math"
	"time"
)

// Infinite makes an interval timer repeat until stopped.
const Infinite uint64 = math.MaxUint64

// Callback runs on the pool thread, except for one-shot deadlines that are
// already due, which run inline on the caller.
type Callback func()

// IntervalFunc yields the delay until the next fire of a variable timer.
// It runs on the pool thread, after the callback.
type IntervalFunc func() time.Duration

type kind uint8

const (
	oneShot kind = iota
	interval
	variable
)

// Timer is a schedulable entry of one Pool. Timers are created through the
// pool constructors and stay usable after they fired; Start re-arms them
// with their original parameters.
type Timer struct {
	pool *Pool
	kind kind

	// immutable parameters
	at     time.Time
	every  time.Duration
	reps   uint64
	cb     Callback
	nextFn IntervalFunc

	// guarded by pool.mu
	next      time.Time
	left      uint64
	scheduled bool
	epoch     uint64
}

// IsActive reports whether the timer is currently waiting in the pool.
func (t *Timer) IsActive() bool {
	t.pool.mu.Lock()
	defer t.pool.mu.Unlock()
	return t.scheduled
}

// Stop removes the timer from the pool. Safe from any thread; stopping an
// idle timer is a no-op.
func (t *Timer) Stop() {
	t.pool.mu.Lock()
	t.epoch++
	t.pool.removeLocked(t)
	t.pool.mu.Unlock()
}

// Start re-arms the timer with its original parameters, restarting it when
// it is already scheduled. A one-shot whose timepoint has passed fires
// inline on the caller, like on construction.
func (t *Timer) Start() {
	var next time.Time
	now := time.Now()
	switch t.kind {
	case oneShot:
		next = t.at
	case interval:
		next = now.Add(t.every)
	case variable:
		// User code, kept outside the pool mutex.
		next = now.Add(t.nextFn())
	}

	t.pool.mu.Lock()
	t.epoch++
	t.pool.removeLocked(t)
	if t.kind == interval && t.reps == 0 {
		t.pool.mu.Unlock()
		return
	}
	t.left = t.reps
	if t.kind == oneShot && !next.After(now) {
		t.pool.mu.Unlock()
		t.pool.invoke(t.cb)
		return
	}
	t.next = next
	t.pool.insertLocked(t)
	t.pool.mu.Unlock()
	t.pool.signal()
}
