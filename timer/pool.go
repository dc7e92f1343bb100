// Package timer provides a single-worker timer pool. One goroutine owns a
// deadline-ordered list of timers and sleeps until the head is due; one-shot,
// fixed-interval and variable-interval timers share it. The pool keeps a
// reference to every scheduled timer, so a fire-and-forget one-shot fires
// even when the caller drops its handle.
package timer

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/notf-ui/notf/internal/ctxlog"
	"github.com/notf-ui/notf/internal/syncutil"
)

// Pool schedules timers on a single worker goroutine.
type Pool struct {
	logger *slog.Logger

	mu     sync.Mutex
	timers []*Timer // ordered by next deadline
	closed bool

	wake   chan struct{}
	quit   chan struct{}
	worker *syncutil.Thread
}

// NewPool starts the worker goroutine. Callers own the pool and must Close
// it before shutdown.
func NewPool(ctx context.Context) *Pool {
	p := &Pool{
		logger: ctxlog.FromContext(ctx),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
	p.worker = syncutil.Spawn("timer-pool", p.run)
	return p
}

// Close stops the worker and joins it. Scheduled timers are dropped
// without firing; scheduling on a closed pool is inert.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, t := range p.timers {
		t.scheduled = false
	}
	p.timers = nil
	p.mu.Unlock()

	close(p.quit)
	p.worker.Join()
}

// OneShot fires cb once at the given timepoint. A timepoint that is not in
// the future runs cb inline on the caller before returning.
func (p *Pool) OneShot(at time.Time, cb Callback) *Timer {
	t := &Timer{pool: p, kind: oneShot, at: at, cb: cb}
	t.Start()
	return t
}

// Interval fires cb every `every` on the pool thread, reps times in total.
// Pass Infinite to repeat until stopped; a zero interval with Infinite
// repetitions fires exactly once.
func (p *Pool) Interval(every time.Duration, reps uint64, cb Callback) *Timer {
	t := &Timer{pool: p, kind: interval, every: every, reps: reps, cb: cb}
	if reps > 0 {
		t.Start()
	}
	return t
}

// Variable fires cb on the pool thread at intervals yielded by next, until
// stopped. A zero interval still goes through the pool.
func (p *Pool) Variable(next IntervalFunc, cb Callback) *Timer {
	t := &Timer{pool: p, kind: variable, reps: Infinite, nextFn: next, cb: cb}
	t.Start()
	return t
}

// run is the worker loop: sleep until the head deadline, fire everything
// that is due, repeat.
func (p *Pool) run() {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		var wait <-chan time.Time
		var tm *time.Timer
		if len(p.timers) > 0 {
			d := time.Until(p.timers[0].next)
			if d <= 0 {
				due := p.popDueLocked(time.Now())
				p.mu.Unlock()
				for _, f := range due {
					p.fire(f)
				}
				continue
			}
			tm = time.NewTimer(d)
			wait = tm.C
		}
		p.mu.Unlock()

		select {
		case <-wait:
		case <-p.wake:
		case <-p.quit:
			if tm != nil {
				tm.Stop()
			}
			return
		}
		if tm != nil {
			tm.Stop()
		}
	}
}

type firing struct {
	t     *Timer
	epoch uint64
}

// popDueLocked removes every timer whose deadline has passed, keeping the
// epoch each was popped at so a concurrent Stop or Start wins over the
// reschedule.
func (p *Pool) popDueLocked(now time.Time) []firing {
	var due []firing
	for len(p.timers) > 0 && !p.timers[0].next.After(now) {
		t := p.timers[0]
		p.timers = p.timers[1:]
		t.scheduled = false
		due = append(due, firing{t: t, epoch: t.epoch})
	}
	return due
}

// fire runs one callback and reschedules repeating timers.
func (p *Pool) fire(f firing) {
	t := f.t
	p.invoke(t.cb)

	switch t.kind {
	case oneShot:
		return
	case interval:
		p.mu.Lock()
		if t.epoch != f.epoch || p.closed {
			p.mu.Unlock()
			return
		}
		if t.left != Infinite {
			t.left--
			if t.left == 0 {
				p.mu.Unlock()
				return
			}
		} else if t.every == 0 {
			// An immediate infinite interval fires once.
			p.mu.Unlock()
			return
		}
		t.next = time.Now().Add(t.every)
		p.insertLocked(t)
		p.mu.Unlock()
	case variable:
		d := t.nextFn()
		p.mu.Lock()
		if t.epoch != f.epoch || p.closed {
			p.mu.Unlock()
			return
		}
		t.next = time.Now().Add(d)
		p.insertLocked(t)
		p.mu.Unlock()
	}
	p.signal()
}

// invoke runs a callback behind a recover net. A panicking callback is
// logged and the timer continues its cycle.
func (p *Pool) invoke(cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("timer callback panicked", "panic", r)
		}
	}()
	cb()
}

func (p *Pool) insertLocked(t *Timer) {
	if p.closed {
		return
	}
	i := sort.Search(len(p.timers), func(i int) bool {
		return p.timers[i].next.After(t.next)
	})
	p.timers = append(p.timers, nil)
	copy(p.timers[i+1:], p.timers[i:])
	p.timers[i] = t
	t.scheduled = true
}

func (p *Pool) removeLocked(t *Timer) {
	if !t.scheduled {
		return
	}
	for i, other := range p.timers {
		if other == t {
			p.timers = append(p.timers[:i], p.timers[i+1:]...)
			break
		}
	}
	t.scheduled = false
}

// signal nudges the worker to re-evaluate its head deadline.
func (p *Pool) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
