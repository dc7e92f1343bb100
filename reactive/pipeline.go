package reactive

import (
	"errors"
	"sync"
	"sync/atomic"
)

var errPipelineDisconnected = errors.New("reactive: pipeline is disconnected")

// chain is the shared state behind every stage of one pipeline: the detach
// closures in attach order, and the one-shot disconnect latch.
type chain struct {
	mu           sync.Mutex
	links        []func()
	once         sync.Once
	disconnected atomic.Bool
}

// addLink records a detach closure. It reports false when the chain was
// disconnected concurrently, in which case the link was not recorded and
// the caller must undo its subscription itself.
func (c *chain) addLink(detach func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnected.Load() {
		return false
	}
	c.links = append(c.links, detach)
	return true
}

// Pipeline is a scoped handle over a chain publisher | op... | subscriber.
// The type parameter names the element type at the chain's open end. The
// pipeline owns its subscriptions: Disconnect detaches every link in
// reverse order, exactly once. Pipelines are one-shot; a disconnected
// pipeline cannot be reconnected.
type Pipeline[T any] struct {
	tail Publishes[T]
	c    *chain
}

// From starts a pipeline at a publisher (or anything that publishes T,
// such as an operator or a property).
func From[T any](pub Publishes[T]) *Pipeline[T] {
	return &Pipeline[T]{tail: pub, c: &chain{}}
}

// Via extends the pipeline through an operator and returns the extended
// pipeline, now ending in the operator's output type. Extension is a
// package function because Go methods cannot introduce type parameters.
func Via[In, Out any](pl *Pipeline[In], op *Operator[In, Out]) (*Pipeline[Out], error) {
	if pl.c.disconnected.Load() {
		return nil, errPipelineDisconnected
	}
	if err := op.attachUpstream(); err != nil {
		return nil, err
	}
	if err := pl.tail.Subscribe(op); err != nil {
		op.detachUpstream()
		return nil, err
	}
	up := pl.tail
	ok := pl.c.addLink(func() {
		up.Unsubscribe(op)
		op.detachUpstream()
	})
	if !ok {
		up.Unsubscribe(op)
		op.detachUpstream()
		return nil, errPipelineDisconnected
	}
	return &Pipeline[Out]{tail: op, c: pl.c}, nil
}

// To terminates the pipeline at a subscriber and returns the pipeline for
// scoping.
func (pl *Pipeline[T]) To(sub Subscriber[T]) (*Pipeline[T], error) {
	if pl.c.disconnected.Load() {
		return nil, errPipelineDisconnected
	}
	if err := pl.tail.Subscribe(sub); err != nil {
		return nil, err
	}
	up := pl.tail
	if !pl.c.addLink(func() { up.Unsubscribe(sub) }) {
		up.Unsubscribe(sub)
		return nil, errPipelineDisconnected
	}
	return pl, nil
}

// Connect wires a publisher directly to a subscriber.
func Connect[T any](pub Publishes[T], sub Subscriber[T]) (*Pipeline[T], error) {
	return From(pub).To(sub)
}

// Disconnect detaches every link of the chain in reverse order. It runs at
// most once; concurrent and repeated calls are safe. An emission already in
// flight completes delivery to the subscribers it has reached. The latch is
// raised before the links run, so a Via or To racing the disconnect either
// misses the drained list and undoes itself, or is detached here.
func (pl *Pipeline[T]) Disconnect() {
	pl.c.once.Do(func() {
		pl.c.mu.Lock()
		pl.c.disconnected.Store(true)
		links := pl.c.links
		pl.c.links = nil
		pl.c.mu.Unlock()
		for i := len(links) - 1; i >= 0; i-- {
			links[i]()
		}
	})
}

// IsDisconnected reports whether the pipeline has been torn down. It may
// flip from false to true due to another goroutine, but never back.
func (pl *Pipeline[T]) IsDisconnected() bool {
	return pl.c.disconnected.Load()
}
