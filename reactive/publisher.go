package reactive

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/notf-ui/notf/errutil"
)

type state int32

const (
	stateOpen state = iota
	stateCompleted
	stateErrored
)

// Publisher is the canonical Publishes implementation: an ordered list of
// subscribers behind a mutex, with single-delivery emission in subscription
// order and three terminal signals (next, error, complete).
//
// A subscriber added or removed during an emission does not take part in
// that emission; Publish snapshots the list first.
type Publisher[T any] struct {
	mu    sync.Mutex
	subs  []Subscriber[T]
	state state
}

func NewPublisher[T any]() *Publisher[T] {
	return &Publisher[T]{}
}

// Subscribe implements Publishes.
func (p *Publisher[T]) Subscribe(sub Subscriber[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateOpen {
		return errutil.ErrPublisherClosed
	}
	for _, s := range p.subs {
		if s == sub {
			return nil
		}
	}
	p.subs = append(p.subs, sub)
	return nil
}

// Unsubscribe implements Publishes.
func (p *Publisher[T]) Unsubscribe(sub Subscriber[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subs {
		if s == sub {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// Publish synchronously delivers value to every current subscriber, in
// subscription order. When a subscriber fails (error return or panic from
// OnNext), the failure is fed into the error path: remaining subscribers of
// this emission are not reached, the terminal error fans out instead, and
// Publish itself returns nil. Publishing on a terminal publisher returns
// errutil.ErrPublisherClosed.
func (p *Publisher[T]) Publish(value T) error {
	p.mu.Lock()
	if p.state != stateOpen {
		p.mu.Unlock()
		return errutil.ErrPublisherClosed
	}
	subs := make([]Subscriber[T], len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, sub := range subs {
		if err := p.deliver(sub, value); err != nil {
			p.Error(err)
			return nil
		}
	}
	return nil
}

// deliver invokes OnNext with a recover net so a panicking subscriber is
// turned into an error instead of unwinding through the caller.
func (p *Publisher[T]) deliver(sub Subscriber[T], value T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked during OnNext: %v", r)
		}
	}()
	return sub.OnNext(p, value)
}

// Error fans the terminal error out to all subscribers, then drops every
// subscription. Only the first terminal signal wins; later ones are no-ops.
// A subscriber panicking during OnError is logged and delivery continues.
func (p *Publisher[T]) Error(err error) {
	subs, ok := p.close(stateErrored)
	if !ok {
		return
	}
	for _, sub := range subs {
		p.deliverTerminal("OnError", func(s Subscriber[T]) { s.OnError(p, err) }, sub)
	}
}

// Complete fans the completion signal out to all subscribers, then drops
// every subscription. Only the first terminal signal wins.
func (p *Publisher[T]) Complete() {
	subs, ok := p.close(stateCompleted)
	if !ok {
		return
	}
	for _, sub := range subs {
		p.deliverTerminal("OnComplete", func(s Subscriber[T]) { s.OnComplete(p) }, sub)
	}
}

func (p *Publisher[T]) deliverTerminal(what string, call func(Subscriber[T]), sub Subscriber[T]) {
	defer func() {
		if r := recover(); r != nil {
			slog.Default().Warn("subscriber panicked during terminal signal",
				"signal", what, "panic", r)
		}
	}()
	call(sub)
}

func (p *Publisher[T]) close(terminal state) ([]Subscriber[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateOpen {
		return nil, false
	}
	p.state = terminal
	subs := p.subs
	p.subs = nil
	return subs, true
}

// IsClosed reports whether a terminal signal has been issued.
func (p *Publisher[T]) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != stateOpen
}

// IsCompleted reports whether the publisher terminated via Complete.
func (p *Publisher[T]) IsCompleted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateCompleted
}

// SubscriberCount returns the number of current subscriptions.
func (p *Publisher[T]) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
