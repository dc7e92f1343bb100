package reactive

import (
	"fmt"
	"sync/atomic"
)

// FanInPolicy controls how many upstream publishers may feed an operator.
// Compose functions enforce it when the operator is wired into a pipeline.
type FanInPolicy int

const (
	// SinglePublisher rejects a second upstream connection.
	SinglePublisher FanInPolicy = iota
	// MultiPublisher merges emissions from any number of upstreams.
	MultiPublisher
)

// Operator is a subscriber of In and a publisher of Out at once. Incoming
// values run through the transform; produced values are published
// downstream. Terminal signals are forwarded.
type Operator[In, Out any] struct {
	Publisher[Out]

	// transform maps an incoming value to an outgoing one. ok=false drops
	// the value silently; a non-nil error is reported to the upstream
	// publisher, which routes it into its error path.
	transform func(In) (out Out, ok bool, err error)

	policy    FanInPolicy
	upstreams atomic.Int32
}

// NewOperator creates an operator with the full transform signature.
func NewOperator[In, Out any](policy FanInPolicy, transform func(In) (Out, bool, error)) *Operator[In, Out] {
	return &Operator[In, Out]{transform: transform, policy: policy}
}

// Map creates a single-upstream operator applying f to every value.
func Map[In, Out any](f func(In) Out) *Operator[In, Out] {
	return NewOperator(SinglePublisher, func(v In) (Out, bool, error) {
		return f(v), true, nil
	})
}

// Filter creates a single-upstream operator passing through values for
// which pred returns true.
func Filter[T any](pred func(T) bool) *Operator[T, T] {
	return NewOperator(SinglePublisher, func(v T) (T, bool, error) {
		return v, pred(v), nil
	})
}

// OnNext implements Subscriber.
func (o *Operator[In, Out]) OnNext(_ Publishes[In], value In) error {
	out, ok, err := o.transform(value)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	// Publishing on an already-terminal operator is not an upstream error.
	_ = o.Publish(out)
	return nil
}

// OnError implements Subscriber: the upstream error propagates downstream.
func (o *Operator[In, Out]) OnError(_ Publishes[In], err error) {
	o.Error(err)
}

// OnComplete implements Subscriber: completion propagates downstream.
func (o *Operator[In, Out]) OnComplete(_ Publishes[In]) {
	o.Complete()
}

// attachUpstream records one more upstream connection, enforcing the
// fan-in policy. Called by the compose functions.
func (o *Operator[In, Out]) attachUpstream() error {
	if o.policy == SinglePublisher {
		if !o.upstreams.CompareAndSwap(0, 1) {
			return fmt.Errorf("reactive: operator with single-publisher policy already has an upstream")
		}
		return nil
	}
	o.upstreams.Add(1)
	return nil
}

func (o *Operator[In, Out]) detachUpstream() {
	o.upstreams.Add(-1)
}
