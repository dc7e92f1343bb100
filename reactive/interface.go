package reactive

// Subscriber consumes a typed stream. All three callbacks receive the
// emitting publisher, so a subscriber connected to several publishers can
// tell its upstreams apart.
//
// An error returned from OnNext is routed into the emitting publisher's
// error path; it never propagates to the publish call site. The same goes
// for a panic inside OnNext.
type Subscriber[T any] interface {
	OnNext(src Publishes[T], value T) error
	OnError(src Publishes[T], err error)
	OnComplete(src Publishes[T])
}

// Publishes is the publishing half of a stream: anything a subscriber can
// be attached to. Publisher, Operator and Property all satisfy it.
type Publishes[T any] interface {
	// Subscribe installs the subscriber. It is idempotent: subscribing an
	// already-connected subscriber keeps the existing subscription. It
	// fails with errutil.ErrPublisherClosed once the publisher is terminal.
	Subscribe(sub Subscriber[T]) error

	// Unsubscribe removes the subscription if present, and is a no-op
	// otherwise.
	Unsubscribe(sub Subscriber[T])
}
