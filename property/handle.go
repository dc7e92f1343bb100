package property

import (
	"github.com/google/uuid"

	"github.com/notf-ui/notf/errutil"
	"github.com/notf-ui/notf/reactive"
)

// Handle is a weak reference to a property owned by a node. Once the node
// leaves the graph the handle expires and every operation fails with
// errutil.HandleExpiredError.
type Handle[T comparable] struct {
	p       *Property[T]
	owner   uuid.UUID
	expired func() bool
}

// MakeHandle builds a handle; expired reports whether the owning node has
// left the graph. Called by the node layer.
func MakeHandle[T comparable](p *Property[T], owner uuid.UUID, expired func() bool) Handle[T] {
	return Handle[T]{p: p, owner: owner, expired: expired}
}

// Valid reports whether the handle can still be dereferenced.
func (h Handle[T]) Valid() bool {
	return h.p != nil && h.expired != nil && !h.expired()
}

func (h Handle[T]) check() error {
	if !h.Valid() {
		return &errutil.HandleExpiredError{UUID: h.owner}
	}
	return nil
}

// Get returns the UI view of the property.
func (h Handle[T]) Get() (T, error) {
	if err := h.check(); err != nil {
		var zero T
		return zero, err
	}
	return h.p.Get(), nil
}

// Set updates the property.
func (h Handle[T]) Set(value T) error {
	if err := h.check(); err != nil {
		return err
	}
	h.p.Set(value)
	return nil
}

// Source exposes the property's downstream for pipeline composition.
func (h Handle[T]) Source() (reactive.Publishes[T], error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	return h.p, nil
}

// Sink exposes the property as a pipeline subscriber.
func (h Handle[T]) Sink() (reactive.Subscriber[T], error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	return h.p, nil
}
