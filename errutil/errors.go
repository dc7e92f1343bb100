// Package errutil defines the error taxonomy shared across the toolkit:
// handle expiry, registry collisions, parenting violations, freeze
// contention and the small value/cast utilities. Everything here is
// matchable with errors.Is / errors.As.
package errutil

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrPublisherClosed is returned when publishing to, or subscribing on, a
// publisher that has already errored or completed.
var ErrPublisherClosed = errors.New("notf: publisher is closed")

// HandleExpiredError is returned when dereferencing a handle whose target
// node (or property) has been removed from the graph.
type HandleExpiredError struct {
	UUID uuid.UUID
}

func (e *HandleExpiredError) Error() string {
	return fmt.Sprintf("notf: handle to node %s has expired", e.UUID)
}

// NotUniqueError is returned when registering a node whose UUID is already
// present in the registry.
type NotUniqueError struct {
	UUID uuid.UUID
}

func (e *NotUniqueError) Error() string {
	return fmt.Sprintf("notf: node %s is already registered", e.UUID)
}

// InvalidParentError is returned when an attach would violate the parenting
// policy declared by either end of the edge.
type InvalidParentError struct {
	Parent string
	Child  string
	Reason string
}

func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("notf: cannot attach %s under %s: %s", e.Child, e.Parent, e.Reason)
}

// AlreadyFrozenError is returned when a freeze is requested while another
// one is held, and when an operation that requires an unfrozen graph
// (synchronize, re-initialization) runs during a freeze window.
type AlreadyFrozenError struct {
	Held      uint64
	Requested uint64
}

func (e *AlreadyFrozenError) Error() string {
	if e.Requested == 0 {
		return fmt.Sprintf("notf: graph is frozen by %d", e.Held)
	}
	return fmt.Sprintf("notf: graph is frozen by %d, requested by %d", e.Held, e.Requested)
}

// NarrowCastError is returned when a conversion would lose information.
type NarrowCastError struct {
	From  string
	To    string
	Value any
}

func (e *NarrowCastError) Error() string {
	return fmt.Sprintf("notf: cannot narrow %s value %v to %s", e.From, e.Value, e.To)
}

// ValueError is returned for values that are out of range or otherwise
// unusable for the requested operation.
type ValueError struct {
	What  string
	Value any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("notf: invalid %s: %v", e.What, e.Value)
}
