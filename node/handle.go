package node

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/notf-ui/notf/errutil"
	"github.com/notf-ui/notf/property"
)

// Handle is a weak, UUID-addressed reference to a node. Handles never own
// their target; once the node leaves the graph the handle expires and
// dereferencing fails with errutil.HandleExpiredError.
type Handle struct {
	id uuid.UUID
	n  Node
}

func MakeHandle(n Node) Handle {
	return Handle{id: n.UUID(), n: n}
}

func (h Handle) UUID() uuid.UUID {
	return h.id
}

// Valid reports whether the handle can currently be dereferenced. A true
// result is advisory: the UI thread may expire the node at any time.
func (h Handle) Valid() bool {
	return h.n != nil && !h.n.base().isExpired()
}

// Get dereferences the handle.
func (h Handle) Get() (Node, error) {
	if !h.Valid() {
		return nil, &errutil.HandleExpiredError{UUID: h.id}
	}
	return h.n, nil
}

// Name is a convenience for Get().Name().
func (h Handle) Name() (string, error) {
	n, err := h.Get()
	if err != nil {
		return "", err
	}
	return n.Name(), nil
}

// TypedHandle is a Handle that remembers the concrete node type.
type TypedHandle[N Node] struct {
	Handle
}

// Typed narrows a handle to a concrete node type.
func Typed[N Node](h Handle) (TypedHandle[N], error) {
	if h.n == nil {
		return TypedHandle[N]{}, &errutil.HandleExpiredError{UUID: h.id}
	}
	if _, ok := h.n.(N); !ok {
		var want N
		return TypedHandle[N]{}, &errutil.NarrowCastError{
			From:  fmt.Sprintf("%T", h.n),
			To:    fmt.Sprintf("%T", want),
			Value: h.id,
		}
	}
	return TypedHandle[N]{Handle: h}, nil
}

// Get dereferences the handle at its concrete type.
func (h TypedHandle[N]) Get() (N, error) {
	n, err := h.Handle.Get()
	if err != nil {
		var zero N
		return zero, err
	}
	return n.(N), nil
}

// PropertyHandleOf builds a weak typed handle to one of the node's
// properties. The handle expires together with the node.
func PropertyHandleOf[T comparable](n Node, name string) (property.Handle[T], error) {
	a, err := n.Property(name)
	if err != nil {
		return property.Handle[T]{}, err
	}
	p, err := property.As[T](a)
	if err != nil {
		return property.Handle[T]{}, err
	}
	b := n.base()
	return property.MakeHandle(p, b.id, b.isExpired), nil
}
