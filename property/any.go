package property

import (
	"fmt"

	"github.com/notf-ui/notf/errutil"
)

// Any is the type-erased view of a property, as stored on a node.
type Any interface {
	Name() string
	Visibility() Visibility
	HashValue() uint64
	IsModified() bool
	ClearModified()

	// Bind installs the owning node's dirty hook.
	Bind(dirty func())
}

// As recovers the typed cell behind a type-erased property.
func As[T comparable](a Any) (*Property[T], error) {
	p, ok := a.(*Property[T])
	if !ok {
		var zero T
		return nil, &errutil.NarrowCastError{
			From:  fmt.Sprintf("%T", a),
			To:    fmt.Sprintf("*property.Property[%T]", zero),
			Value: a.Name(),
		}
	}
	return p, nil
}
