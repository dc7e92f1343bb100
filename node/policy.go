package node

import (
	"fmt"
	"reflect"

	"github.com/notf-ui/notf/errutil"
)

// A node type constrains which edges it takes part in by implementing any
// of the four optional interfaces below. Allowed lists win over forbidden
// lists: a node declaring AllowedChildTypes has its ForbiddenChildTypes
// ignored. A listed interface type matches every implementation.

type AllowsChildren interface {
	AllowedChildTypes() []reflect.Type
}

type ForbidsChildren interface {
	ForbiddenChildTypes() []reflect.Type
}

type AllowsParents interface {
	AllowedParentTypes() []reflect.Type
}

type ForbidsParents interface {
	ForbiddenParentTypes() []reflect.Type
}

// TypeOf names a node type for use in a policy list.
func TypeOf[N Node]() reflect.Type {
	return reflect.TypeFor[N]()
}

// checkEdge validates the candidate edge parent->child against the policy
// of both ends.
func checkEdge(parent, child Node) error {
	ct := reflect.TypeOf(child)
	pt := reflect.TypeOf(parent)

	if ac, ok := parent.(AllowsChildren); ok {
		if !matchesAny(ct, ac.AllowedChildTypes()) {
			return invalidEdge(parent, child, fmt.Sprintf("%s is not an allowed child of %s", ct, pt))
		}
	} else if fc, ok := parent.(ForbidsChildren); ok {
		if matchesAny(ct, fc.ForbiddenChildTypes()) {
			return invalidEdge(parent, child, fmt.Sprintf("%s is a forbidden child of %s", ct, pt))
		}
	}

	if ap, ok := child.(AllowsParents); ok {
		if !matchesAny(pt, ap.AllowedParentTypes()) {
			return invalidEdge(parent, child, fmt.Sprintf("%s is not an allowed parent of %s", pt, ct))
		}
	} else if fp, ok := child.(ForbidsParents); ok {
		if matchesAny(pt, fp.ForbiddenParentTypes()) {
			return invalidEdge(parent, child, fmt.Sprintf("%s is a forbidden parent of %s", pt, ct))
		}
	}
	return nil
}

func matchesAny(t reflect.Type, list []reflect.Type) bool {
	for _, want := range list {
		if t == want {
			return true
		}
		if want.Kind() == reflect.Interface && t.Implements(want) {
			return true
		}
	}
	return false
}

func invalidEdge(parent, child Node, reason string) error {
	return &errutil.InvalidParentError{
		Parent: fmt.Sprintf("%T(%s)", parent, parent.Name()),
		Child:  fmt.Sprintf("%T(%s)", child, child.Name()),
		Reason: reason,
	}
}
