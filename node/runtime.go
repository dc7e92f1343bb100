package node

import "github.com/google/uuid"

// RunTime is a node whose property schema is assembled at run time, one
// AddProperty call at a time, until Finalize fixes it. Typed node kinds
// instead declare their properties in their own constructors; both are
// interchangeable through the Node interface.
type RunTime struct {
	Base
}

// NewRunTime builds a detached run-time node. An empty name is replaced by
// a mnemonic derived from the UUID when the node is attached.
func NewRunTime(name string) *RunTime {
	n := &RunTime{}
	n.Init(n)
	n.name = name
	return n
}

// Root is the distinguished parentless node at the top of the graph. It is
// created by the graph itself during initialization.
type Root struct {
	Base
}

// NewRoot builds and registers the root. Called by the graph.
func NewRoot(reg Registrar) (*Root, error) {
	r := &Root{}
	r.Init(r)
	r.id = uuid.New()
	r.reg = reg
	if err := reg.Register(r); err != nil {
		return nil, err
	}
	r.name = reg.Rename(r, "root")
	return r, nil
}
