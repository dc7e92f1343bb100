package node

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/notf-ui/notf/errutil"
	"github.com/notf-ui/notf/property"
)

// Node is the abstract tree element. All implementations embed Base.
type Node interface {
	// UUID is the node's immutable identity.
	UUID() uuid.UUID

	// Name returns the graph-unique, human-readable name.
	Name() string

	// SetName requests a new name and returns the name actually assigned,
	// which may carry a _NN suffix when the requested one is taken.
	SetName(name string) string

	Parent() Handle
	ChildCount() int
	Child(i int) (Handle, error)
	Children() []Handle

	// Property looks a property up by name.
	Property(name string) (property.Any, error)
	Properties() []property.Any

	// IsDirty reports whether any property has a pending modified copy.
	IsDirty() bool

	IsFinalized() bool

	// Finalize freezes the property schema. Callable exactly once.
	Finalize() error

	// ClearModifiedData promotes the modified copies of every property.
	// Called by graph synchronization; UI thread only.
	ClearModifiedData()

	base() *Base
}

// Registrar is the graph-side surface a node needs: identity registration,
// name disambiguation and dirty tracking. Implemented by graph.Graph.
type Registrar interface {
	Register(n Node) error
	Unregister(n Node)

	// Rename releases the node's current name and assigns a unique
	// variant of the requested one, returning it.
	Rename(n Node, requested string) string

	MarkDirty(n Node)
}

// Base carries the state shared by every node kind. Embed it by value and
// call Init with the outer value from the constructor.
type Base struct {
	id        uuid.UUID
	reg       Registrar
	self      Node
	finalized atomic.Bool
	expired   atomic.Bool

	mu        sync.RWMutex
	name      string
	props     []property.Any
	propIndex map[string]int
	children  []Node
	parent    Node
}

// Init wires the embedding node to its Base. Must run before the node is
// attached or given properties.
func (b *Base) Init(self Node) {
	b.self = self
	if b.propIndex == nil {
		b.propIndex = make(map[string]int)
	}
}

func (b *Base) base() *Base { return b }

func (b *Base) UUID() uuid.UUID {
	return b.id
}

func (b *Base) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

func (b *Base) SetName(name string) string {
	if b.reg != nil && b.self != nil {
		name = b.reg.Rename(b.self, name)
	}
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
	return name
}

func (b *Base) Parent() Handle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.parent == nil {
		return Handle{}
	}
	return MakeHandle(b.parent)
}

func (b *Base) ChildCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.children)
}

func (b *Base) Child(i int) (Handle, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.children) {
		return Handle{}, &errutil.ValueError{What: "child index", Value: i}
	}
	return MakeHandle(b.children[i]), nil
}

func (b *Base) Children() []Handle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handles := make([]Handle, len(b.children))
	for i, c := range b.children {
		handles[i] = MakeHandle(c)
	}
	return handles
}

// AddProperty installs a property on the node. The schema is open until
// Finalize; afterwards additions fail.
func (b *Base) AddProperty(p property.Any) error {
	if b.finalized.Load() {
		return fmt.Errorf("node %q is finalized, property schema is fixed", b.Name())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.propIndex[p.Name()]; taken {
		return &errutil.ValueError{What: "duplicate property name", Value: p.Name()}
	}
	if b.propIndex == nil {
		b.propIndex = make(map[string]int)
	}
	p.Bind(b.markDirty)
	b.propIndex[p.Name()] = len(b.props)
	b.props = append(b.props, p)
	return nil
}

func (b *Base) Property(name string) (property.Any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.propIndex[name]
	if !ok {
		return nil, &errutil.ValueError{What: "property name", Value: name}
	}
	return b.props[i], nil
}

func (b *Base) Properties() []property.Any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]property.Any(nil), b.props...)
}

func (b *Base) IsDirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, p := range b.props {
		if p.IsModified() {
			return true
		}
	}
	return false
}

func (b *Base) IsFinalized() bool {
	return b.finalized.Load()
}

func (b *Base) Finalize() error {
	if !b.finalized.CompareAndSwap(false, true) {
		return fmt.Errorf("node %q is already finalized", b.Name())
	}
	return nil
}

func (b *Base) ClearModifiedData() {
	for _, p := range b.Properties() {
		p.ClearModified()
	}
}

// markDirty is the hook handed to every property of this node.
func (b *Base) markDirty() {
	if b.reg != nil && b.self != nil {
		b.reg.MarkDirty(b.self)
	}
}

func (b *Base) isExpired() bool {
	return b.expired.Load()
}
