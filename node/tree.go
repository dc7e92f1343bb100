package node

import (
	"fmt"

	"github.com/google/uuid"
)

// Attach makes child the last child of parent (render order is insertion
// order), assigns its identity and registers its subtree with the graph.
// The parent must not be finalized, the child must not already hang in a
// tree, and the edge must satisfy the parenting policy of both ends.
func Attach(parent, child Node) (Handle, error) {
	pb := parent.base()
	cb := child.base()

	if pb.isExpired() {
		return Handle{}, fmt.Errorf("attach: parent %q has left the graph", parent.Name())
	}
	if pb.finalized.Load() {
		return Handle{}, fmt.Errorf("attach: parent %q is finalized", parent.Name())
	}
	if cb.isExpired() {
		return Handle{}, fmt.Errorf("attach: node %q has left the graph", child.Name())
	}
	if cb.finalized.Load() {
		return Handle{}, fmt.Errorf("attach: node %q is finalized", child.Name())
	}
	if cb.parent != nil {
		return Handle{}, fmt.Errorf("attach: node %q already has a parent", child.Name())
	}
	if err := checkEdge(parent, child); err != nil {
		return Handle{}, err
	}

	cb.self = child
	if cb.propIndex == nil {
		cb.propIndex = make(map[string]int)
	}
	if cb.id == uuid.Nil {
		cb.id = uuid.New()
	}
	if cb.name == "" {
		cb.name = Mnemonic(cb.id)
	}
	cb.parent = parent

	if pb.reg != nil {
		if err := registerSubtree(child, pb.reg); err != nil {
			unwindRegistration(child)
			cb.parent = nil
			return Handle{}, err
		}
	}

	pb.mu.Lock()
	pb.children = append(pb.children, child)
	pb.mu.Unlock()
	return MakeHandle(child), nil
}

// registerSubtree registers child and every descendant that was built
// before the attach.
func registerSubtree(n Node, reg Registrar) error {
	b := n.base()
	b.reg = reg
	if err := reg.Register(n); err != nil {
		return err
	}
	b.mu.Lock()
	requested := b.name
	kids := append([]Node(nil), b.children...)
	b.mu.Unlock()
	name := reg.Rename(n, requested)
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
	for _, c := range kids {
		if err := registerSubtree(c, reg); err != nil {
			return err
		}
	}
	return nil
}

// unwindRegistration undoes a partial registerSubtree after a failure,
// leaving the subtree detached and unregistered but otherwise intact, so
// a later attach can retry it.
func unwindRegistration(n Node) {
	b := n.base()
	if b.reg != nil {
		b.reg.Unregister(n)
		b.reg = nil
	}
	b.mu.Lock()
	kids := append([]Node(nil), b.children...)
	b.mu.Unlock()
	for _, c := range kids {
		unwindRegistration(c)
	}
}

// RemoveChild detaches the child behind h from the node and expires its
// whole subtree. UI thread only.
func (b *Base) RemoveChild(h Handle) error {
	b.mu.Lock()
	idx := -1
	for i, c := range b.children {
		if c.UUID() == h.UUID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return fmt.Errorf("remove: node %s is not a child of %q", h.UUID(), b.name)
	}
	child := b.children[idx]
	b.children = append(b.children[:idx], b.children[idx+1:]...)
	b.mu.Unlock()

	detachSubtree(child)
	return nil
}

// ClearChildren detaches and expires every child subtree. UI thread only.
func (b *Base) ClearChildren() {
	b.mu.Lock()
	kids := b.children
	b.children = nil
	b.mu.Unlock()

	for _, c := range kids {
		detachSubtree(c)
	}
}

// Discard expires a parentless node together with its subtree. The graph
// uses it when replacing the root.
func Discard(n Node) error {
	b := n.base()
	b.mu.RLock()
	parented := b.parent != nil
	b.mu.RUnlock()
	if parented {
		return fmt.Errorf("discard: node %q still has a parent", n.Name())
	}
	detachSubtree(n)
	return nil
}

func detachSubtree(n Node) {
	b := n.base()
	b.mu.Lock()
	kids := b.children
	b.children = nil
	b.parent = nil
	b.mu.Unlock()

	b.expired.Store(true)
	if b.reg != nil {
		b.reg.Unregister(n)
	}
	for _, c := range kids {
		detachSubtree(c)
	}
}
