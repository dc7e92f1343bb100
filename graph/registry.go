package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/notf-ui/notf/errutil"
	"github.com/notf-ui/notf/node"
)

// The methods below implement node.Registrar. None of them calls user
// code, so holding the registry mutex across them is safe.

// Register implements node.Registrar.
func (g *Graph) Register(n node.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, taken := g.byUUID[n.UUID()]; taken {
		return &errutil.NotUniqueError{UUID: n.UUID()}
	}
	g.byUUID[n.UUID()] = node.MakeHandle(n)
	return nil
}

// Unregister implements node.Registrar.
func (g *Graph) Unregister(n node.Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dropLocked(n.UUID())
}

// Rename implements node.Registrar: it releases the node's current name
// and assigns a unique variant of the requested one, suffixing _NN while
// the name is taken by another node.
func (g *Graph) Rename(n node.Node, requested string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := n.UUID()
	if old, ok := g.nameOf[id]; ok {
		delete(g.byName, old)
	}
	name := requested
	for {
		holder, taken := g.byName[name]
		if !taken || holder == id {
			break
		}
		g.counters[requested]++
		name = fmt.Sprintf("%s_%02d", requested, g.counters[requested])
	}
	g.byName[name] = id
	g.nameOf[id] = name
	return name
}

// MarkDirty implements node.Registrar.
func (g *Graph) MarkDirty(n node.Node) {
	g.dirtyMu.Lock()
	defer g.dirtyMu.Unlock()
	g.dirty[n.UUID()] = node.MakeHandle(n)
}

// Find looks a node up by UUID. The zero handle means not found.
func (g *Graph) Find(id uuid.UUID) node.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.byUUID[id]
}

// FindName looks a node up by name. A hit on an expired handle removes
// both registry entries and reports not found.
func (g *Graph) FindName(name string) node.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.byName[name]
	if !ok {
		return node.Handle{}
	}
	h := g.byUUID[id]
	if !h.Valid() {
		g.dropLocked(id)
		return node.Handle{}
	}
	return h
}

// NodeCount returns the number of registered nodes, the root included.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.byUUID)
}

// dropLocked removes a node from both maps. Callers hold the registry
// mutex.
func (g *Graph) dropLocked(id uuid.UUID) {
	if !g.mu.IsLockedByCurrent() {
		panic("graph: registry mutex not held")
	}
	if name, ok := g.nameOf[id]; ok {
		delete(g.byName, name)
		delete(g.nameOf, id)
	}
	delete(g.byUUID, id)
}
