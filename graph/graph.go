package graph

import (
	"context"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/google/uuid"

	"github.com/notf-ui/notf/errutil"
	"github.com/notf-ui/notf/internal/ctxlog"
	"github.com/notf-ui/notf/internal/syncutil"
	"github.com/notf-ui/notf/node"
)

// Graph is the shared state of one scene graph. Create it with New (or the
// process-wide Initialize) on the goroutine that will act as the UI
// thread.
type Graph struct {
	logger *slog.Logger

	// registry maps, all guarded by mu.
	mu       syncutil.Mutex
	byUUID   map[uuid.UUID]node.Handle
	byName   map[string]uuid.UUID
	nameOf   map[uuid.UUID]string
	counters map[string]int

	dirtyMu sync.Mutex
	dirty   map[uuid.UUID]node.Handle

	// freezer holds the render thread's token during a freeze window,
	// 0 otherwise.
	freezer  atomic.Uint64
	uiThread uint64

	root node.Handle
}

// New builds a graph with a fresh, registered root. The calling goroutine
// becomes the UI thread: all tree and property mutations, Synchronize and
// Reinitialize must happen on it.
func New(ctx context.Context) (*Graph, error) {
	g := &Graph{
		logger:   ctxlog.FromContext(ctx),
		byUUID:   make(map[uuid.UUID]node.Handle),
		byName:   make(map[string]uuid.UUID),
		nameOf:   make(map[uuid.UUID]string),
		counters: make(map[string]int),
		dirty:    make(map[uuid.UUID]node.Handle),
		uiThread: syncutil.GoroutineID(),
	}
	root, err := node.NewRoot(g)
	if err != nil {
		return nil, err
	}
	g.root = node.MakeHandle(root)
	return g, nil
}

// Root returns a handle to the current root node.
func (g *Graph) Root() node.Handle {
	return g.root
}

// UIThread returns the id of the goroutine that owns all mutations.
func (g *Graph) UIThread() uint64 {
	return g.uiThread
}

// Freeze starts a freeze window on behalf of the render thread identified
// by id. While frozen, base values are stable and Synchronize is refused.
func (g *Graph) Freeze(id uint64) error {
	if id == 0 {
		return &errutil.ValueError{What: "freezer id", Value: id}
	}
	if !g.freezer.CompareAndSwap(0, id) {
		return &errutil.AlreadyFrozenError{Held: g.freezer.Load(), Requested: id}
	}
	g.logger.Debug("graph frozen", "freezer", id)
	return nil
}

// Unfreeze ends the freeze window. Only the freezing thread may call it.
func (g *Graph) Unfreeze(id uint64) error {
	if !g.freezer.CompareAndSwap(id, 0) {
		return &errutil.ValueError{What: "unfreeze caller", Value: id}
	}
	g.logger.Debug("graph unfrozen", "freezer", id)
	return nil
}

func (g *Graph) IsFrozen() bool {
	return g.freezer.Load() != 0
}

func (g *Graph) IsFrozenBy(id uint64) bool {
	return g.freezer.Load() == id
}

// Synchronize promotes the modified copies of every dirty node into their
// base values and empties the dirty set. It returns the deduplicated
// root-visible ancestors of the touched nodes, for the renderer to pick
// dirty regions from. UI thread only, and refused during a freeze window.
// Promotion holds the freeze token itself, so a render freeze landing
// mid-promotion fails with AlreadyFrozenError and must retry.
func (g *Graph) Synchronize() ([]node.Handle, error) {
	if !g.freezer.CompareAndSwap(0, g.uiThread) {
		return nil, &errutil.AlreadyFrozenError{Held: g.freezer.Load()}
	}
	defer g.freezer.CompareAndSwap(g.uiThread, 0)
	if id := syncutil.GoroutineID(); id != g.uiThread {
		return nil, &errutil.ValueError{What: "synchronize caller", Value: id}
	}

	g.dirtyMu.Lock()
	dirty := g.dirty
	g.dirty = make(map[uuid.UUID]node.Handle)
	g.dirtyMu.Unlock()

	touched := make([]node.Handle, 0, len(dirty))
	seen := make(map[uuid.UUID]bool)
	for _, h := range dirty {
		n, err := h.Get()
		if err != nil {
			// Removed while dirty; nothing left to promote.
			continue
		}
		n.ClearModifiedData()
		top, ok := g.visibleRoot(n)
		if ok && !seen[top.UUID()] {
			seen[top.UUID()] = true
			touched = append(touched, top)
		}
	}
	if len(dirty) > 0 {
		g.logger.Debug("graph synchronized", "dirty", len(dirty), "touched", len(touched))
	}
	return touched, nil
}

// visibleRoot walks up to the ancestor sitting directly under the root,
// or the root itself when n is the root.
func (g *Graph) visibleRoot(n node.Node) (node.Handle, bool) {
	rootID := g.root.UUID()
	cur := n
	for {
		if cur.UUID() == rootID {
			return node.MakeHandle(cur), true
		}
		p, err := cur.Parent().Get()
		if err != nil {
			return node.Handle{}, false
		}
		if p.UUID() == rootID {
			return node.MakeHandle(cur), true
		}
		cur = p
	}
}

// Reinitialize discards the whole tree and installs a fresh root. UI
// thread only, refused while frozen.
func (g *Graph) Reinitialize() (node.Handle, error) {
	if !g.freezer.CompareAndSwap(0, g.uiThread) {
		return node.Handle{}, &errutil.AlreadyFrozenError{Held: g.freezer.Load()}
	}
	defer g.freezer.CompareAndSwap(g.uiThread, 0)
	if id := syncutil.GoroutineID(); id != g.uiThread {
		return node.Handle{}, &errutil.ValueError{What: "reinitialize caller", Value: id}
	}

	if old, err := g.root.Get(); err == nil {
		if err := node.Discard(old); err != nil {
			return node.Handle{}, err
		}
	}
	g.dirtyMu.Lock()
	g.dirty = make(map[uuid.UUID]node.Handle)
	g.dirtyMu.Unlock()

	root, err := node.NewRoot(g)
	if err != nil {
		return node.Handle{}, err
	}
	g.root = node.MakeHandle(root)
	g.logger.Debug("graph reinitialized", "root", root.UUID())
	return g.root, nil
}
