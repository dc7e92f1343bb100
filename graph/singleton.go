package graph

import (
	"context"
	"errors"
	"sync"
)

var (
	instMu sync.Mutex
	inst   *Graph
)

// Initialize creates the process-wide graph. The calling goroutine becomes
// the UI thread. There is exactly one graph per process; a second call
// fails until Shutdown.
func Initialize(ctx context.Context) (*Graph, error) {
	instMu.Lock()
	defer instMu.Unlock()
	if inst != nil {
		return nil, errors.New("graph: already initialized")
	}
	g, err := New(ctx)
	if err != nil {
		return nil, err
	}
	inst = g
	return g, nil
}

// TheGraph returns the process-wide graph. It panics when Initialize has
// not run; embedders hold the graph for the whole application lifetime.
func TheGraph() *Graph {
	instMu.Lock()
	defer instMu.Unlock()
	if inst == nil {
		panic("graph: TheGraph called before Initialize")
	}
	return inst
}

// Shutdown forgets the process-wide graph. Teardown is the reverse of
// initialization: callers stop the render thread and timer pools first.
func Shutdown() {
	instMu.Lock()
	defer instMu.Unlock()
	inst = nil
}
