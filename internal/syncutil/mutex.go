package syncutil

import (
	"sync"
	"sync/atomic"
)

// Mutex is a sync.Mutex that remembers which goroutine holds it, so code
// guarded by it can assert "this lock is held by me" in debug paths.
type Mutex struct {
	inner sync.Mutex
	owner atomic.Uint64
}

func (m *Mutex) Lock() {
	m.inner.Lock()
	m.owner.Store(GoroutineID())
}

func (m *Mutex) Unlock() {
	m.owner.Store(0)
	m.inner.Unlock()
}

// IsLockedByCurrent reports whether the calling goroutine holds the mutex.
func (m *Mutex) IsLockedByCurrent() bool {
	id := m.owner.Load()
	return id != 0 && id == GoroutineID()
}

// RecursiveMutex may be re-locked by the goroutine that already holds it.
// Unlock must be called once per Lock, by the owning goroutine.
type RecursiveMutex struct {
	inner sync.Mutex
	owner atomic.Uint64
	depth int // guarded by inner while owned
}

func (m *RecursiveMutex) Lock() {
	id := GoroutineID()
	if m.owner.Load() == id {
		m.depth++
		return
	}
	m.inner.Lock()
	m.owner.Store(id)
	m.depth = 1
}

func (m *RecursiveMutex) Unlock() {
	if m.owner.Load() != GoroutineID() {
		panic("syncutil: RecursiveMutex unlocked by non-owner")
	}
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		m.inner.Unlock()
	}
}

// IsLockedByCurrent reports whether the calling goroutine holds the mutex.
func (m *RecursiveMutex) IsLockedByCurrent() bool {
	id := m.owner.Load()
	return id != 0 && id == GoroutineID()
}

// Depth returns the recursion depth. Only meaningful to the owner.
func (m *RecursiveMutex) Depth() int {
	if !m.IsLockedByCurrent() {
		return 0
	}
	return m.depth
}
