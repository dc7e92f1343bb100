package syncutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notf-ui/notf/internal/syncutil"
)

func TestGoroutineID(t *testing.T) {
	id := syncutil.GoroutineID()
	require.NotZero(t, id)
	assert.Equal(t, id, syncutil.GoroutineID(), "stable within one goroutine")

	var other uint64
	syncutil.Spawn("probe", func() {
		other = syncutil.GoroutineID()
	}).Join()
	assert.NotZero(t, other)
	assert.NotEqual(t, id, other)
}

func TestMutexOwnership(t *testing.T) {
	var mu syncutil.Mutex
	assert.False(t, mu.IsLockedByCurrent())

	mu.Lock()
	assert.True(t, mu.IsLockedByCurrent())

	var seenByOther bool
	syncutil.Spawn("observer", func() {
		seenByOther = mu.IsLockedByCurrent()
	}).Join()
	assert.False(t, seenByOther, "ownership is per goroutine")

	mu.Unlock()
	assert.False(t, mu.IsLockedByCurrent())
}

func TestRecursiveMutex(t *testing.T) {
	var mu syncutil.RecursiveMutex
	assert.Equal(t, 0, mu.Depth())

	mu.Lock()
	mu.Lock()
	assert.True(t, mu.IsLockedByCurrent())
	assert.Equal(t, 2, mu.Depth())

	mu.Unlock()
	assert.True(t, mu.IsLockedByCurrent())
	assert.Equal(t, 1, mu.Depth())

	mu.Unlock()
	assert.False(t, mu.IsLockedByCurrent())
	assert.Equal(t, 0, mu.Depth())
}

func TestRecursiveMutexRejectsForeignUnlock(t *testing.T) {
	var mu syncutil.RecursiveMutex
	mu.Lock()
	defer mu.Unlock()

	var panicked bool
	syncutil.Spawn("intruder", func() {
		defer func() { panicked = recover() != nil }()
		mu.Unlock()
	}).Join()
	assert.True(t, panicked)
}

func TestRecursiveMutexExcludesOtherGoroutines(t *testing.T) {
	var mu syncutil.RecursiveMutex
	mu.Lock()

	entered := make(chan struct{})
	th := syncutil.Spawn("waiter", func() {
		mu.Lock()
		close(entered)
		mu.Unlock()
	})

	select {
	case <-entered:
		t.Fatal("foreign goroutine acquired a held recursive mutex")
	default:
	}

	mu.Unlock()
	th.Join()
	<-entered
}

func TestThreadJoin(t *testing.T) {
	ran := false
	th := syncutil.Spawn("worker", func() { ran = true })
	assert.Equal(t, "worker", th.Name())

	th.Join()
	assert.True(t, ran)
	th.Join()
}
