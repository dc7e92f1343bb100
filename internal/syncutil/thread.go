package syncutil

// Thread is a goroutine with a join point. Holding a Thread and calling
// Join on scope exit guarantees the goroutine does not outlive its owner.
type Thread struct {
	name string
	done chan struct{}
}

// Spawn runs fn on a new goroutine and returns its join handle.
func Spawn(name string, fn func()) *Thread {
	t := &Thread{name: name, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		fn()
	}()
	return t
}

// Join blocks until the goroutine returns. Safe to call more than once.
func (t *Thread) Join() {
	<-t.done
}

func (t *Thread) Name() string {
	return t.name
}
