package property

import (
	"hash/maphash"
	"sync"

	"github.com/notf-ui/notf/reactive"
)

// hashSeed makes property hashes stable within a process and unpredictable
// across processes.
var hashSeed = maphash.MakeSeed()

// Validator inspects an incoming value before it is accepted. It may
// rewrite the value in place; returning false vetoes the update silently.
type Validator[T any] func(value *T) bool

// Decl declares a property. Every field except Name may be left zero:
// Visibility defaults to Redraw and Default to the zero value of T.
type Decl[T comparable] struct {
	Name       string
	Default    T
	Visibility Visibility
	Validate   Validator[T]
}

// Property is a typed observable cell. The UI thread writes through Set;
// writes land in the modified copy and are promoted into the base value by
// ClearModified during graph synchronization. The render thread reads the
// base value only (RenderGet), which stays stable for the whole freeze
// window.
type Property[T comparable] struct {
	name       string
	visibility Visibility
	validate   Validator[T]
	out        *reactive.Publisher[T]

	mu       sync.Mutex
	value    T
	modified *T
	hash     uint64
	dirty    func()
}

// New builds a property from its declaration.
func New[T comparable](d Decl[T]) *Property[T] {
	p := &Property[T]{
		name:       d.Name,
		visibility: d.Visibility,
		validate:   d.Validate,
		out:        reactive.NewPublisher[T](),
		value:      d.Default,
	}
	p.hash = p.rehash(d.Default)
	return p
}

func (p *Property[T]) Name() string {
	return p.name
}

func (p *Property[T]) Visibility() Visibility {
	return p.visibility
}

// HashValue returns the 64-bit hash of the effective value. It is 0 if and
// only if the property is Invisible.
func (p *Property[T]) HashValue() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hash
}

// Get returns the UI view of the property: the modified copy when one
// exists, the base value otherwise.
func (p *Property[T]) Get() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modified != nil {
		return *p.modified
	}
	return p.value
}

// RenderGet returns the base value. During a freeze window this is the
// value as of the moment the graph was frozen, regardless of UI writes.
func (p *Property[T]) RenderGet() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Set updates the property from the UI thread. Setting the current
// effective value is a no-op: no validation, no publish. The validator may
// rewrite the incoming value or veto it (a veto keeps the prior value and
// publishes nothing). Accepted values go to the modified copy, the hash is
// recomputed, the owning node is marked dirty and the value is emitted
// downstream.
func (p *Property[T]) Set(value T) {
	p.mu.Lock()
	effective := p.value
	if p.modified != nil {
		effective = *p.modified
	}
	p.mu.Unlock()

	if value == effective {
		return
	}
	local := value
	if p.validate != nil && !p.validate(&local) {
		return
	}

	p.mu.Lock()
	if p.modified == nil {
		copied := local
		p.modified = &copied
	} else {
		*p.modified = local
	}
	p.hash = p.rehash(local)
	dirty := p.dirty
	p.mu.Unlock()

	if dirty != nil {
		dirty()
	}
	_ = p.out.Publish(local)
}

// ClearModified promotes the modified copy into the base value and drops
// the copy. Idempotent when no copy exists. UI thread only.
func (p *Property[T]) ClearModified() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modified == nil {
		return
	}
	p.value = *p.modified
	p.modified = nil
}

// IsModified reports whether a modified copy is pending promotion.
func (p *Property[T]) IsModified() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modified != nil
}

// Bind installs the dirty hook of the owning node. Wired once when the
// property is added to a node; not part of the embedder API.
func (p *Property[T]) Bind(dirty func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = dirty
}

func (p *Property[T]) rehash(value T) uint64 {
	if p.visibility == Invisible {
		return 0
	}
	h := maphash.Comparable(hashSeed, value)
	if h == 0 {
		h = 1
	}
	return h
}

// Subscribe implements reactive.Publishes: subscribers receive every
// accepted update.
func (p *Property[T]) Subscribe(sub reactive.Subscriber[T]) error {
	return p.out.Subscribe(sub)
}

// Unsubscribe implements reactive.Publishes.
func (p *Property[T]) Unsubscribe(sub reactive.Subscriber[T]) {
	p.out.Unsubscribe(sub)
}

// OnNext implements reactive.Subscriber by delegating to Set, making the
// property the terminal (or intermediate) stage of a pipeline.
func (p *Property[T]) OnNext(_ reactive.Publishes[T], value T) error {
	p.Set(value)
	return nil
}

// OnError implements reactive.Subscriber: an upstream error closes the
// property's downstream.
func (p *Property[T]) OnError(_ reactive.Publishes[T], err error) {
	p.out.Error(err)
}

// OnComplete implements reactive.Subscriber: upstream completion closes
// the property's downstream.
func (p *Property[T]) OnComplete(_ reactive.Publishes[T]) {
	p.out.Complete()
}
