package reactive

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notf-ui/notf/errutil"
)

// recorder is a test subscriber that records everything it receives.
type recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	errs      []error
	completed int

	nextErr   error     // returned from OnNext when set
	nextPanic any       // panicked from OnNext when set
	onNext    func(T)   // extra hook, runs before recording
}

func (r *recorder[T]) OnNext(_ Publishes[T], value T) error {
	if r.onNext != nil {
		r.onNext(value)
	}
	if r.nextPanic != nil {
		panic(r.nextPanic)
	}
	r.mu.Lock()
	r.values = append(r.values, value)
	r.mu.Unlock()
	return r.nextErr
}

func (r *recorder[T]) OnError(_ Publishes[T], err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *recorder[T]) OnComplete(_ Publishes[T]) {
	r.mu.Lock()
	r.completed++
	r.mu.Unlock()
}

func (r *recorder[T]) recorded() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func TestPublisherBasicEmission(t *testing.T) {
	pub := NewPublisher[int]()
	rec := &recorder[int]{}

	require.NoError(t, pub.Subscribe(rec))
	require.NoError(t, pub.Publish(1))
	require.NoError(t, pub.Publish(2))
	pub.Complete()

	err := pub.Publish(3)
	require.ErrorIs(t, err, errutil.ErrPublisherClosed)

	assert.Equal(t, []int{1, 2}, rec.recorded())
	assert.Equal(t, 1, rec.completed)
	assert.Empty(t, rec.errs)
}

func TestSubscribeIdempotent(t *testing.T) {
	pub := NewPublisher[int]()
	rec := &recorder[int]{}

	require.NoError(t, pub.Subscribe(rec))
	require.NoError(t, pub.Subscribe(rec))
	assert.Equal(t, 1, pub.SubscriberCount())

	require.NoError(t, pub.Publish(7))
	assert.Equal(t, []int{7}, rec.recorded())
}

func TestSubscribeOnTerminalPublisher(t *testing.T) {
	pub := NewPublisher[int]()
	pub.Complete()

	err := pub.Subscribe(&recorder[int]{})
	assert.ErrorIs(t, err, errutil.ErrPublisherClosed)
}

func TestUnsubscribeIsNoopWhenAbsent(t *testing.T) {
	pub := NewPublisher[int]()
	a, b := &recorder[int]{}, &recorder[int]{}

	require.NoError(t, pub.Subscribe(a))
	pub.Unsubscribe(b) // never subscribed
	assert.Equal(t, 1, pub.SubscriberCount())

	pub.Unsubscribe(a)
	assert.Equal(t, 0, pub.SubscriberCount())
}

func TestEmissionOrderFollowsSubscriptionOrder(t *testing.T) {
	pub := NewPublisher[int]()
	var order []string
	first := &recorder[int]{onNext: func(int) { order = append(order, "first") }}
	second := &recorder[int]{onNext: func(int) { order = append(order, "second") }}

	require.NoError(t, pub.Subscribe(first))
	require.NoError(t, pub.Subscribe(second))
	require.NoError(t, pub.Publish(1))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSubscriberAddedDuringPublishDoesNotParticipate(t *testing.T) {
	pub := NewPublisher[int]()
	late := &recorder[int]{}
	early := &recorder[int]{}
	early.onNext = func(int) {
		require.NoError(t, pub.Subscribe(late))
	}

	require.NoError(t, pub.Subscribe(early))
	require.NoError(t, pub.Publish(1))
	assert.Empty(t, late.recorded())

	require.NoError(t, pub.Publish(2))
	assert.Equal(t, []int{2}, late.recorded())
}

func TestSubscriberErrorFeedsErrorPath(t *testing.T) {
	pub := NewPublisher[int]()
	boom := errors.New("boom")
	failing := &recorder[int]{nextErr: boom}
	witness := &recorder[int]{}

	require.NoError(t, pub.Subscribe(failing))
	require.NoError(t, pub.Subscribe(witness))

	// The failure must not surface at the publish call site.
	require.NoError(t, pub.Publish(1))

	require.Len(t, witness.errs, 1)
	assert.ErrorIs(t, witness.errs[0], boom)
	assert.Empty(t, witness.recorded())
	assert.True(t, pub.IsClosed())
	assert.False(t, pub.IsCompleted())
	assert.Equal(t, 0, pub.SubscriberCount())
}

func TestSubscriberPanicFeedsErrorPath(t *testing.T) {
	pub := NewPublisher[int]()
	panicking := &recorder[int]{nextPanic: "kaboom"}
	witness := &recorder[int]{}

	require.NoError(t, pub.Subscribe(panicking))
	require.NoError(t, pub.Subscribe(witness))
	require.NoError(t, pub.Publish(1))

	require.Len(t, witness.errs, 1)
	assert.Contains(t, witness.errs[0].Error(), "kaboom")
	assert.True(t, pub.IsClosed())
}

func TestTerminalSignalIsExactlyOnce(t *testing.T) {
	pub := NewPublisher[int]()
	rec := &recorder[int]{}
	require.NoError(t, pub.Subscribe(rec))

	pub.Complete()
	pub.Complete()
	pub.Error(errors.New("late"))

	assert.Equal(t, 1, rec.completed)
	assert.Empty(t, rec.errs)
}
