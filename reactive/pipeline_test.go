package reactive

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndDisconnect(t *testing.T) {
	pub := NewPublisher[int]()
	rec := &recorder[int]{}

	pl, err := Connect[int](pub, rec)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(1))

	pl.Disconnect()
	require.NoError(t, pub.Publish(2))

	assert.Equal(t, []int{1}, rec.recorded())
	assert.True(t, pl.IsDisconnected())
}

func TestPipelineRoundTripLeavesPublisherUnchanged(t *testing.T) {
	pub := NewPublisher[int]()
	before := pub.SubscriberCount()

	pl, err := Connect[int](pub, &recorder[int]{})
	require.NoError(t, err)
	pl.Disconnect()

	assert.Equal(t, before, pub.SubscriberCount())
}

func TestPipelineThroughOperators(t *testing.T) {
	pub := NewPublisher[int]()
	rec := &recorder[string]{}

	evens := Filter(func(v int) bool { return v%2 == 0 })
	toStr := Map(strconv.Itoa)

	pl1, err := Via(From[int](pub), evens)
	require.NoError(t, err)
	pl2, err := Via(pl1, toStr)
	require.NoError(t, err)
	pl, err := pl2.To(rec)
	require.NoError(t, err)

	for v := 1; v <= 4; v++ {
		require.NoError(t, pub.Publish(v))
	}
	assert.Equal(t, []string{"2", "4"}, rec.recorded())

	pl.Disconnect()
	require.NoError(t, pub.Publish(6))
	assert.Equal(t, []string{"2", "4"}, rec.recorded())
	assert.Equal(t, 0, pub.SubscriberCount())
	assert.Equal(t, 0, evens.SubscriberCount())
	assert.Equal(t, 0, toStr.SubscriberCount())
}

func TestDisconnectIsOneShot(t *testing.T) {
	pub := NewPublisher[int]()
	pl, err := Connect[int](pub, &recorder[int]{})
	require.NoError(t, err)

	pl.Disconnect()
	pl.Disconnect()
	assert.True(t, pl.IsDisconnected())

	_, err = pl.To(&recorder[int]{})
	assert.Error(t, err)
}

func TestSinglePublisherPolicyRejectsSecondUpstream(t *testing.T) {
	a := NewPublisher[int]()
	b := NewPublisher[int]()
	op := Map(func(v int) int { return v })

	_, err := Via(From[int](a), op)
	require.NoError(t, err)
	_, err = Via(From[int](b), op)
	assert.Error(t, err)
}

func TestMultiPublisherPolicyMergesUpstreams(t *testing.T) {
	a := NewPublisher[int]()
	b := NewPublisher[int]()
	op := NewOperator(MultiPublisher, func(v int) (int, bool, error) {
		return v, true, nil
	})
	rec := &recorder[int]{}

	plA, err := Via(From[int](a), op)
	require.NoError(t, err)
	_, err = plA.To(rec)
	require.NoError(t, err)
	_, err = Via(From[int](b), op)
	require.NoError(t, err)

	require.NoError(t, a.Publish(1))
	require.NoError(t, b.Publish(2))
	assert.Equal(t, []int{1, 2}, rec.recorded())
}

func TestOperatorTransformErrorReachesUpstreamErrorPath(t *testing.T) {
	pub := NewPublisher[int]()
	boom := errors.New("bad value")
	op := NewOperator(SinglePublisher, func(v int) (int, bool, error) {
		if v < 0 {
			return 0, false, boom
		}
		return v, true, nil
	})
	down := &recorder[int]{}
	witness := &recorder[int]{}

	pl, err := Via(From[int](pub), op)
	require.NoError(t, err)
	_, err = pl.To(down)
	require.NoError(t, err)
	require.NoError(t, pub.Subscribe(witness))

	require.NoError(t, pub.Publish(1))
	require.NoError(t, pub.Publish(-1))

	// The upstream publisher errored; the operator forwarded it downstream.
	require.Len(t, witness.errs, 1)
	require.Len(t, down.errs, 1)
	assert.ErrorIs(t, down.errs[0], boom)
	assert.Equal(t, []int{1}, down.recorded())
}

func TestOperatorForwardsCompletion(t *testing.T) {
	pub := NewPublisher[int]()
	op := Map(func(v int) int { return v * 2 })
	rec := &recorder[int]{}

	pl, err := Via(From[int](pub), op)
	require.NoError(t, err)
	_, err = pl.To(rec)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(3))
	pub.Complete()

	assert.Equal(t, []int{6}, rec.recorded())
	assert.Equal(t, 1, rec.completed)
}

func TestDisconnectRacingAttachLeavesNoSubscription(t *testing.T) {
	for i := 0; i < 200; i++ {
		pub := NewPublisher[int]()
		pl := From[int](pub)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			pl.Disconnect()
		}()

		if _, err := pl.To(&recorder[int]{}); err != nil {
			assert.ErrorIs(t, err, errPipelineDisconnected)
		}
		wg.Wait()

		// Whichever side won, the subscription must not survive.
		assert.Zero(t, pub.SubscriberCount())
		assert.True(t, pl.IsDisconnected())
	}
}
