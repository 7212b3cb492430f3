// timeline_test.go
package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveNextIsDenseAndMonotonic(t *testing.T) {
	tl := NewTimeline(newFakeDevice())

	assert.Equal(t, uint64(0), tl.Reserved())

	for want := uint64(1); want <= 100; want++ {
		assert.Equal(t, want, tl.ReserveNext())
		assert.Equal(t, want, tl.Reserved())
	}
}

func TestReapDestroysInCounterOrder(t *testing.T) {
	dev := newFakeDevice()
	tl := NewTimeline(dev)

	for i := 0; i < 5; i++ {
		tl.ReserveNext()
	}

	var order []int
	record := func(n int) func() {
		return func() { order = append(order, n) }
	}

	// Deliberately scheduled out of counter order.
	tl.ScheduleDestroy(3, record(3))
	tl.ScheduleDestroy(1, record(1))
	tl.ScheduleDestroy(5, record(5))
	tl.ScheduleDestroy(2, record(2))

	dev.completed = 5
	require.NoError(t, tl.Reap())

	assert.Equal(t, []int{1, 2, 3, 5}, order)
	assert.Equal(t, 0, tl.PendingCount())
}

func TestReapRetainsEntriesAboveCompleted(t *testing.T) {
	dev := newFakeDevice()
	tl := NewTimeline(dev)

	for i := 0; i < 4; i++ {
		tl.ReserveNext()
	}

	var destroyed []int
	for _, n := range []int{1, 2, 3, 4} {
		n := n
		tl.ScheduleDestroy(uint64(n), func() { destroyed = append(destroyed, n) })
	}

	dev.completed = 2
	require.NoError(t, tl.Reap())
	assert.Equal(t, []int{1, 2}, destroyed)
	assert.Equal(t, 2, tl.PendingCount())

	// Reaping again without progress destroys nothing more.
	require.NoError(t, tl.Reap())
	assert.Equal(t, []int{1, 2}, destroyed)

	dev.completed = 4
	require.NoError(t, tl.Reap())
	assert.Equal(t, []int{1, 2, 3, 4}, destroyed)
	assert.Equal(t, 0, tl.PendingCount())
}

func TestReapRunsEachDestroyExactlyOnce(t *testing.T) {
	dev := newFakeDevice()
	tl := NewTimeline(dev)

	tl.ReserveNext()

	calls := 0
	tl.ScheduleDestroy(1, func() { calls++ })

	dev.completed = 1
	for i := 0; i < 3; i++ {
		require.NoError(t, tl.Reap())
	}

	assert.Equal(t, 1, calls)
}

func TestReapEqualCountersKeepSchedulingOrder(t *testing.T) {
	dev := newFakeDevice()
	tl := NewTimeline(dev)

	tl.ReserveNext()

	var order []int
	for i := 0; i < 4; i++ {
		i := i
		tl.ScheduleDestroy(1, func() { order = append(order, i) })
	}

	dev.completed = 1
	require.NoError(t, tl.Reap())
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestReapEmptyQueueDoesNotTouchDevice(t *testing.T) {
	dev := newFakeDevice()
	dev.completedErr = assert.AnError
	tl := NewTimeline(dev)

	// With nothing pending, the completed value is never read.
	require.NoError(t, tl.Reap())
}

func TestScheduleDestroyPanicsAboveReserved(t *testing.T) {
	tl := NewTimeline(newFakeDevice())
	tl.ReserveNext()

	assert.Panics(t, func() {
		tl.ScheduleDestroy(2, func() {})
	})
}

func TestScheduleAtZeroIsImmediatelyReapable(t *testing.T) {
	dev := newFakeDevice()
	tl := NewTimeline(dev)

	called := false
	tl.ScheduleDestroy(0, func() { called = true })

	require.NoError(t, tl.Reap())
	assert.True(t, called)
}
