// timeline.go
package render

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

type pendingDestroy struct {
	counter uint64
	destroy func()
}

// Timeline tracks submission ordering against the device timeline
// semaphore and defers resource destruction until the GPU can no longer
// reference the resource.
//
// Three counters matter: the completed value (read from the device), the
// reserved value (highest value handed out to a submission), and each
// pending destruction's required value. completed <= reserved always
// holds; a pending entry becomes destroyable once completed reaches its
// required value.
type Timeline struct {
	dev      Device
	reserved atomic.Uint64

	mu      sync.Mutex
	pending []pendingDestroy // sorted ascending by counter
}

func NewTimeline(dev Device) *Timeline {
	return &Timeline{dev: dev}
}

// Reserved returns the highest timeline value reserved so far.
func (t *Timeline) Reserved() uint64 {
	return t.reserved.Load()
}

// ReserveNext returns the next timeline value for a submission to signal.
// Values are dense: every reserved value must eventually be signaled, or
// destructions scheduled behind it will never run.
func (t *Timeline) ReserveNext() uint64 {
	return t.reserved.Add(1)
}

// ScheduleDestroy queues destroy to run once the device timeline reaches
// counter. Scheduling against an unreserved counter is a programming
// error: nothing will ever signal it.
func (t *Timeline) ScheduleDestroy(counter uint64, destroy func()) {
	if reserved := t.reserved.Load(); counter > reserved {
		panic(fmt.Sprintf("render: destruction scheduled at timeline %d but only %d reserved", counter, reserved))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// First entry with a strictly greater counter; equal counters keep
	// their scheduling order.
	i := sort.Search(len(t.pending), func(i int) bool {
		return t.pending[i].counter > counter
	})

	t.pending = append(t.pending, pendingDestroy{})
	copy(t.pending[i+1:], t.pending[i:])
	t.pending[i] = pendingDestroy{counter: counter, destroy: destroy}
}

// Reap destroys every pending entry whose required counter the device has
// completed. Destruction runs in non-decreasing counter order. Reap is
// cooperative: nothing is destroyed unless it is called.
func (t *Timeline) Reap() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pending) == 0 {
		return nil
	}

	completed, err := t.dev.TimelineCompleted()
	if err != nil {
		return err
	}

	n := 0
	for n < len(t.pending) && t.pending[n].counter <= completed {
		t.pending[n].destroy()
		n++
	}
	t.pending = t.pending[n:]

	return nil
}

// PendingCount reports how many destructions are still deferred.
func (t *Timeline) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
