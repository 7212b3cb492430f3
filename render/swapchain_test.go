// swapchain_test.go
package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopRender(frame *Frame) FrameSync {
	return FrameSync{}
}

func newTestSwapchain(t *testing.T, dev *fakeDevice) (*Context, *Swapchain) {
	t.Helper()
	ctx := NewContext(dev)
	sc, err := NewSwapchain(ctx)
	require.NoError(t, err)
	return ctx, sc
}

func TestTryNextFrameNotReadyWhenSlotBusy(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	// Unsignal the first slot's submit fence, as if its previous frame
	// were still executing.
	dev.fenceState[sc.slots[0].submitFence] = false

	for i := 0; i < 3; i++ {
		assert.Equal(t, FrameNotReady, sc.TryNextFrame(noopRender))
	}

	// No acquire was attempted and no state moved.
	assert.Equal(t, uint32(0), sc.slotIndex)
	assert.Empty(t, dev.submissions)
}

func TestTryNextFrameNotReadyWhenNoImage(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	dev.acquireScript = []acquireStep{{err: ErrNotReady}, {err: ErrNotReady}}

	assert.Equal(t, FrameNotReady, sc.TryNextFrame(noopRender))
	assert.Equal(t, FrameNotReady, sc.TryNextFrame(noopRender))

	// The slot was never committed.
	assert.Equal(t, uint32(0), sc.slotIndex)
	assert.Empty(t, dev.submissions)
	assert.Equal(t, 0, dev.cbBegins)
}

func TestFrameSlotsCycleWithTimelineValues(t *testing.T) {
	dev := newFakeDevice()
	ctx, sc := newTestSwapchain(t, dev)

	dev.scriptFrames(4)

	slotSeen := make([]uint32, 0, 4)
	for i := 0; i < 4; i++ {
		result := sc.TryNextFrame(func(frame *Frame) FrameSync {
			slotSeen = append(slotSeen, frame.SlotIndex)
			return FrameSync{}
		})
		assert.Equal(t, FrameSuccess, result)
	}

	assert.Equal(t, []uint32{0, 1, 0, 1}, slotSeen)

	// Each successful frame reserves the next dense timeline value.
	require.Len(t, dev.submissions, 4)
	for i, sub := range dev.submissions {
		assert.Equal(t, uint64(i+1), sub.TimelineSignal)
	}
	assert.Equal(t, uint64(4), ctx.Timeline().Reserved())
}

func TestFrameAlwaysEndsInPresentLayout(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	dev.scriptFrames(2)

	// First callback records nothing; second transitions to color
	// attachment itself.
	require.Equal(t, FrameSuccess, sc.TryNextFrame(noopRender))
	require.Equal(t, FrameSuccess, sc.TryNextFrame(func(frame *Frame) FrameSync {
		*frame.Layout = LayoutColorAttachment
		return FrameSync{}
	}))

	require.Len(t, dev.transitions, 2)
	assert.Equal(t, [2]ImageLayout{LayoutUndefined, LayoutPresentSrc}, dev.transitions[0])
	assert.Equal(t, [2]ImageLayout{LayoutColorAttachment, LayoutPresentSrc}, dev.transitions[1])
}

func TestCallbackSemaphoresJoinSubmission(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	dev.scriptFrames(1)

	userWait := SemaphoreOp{Semaphore: 901, Stage: StageAllCommands}
	userSignal := SemaphoreOp{Semaphore: 902, Stage: StageAllCommands}

	result := sc.TryNextFrame(func(frame *Frame) FrameSync {
		return FrameSync{
			Waits:   []SemaphoreOp{userWait},
			Signals: []SemaphoreOp{userSignal},
		}
	})
	require.Equal(t, FrameSuccess, result)

	require.Len(t, dev.submissions, 1)
	sub := dev.submissions[0]

	// Waits: acquired semaphore first, then the callback's.
	require.Len(t, sub.Waits, 2)
	assert.Equal(t, sc.slots[0].acquired, sub.Waits[0].Semaphore)
	assert.Equal(t, userWait, sub.Waits[1])

	// Signals: render-finished first, then the callback's; the timeline
	// value rides in TimelineSignal.
	require.Len(t, sub.Signals, 2)
	assert.Equal(t, sc.slots[0].renderFinished, sub.Signals[0].Semaphore)
	assert.Equal(t, userSignal, sub.Signals[1])
	assert.Equal(t, uint64(1), sub.TimelineSignal)
}

func TestOutOfDateFromAcquire(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	dev.acquireScript = []acquireStep{{err: ErrOutOfDate}}

	assert.Equal(t, FrameOutOfDate, sc.TryNextFrame(noopRender))
	assert.Empty(t, dev.submissions)
	assert.Equal(t, uint32(0), sc.slotIndex)
}

func TestOutOfDateFromPresentAfterSubmit(t *testing.T) {
	dev := newFakeDevice()
	ctx, sc := newTestSwapchain(t, dev)

	dev.scriptFrames(2)
	dev.acquireScript = append(dev.acquireScript, acquireStep{index: 2})
	dev.presentScript = append(dev.presentScript, presentStep{err: ErrOutOfDate})

	require.Equal(t, FrameSuccess, sc.TryNextFrame(noopRender))
	require.Equal(t, FrameSuccess, sc.TryNextFrame(noopRender))

	// Present reports stale on the third frame: the submit already
	// happened, so the timeline value was consumed.
	assert.Equal(t, FrameOutOfDate, sc.TryNextFrame(noopRender))
	assert.Len(t, dev.submissions, 3)
	assert.Equal(t, uint64(3), ctx.Timeline().Reserved())

	// After a resize the loop recovers. The slot's fences were signaled
	// by Submit and the resize wait.
	require.NoError(t, sc.Resize(1024, 768))
	dev.scriptFrames(1)
	assert.Equal(t, FrameSuccess, sc.TryNextFrame(noopRender))
}

func TestSuboptimalFromAcquireOrPresent(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	dev.acquireScript = []acquireStep{{index: 0, suboptimal: true}, {index: 1}}
	dev.presentScript = []presentStep{{}, {suboptimal: true}}

	assert.Equal(t, FrameSuboptimal, sc.TryNextFrame(noopRender))
	assert.Equal(t, FrameSuboptimal, sc.TryNextFrame(noopRender))
}

func TestResizeIgnoresZeroAndUnchangedExtents(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	require.NoError(t, sc.Resize(0, 600))
	require.NoError(t, sc.Resize(800, 0))
	require.NoError(t, sc.Resize(800, 600)) // current extent
	assert.Empty(t, dev.recreates)
	assert.Empty(t, dev.waitedFences)

	require.NoError(t, sc.Resize(1024, 768))
	require.Len(t, dev.recreates, 1)

	// Same extent again: nothing to do.
	require.NoError(t, sc.Resize(1024, 768))
	assert.Len(t, dev.recreates, 1)
}

func TestResizeClampsToSurfaceBounds(t *testing.T) {
	dev := newFakeDevice()
	dev.caps = SurfaceCapabilities{
		MinExtent: Extent{Width: 200, Height: 200},
		MaxExtent: Extent{Width: 1000, Height: 1000},
	}
	_, sc := newTestSwapchain(t, dev)

	require.NoError(t, sc.Resize(50, 5000))
	require.Len(t, dev.recreates, 1)
	assert.Equal(t, Extent{Width: 200, Height: 1000}, dev.recreates[0])
	assert.Equal(t, Extent{Width: 200, Height: 1000}, sc.Extent())
}

func TestResizeWaitsOutInFlightFrames(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	require.NoError(t, sc.Resize(640, 480))

	require.Len(t, dev.waitedFences, 1)
	assert.Len(t, dev.waitedFences[0], 2*FramesInFlight)
}

func TestFrameDimensionsTrackResize(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	require.NoError(t, sc.Resize(320, 240))

	dev.scriptFrames(1)
	sc.TryNextFrame(func(frame *Frame) FrameSync {
		assert.Equal(t, uint32(320), frame.Width)
		assert.Equal(t, uint32(240), frame.Height)
		return FrameSync{}
	})
}

func TestDestroyReleasesSlotObjects(t *testing.T) {
	dev := newFakeDevice()
	_, sc := newTestSwapchain(t, dev)

	require.NoError(t, sc.Destroy())

	assert.Empty(t, dev.semaphores)
	assert.Empty(t, dev.fenceState)
}
