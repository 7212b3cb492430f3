// swapchain.go
package render

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// FramesInFlight is the number of frame slots the loop cycles through.
// One frame can be recorded while the previous one is still executing.
const FramesInFlight = 2

// FrameResult is the soft outcome of a TryNextFrame call.
type FrameResult int

const (
	// FrameNotReady: a slot or image was unavailable; nothing happened.
	FrameNotReady FrameResult = iota
	// FrameOutOfDate: the swapchain no longer matches the surface and
	// must be resized before the next frame.
	FrameOutOfDate
	// FrameSuboptimal: the frame was submitted and presented but the
	// swapchain is an imperfect surface match.
	FrameSuboptimal
	// FrameSuccess: the frame was submitted and presented.
	FrameSuccess
)

func (r FrameResult) String() string {
	switch r {
	case FrameNotReady:
		return "NotReady"
	case FrameOutOfDate:
		return "OutOfDate"
	case FrameSuboptimal:
		return "Suboptimal"
	case FrameSuccess:
		return "Success"
	default:
		return fmt.Sprintf("FrameResult(%d)", int(r))
	}
}

// Frame is what the render callback receives for one frame's work. The
// callback records into CommandBuffer and must leave Layout set to the
// image's layout as of its last recorded command.
type Frame struct {
	CommandBuffer CommandBuffer
	Image         Image
	View          ImageView
	Layout        *ImageLayout
	Width         uint32
	Height        uint32
	SlotIndex     uint32
}

// FrameSync carries extra semaphores the callback wants the frame's
// submission to wait on or signal.
type FrameSync struct {
	Waits   []SemaphoreOp
	Signals []SemaphoreOp
}

type RenderFunc func(frame *Frame) FrameSync

type frameSlot struct {
	commandBuffer  CommandBuffer
	acquired       Semaphore
	renderFinished Semaphore
	submitFence    Fence
	presentFence   Fence
}

// Swapchain drives the acquire, record, submit, present cycle over a
// fixed ring of frame slots. It is not safe for concurrent use; the
// expected shape is a single polling loop.
type Swapchain struct {
	ctx       *Context
	slots     [FramesInFlight]frameSlot
	slotIndex uint32
	extent    Extent
	log       *zap.Logger
}

func NewSwapchain(ctx *Context) (*Swapchain, error) {
	s := &Swapchain{
		ctx:    ctx,
		extent: ctx.dev.SwapchainExtent(),
		log:    ctx.log,
	}

	for i := range s.slots {
		cb, err := ctx.dev.CreateCommandBuffer()
		if err != nil {
			return nil, err
		}
		acquired, err := ctx.dev.CreateSemaphore()
		if err != nil {
			return nil, err
		}
		renderFinished, err := ctx.dev.CreateSemaphore()
		if err != nil {
			return nil, err
		}
		// Both fences start signaled so the first pass through each slot
		// is not blocked.
		submitFence, err := ctx.dev.CreateFence(true)
		if err != nil {
			return nil, err
		}
		presentFence, err := ctx.dev.CreateFence(true)
		if err != nil {
			return nil, err
		}

		s.slots[i] = frameSlot{
			commandBuffer:  cb,
			acquired:       acquired,
			renderFinished: renderFinished,
			submitFence:    submitFence,
			presentFence:   presentFence,
		}
	}

	return s, nil
}

// TryNextFrame attempts to record, submit and present one frame. It never
// blocks: every wait inside is a zero-timeout poll, and FrameNotReady
// means try again next tick. API failures that are not part of the normal
// frame protocol panic.
func (s *Swapchain) TryNextFrame(fn RenderFunc) FrameResult {
	slotIndex := s.slotIndex
	slot := &s.slots[slotIndex]

	// 1. The slot is reusable only when both its previous submission and
	// its previous presentation completed.
	for _, fence := range []Fence{slot.submitFence, slot.presentFence} {
		signaled, err := s.ctx.dev.FenceSignaled(fence)
		if err != nil {
			panic(fmt.Sprintf("render: fence poll failed: %v", err))
		}
		if !signaled {
			return FrameNotReady
		}
	}

	// 2. Zero-timeout acquire.
	imageIndex, acquireSuboptimal, err := s.ctx.dev.Acquire(slot.acquired)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotReady):
			return FrameNotReady
		case errors.Is(err, ErrOutOfDate):
			return FrameOutOfDate
		default:
			panic(fmt.Sprintf("render: image acquire failed: %v", err))
		}
	}

	// 3. The slot is committed once the acquire succeeds; advance the
	// ring immediately so an early return below cannot reuse it.
	s.slotIndex = (slotIndex + 1) % FramesInFlight

	if err := s.ctx.dev.ResetFences([]Fence{slot.submitFence, slot.presentFence}); err != nil {
		panic(fmt.Sprintf("render: fence reset failed: %v", err))
	}

	// 4. Fresh recording for this slot.
	if err := s.ctx.dev.ResetCommandBuffer(slot.commandBuffer); err != nil {
		panic(fmt.Sprintf("render: command buffer reset failed: %v", err))
	}
	if err := s.ctx.dev.BeginCommandBuffer(slot.commandBuffer); err != nil {
		panic(fmt.Sprintf("render: command buffer begin failed: %v", err))
	}

	// 5. Caller records the frame. The layout starts undefined; the
	// callback tracks whatever transitions it records.
	image, view := s.ctx.dev.SwapchainImage(imageIndex)
	layout := LayoutUndefined

	frame := Frame{
		CommandBuffer: slot.commandBuffer,
		Image:         image,
		View:          view,
		Layout:        &layout,
		Width:         s.extent.Width,
		Height:        s.extent.Height,
		SlotIndex:     slotIndex,
	}
	extra := fn(&frame)

	// 6. Whatever the callback left the image in, presentation needs
	// PRESENT_SRC.
	s.ctx.dev.TransitionImage(slot.commandBuffer, image, layout, LayoutPresentSrc)

	if err := s.ctx.dev.EndCommandBuffer(slot.commandBuffer); err != nil {
		panic(fmt.Sprintf("render: command buffer end failed: %v", err))
	}

	// 7. Submit under the queue mutex: wait for the acquired image plus
	// the callback's waits, signal render completion, the next timeline
	// value and the callback's signals.
	waits := append([]SemaphoreOp{
		{Semaphore: slot.acquired, Stage: StageColorAttachmentOutput},
	}, extra.Waits...)
	signals := append([]SemaphoreOp{
		{Semaphore: slot.renderFinished, Stage: StageAllCommands},
	}, extra.Signals...)

	s.ctx.queueMu.Lock()
	err = s.ctx.dev.Submit(Submission{
		Waits:          waits,
		CommandBuffers: []CommandBuffer{slot.commandBuffer},
		Signals:        signals,
		TimelineSignal: s.ctx.timeline.ReserveNext(),
		Fence:          slot.submitFence,
	})
	if err != nil {
		s.ctx.queueMu.Unlock()
		panic(fmt.Sprintf("render: queue submit failed: %v", err))
	}

	// 8. Present. OutOfDate here still means the submit above went
	// through; the caller resizes and carries on.
	presentSuboptimal, err := s.ctx.dev.Present(imageIndex, slot.renderFinished, slot.presentFence)
	s.ctx.queueMu.Unlock()
	if err != nil {
		if errors.Is(err, ErrOutOfDate) {
			return FrameOutOfDate
		}
		panic(fmt.Sprintf("render: present failed: %v", err))
	}

	if acquireSuboptimal || presentSuboptimal {
		return FrameSuboptimal
	}
	return FrameSuccess
}

// Resize replaces the swapchain for a new window extent. Zero or
// unchanged dimensions are a no-op. This is the one deliberately blocking
// path: all in-flight frames are waited out before the old swapchain is
// replaced. Frame slot objects survive; only the swapchain and its views
// are recreated.
func (s *Swapchain) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	if width == s.extent.Width && height == s.extent.Height {
		return nil
	}

	fences := make([]Fence, 0, 2*FramesInFlight)
	for i := range s.slots {
		fences = append(fences, s.slots[i].submitFence, s.slots[i].presentFence)
	}
	if err := s.ctx.dev.WaitFences(fences); err != nil {
		return err
	}

	caps, err := s.ctx.dev.SurfaceCapabilities()
	if err != nil {
		return err
	}
	width = clamp(width, caps.MinExtent.Width, caps.MaxExtent.Width)
	height = clamp(height, caps.MinExtent.Height, caps.MaxExtent.Height)

	extent, err := s.ctx.dev.RecreateSwapchain(width, height)
	if err != nil {
		return err
	}

	s.log.Debug("swapchain resized",
		zap.Uint32("width", extent.Width),
		zap.Uint32("height", extent.Height))

	s.extent = extent
	return nil
}

// Extent returns the current swapchain extent.
func (s *Swapchain) Extent() Extent {
	return s.extent
}

// Destroy waits out in-flight frames and releases the slot objects.
func (s *Swapchain) Destroy() error {
	fences := make([]Fence, 0, 2*FramesInFlight)
	for i := range s.slots {
		fences = append(fences, s.slots[i].submitFence, s.slots[i].presentFence)
	}
	if err := s.ctx.dev.WaitFences(fences); err != nil {
		return err
	}

	for i := range s.slots {
		s.ctx.dev.DestroySemaphore(s.slots[i].acquired)
		s.ctx.dev.DestroySemaphore(s.slots[i].renderFinished)
		s.ctx.dev.DestroyFence(s.slots[i].submitFence)
		s.ctx.dev.DestroyFence(s.slots[i].presentFence)
	}

	return nil
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi != 0 && v > hi {
		return hi
	}
	return v
}
