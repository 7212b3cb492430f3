// device.go
package render

import "errors"

// Handles are opaque ids minted by the backend. The zero value is never
// a valid handle.
type (
	Semaphore     uint64
	Fence         uint64
	CommandBuffer uint64
	Image         uint64
	ImageView     uint64
	BufferHandle  uint64
	ShaderHandle  uint64
)

// Soft conditions surfaced by Acquire and Present.
var (
	ErrNotReady  = errors.New("swapchain image not ready")
	ErrOutOfDate = errors.New("swapchain out of date")
)

type Extent struct {
	Width  uint32
	Height uint32
}

type ImageLayout int32

const (
	LayoutUndefined ImageLayout = iota
	LayoutColorAttachment
	LayoutTransferDst
	LayoutPresentSrc
)

type StageMask uint64

const (
	StageNone StageMask = iota
	StageColorAttachmentOutput
	StageAllCommands
)

// SemaphoreOp is one wait or signal entry of a submission. Value is only
// meaningful for timeline semaphores and must be zero for binary ones.
type SemaphoreOp struct {
	Semaphore Semaphore
	Value     uint64
	Stage     StageMask
}

// Submission describes one queue submission. TimelineSignal, when non-zero,
// is the value the device timeline semaphore reaches once the submitted
// work completes.
type Submission struct {
	Waits          []SemaphoreOp
	CommandBuffers []CommandBuffer
	Signals        []SemaphoreOp
	TimelineSignal uint64
	Fence          Fence
}

type BufferUsage uint32

const (
	UsageTransferSrc BufferUsage = 1 << iota
	UsageTransferDst
	UsageUniform
	UsageStorage
	UsageVertex
	UsageIndex
	UsageDeviceAddress
)

// BufferSpec describes a buffer at creation time. HostVisible selects a
// mappable memory placement; Dedicated forces a dedicated allocation.
type BufferSpec struct {
	Size        uint64
	Usage       BufferUsage
	HostVisible bool
	Dedicated   bool
}

// BufferInfo is what the backend reports for a created buffer. Mapped is
// nil unless the buffer is host visible; Address is zero unless the
// buffer was created with UsageDeviceAddress.
type BufferInfo struct {
	Handle  BufferHandle
	Size    uint64
	Mapped  []byte
	Address uint64
}

type SurfaceCapabilities struct {
	MinExtent Extent
	MaxExtent Extent
}

// Device is the seam between the frame and destruction state machines and
// the native graphics API. The Vulkan implementation lives in
// device_vulkan.go; tests substitute a scripted fake.
type Device interface {
	// TimelineCompleted returns the device timeline counter value that
	// submitted work has reached.
	TimelineCompleted() (uint64, error)

	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(Semaphore)
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(Fence)

	// FenceSignaled is a zero-timeout status poll.
	FenceSignaled(Fence) (bool, error)
	// WaitFences blocks without timeout until all fences are signaled.
	WaitFences([]Fence) error
	ResetFences([]Fence) error

	CreateCommandBuffer() (CommandBuffer, error)
	ResetCommandBuffer(CommandBuffer) error
	BeginCommandBuffer(CommandBuffer) error
	EndCommandBuffer(CommandBuffer) error
	TransitionImage(cb CommandBuffer, image Image, oldLayout, newLayout ImageLayout)

	// Acquire polls for the next presentable image with zero timeout,
	// signaling sem when the image is usable. Returns ErrNotReady when no
	// image is available yet and ErrOutOfDate when the swapchain no
	// longer matches the surface. The bool reports a suboptimal match.
	Acquire(sem Semaphore) (imageIndex uint32, suboptimal bool, err error)

	// Present queues the image for presentation, waiting on sem; fence is
	// signaled once the presentation engine is done with the image.
	Present(imageIndex uint32, sem Semaphore, fence Fence) (suboptimal bool, err error)

	SwapchainImage(imageIndex uint32) (Image, ImageView)
	SwapchainExtent() Extent
	// RecreateSwapchain replaces the swapchain and its views for the new
	// extent and returns the extent actually used (clamped by the
	// surface). Callers must have drained in-flight frames first.
	RecreateSwapchain(width, height uint32) (Extent, error)
	SurfaceCapabilities() (SurfaceCapabilities, error)

	Submit(Submission) error

	CreateBuffer(BufferSpec) (BufferInfo, error)
	DestroyBuffer(BufferHandle)
	CreateShader(code []byte) (ShaderHandle, error)
	DestroyShader(ShaderHandle)

	WaitIdle() error
	// Shutdown releases everything the backend owns. The caller has
	// already waited for idle and drained deferred destructions.
	Shutdown()
}
