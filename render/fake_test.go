// fake_test.go
package render

import "fmt"

type acquireStep struct {
	index      uint32
	suboptimal bool
	err        error
}

type presentStep struct {
	suboptimal bool
	err        error
}

// fakeDevice is a scriptable Device for exercising the state machines
// without a GPU. Acquire and Present consume scripted steps; fences are
// plain booleans that submissions and presents signal immediately.
type fakeDevice struct {
	completed    uint64
	completedErr error

	nextID uint64

	fenceState map[Fence]bool
	semaphores map[Semaphore]bool

	acquireScript []acquireStep
	presentScript []presentStep

	submissions []Submission
	presented   []uint32

	extent        Extent
	caps          SurfaceCapabilities
	recreates     []Extent
	transitions   [][2]ImageLayout
	cbResets      int
	cbBegins      int
	cbEnds        int
	waitedFences  [][]Fence
	waitIdleCalls int
	shutdownCalls int

	buffers          map[BufferHandle]BufferSpec
	destroyedBuffers []BufferHandle
	shaders          map[ShaderHandle][]byte
	destroyedShaders []ShaderHandle
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		fenceState: make(map[Fence]bool),
		semaphores: make(map[Semaphore]bool),
		extent:     Extent{Width: 800, Height: 600},
		caps: SurfaceCapabilities{
			MinExtent: Extent{Width: 1, Height: 1},
			MaxExtent: Extent{Width: 4096, Height: 4096},
		},
		buffers: make(map[BufferHandle]BufferSpec),
		shaders: make(map[ShaderHandle][]byte),
	}
}

func (d *fakeDevice) mint() uint64 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) TimelineCompleted() (uint64, error) {
	if d.completedErr != nil {
		return 0, d.completedErr
	}
	return d.completed, nil
}

func (d *fakeDevice) CreateSemaphore() (Semaphore, error) {
	id := Semaphore(d.mint())
	d.semaphores[id] = true
	return id, nil
}

func (d *fakeDevice) DestroySemaphore(id Semaphore) {
	delete(d.semaphores, id)
}

func (d *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	id := Fence(d.mint())
	d.fenceState[id] = signaled
	return id, nil
}

func (d *fakeDevice) DestroyFence(id Fence) {
	delete(d.fenceState, id)
}

func (d *fakeDevice) FenceSignaled(id Fence) (bool, error) {
	return d.fenceState[id], nil
}

func (d *fakeDevice) WaitFences(ids []Fence) error {
	d.waitedFences = append(d.waitedFences, ids)
	for _, id := range ids {
		d.fenceState[id] = true
	}
	return nil
}

func (d *fakeDevice) ResetFences(ids []Fence) error {
	for _, id := range ids {
		d.fenceState[id] = false
	}
	return nil
}

func (d *fakeDevice) CreateCommandBuffer() (CommandBuffer, error) {
	return CommandBuffer(d.mint()), nil
}

func (d *fakeDevice) ResetCommandBuffer(CommandBuffer) error {
	d.cbResets++
	return nil
}

func (d *fakeDevice) BeginCommandBuffer(CommandBuffer) error {
	d.cbBegins++
	return nil
}

func (d *fakeDevice) EndCommandBuffer(CommandBuffer) error {
	d.cbEnds++
	return nil
}

func (d *fakeDevice) TransitionImage(_ CommandBuffer, _ Image, oldLayout, newLayout ImageLayout) {
	d.transitions = append(d.transitions, [2]ImageLayout{oldLayout, newLayout})
}

func (d *fakeDevice) Acquire(Semaphore) (uint32, bool, error) {
	if len(d.acquireScript) == 0 {
		panic("fakeDevice: acquire script exhausted")
	}
	step := d.acquireScript[0]
	d.acquireScript = d.acquireScript[1:]
	if step.err != nil {
		return 0, false, step.err
	}
	return step.index, step.suboptimal, nil
}

// Present signals the per-frame present fence immediately, as if the
// presentation engine finished instantly.
func (d *fakeDevice) Present(imageIndex uint32, _ Semaphore, fence Fence) (bool, error) {
	if len(d.presentScript) == 0 {
		panic("fakeDevice: present script exhausted")
	}
	step := d.presentScript[0]
	d.presentScript = d.presentScript[1:]
	if step.err != nil {
		return false, step.err
	}
	d.presented = append(d.presented, imageIndex)
	d.fenceState[fence] = true
	return step.suboptimal, nil
}

func (d *fakeDevice) SwapchainImage(imageIndex uint32) (Image, ImageView) {
	return Image(1000 + uint64(imageIndex)), ImageView(2000 + uint64(imageIndex))
}

func (d *fakeDevice) SwapchainExtent() Extent {
	return d.extent
}

func (d *fakeDevice) RecreateSwapchain(width, height uint32) (Extent, error) {
	d.extent = Extent{Width: width, Height: height}
	d.recreates = append(d.recreates, d.extent)
	return d.extent, nil
}

func (d *fakeDevice) SurfaceCapabilities() (SurfaceCapabilities, error) {
	return d.caps, nil
}

// Submit signals the submission fence immediately, as if the GPU executed
// the work instantly. The timeline completed value is NOT advanced; tests
// control that explicitly.
func (d *fakeDevice) Submit(sub Submission) error {
	d.submissions = append(d.submissions, sub)
	if sub.Fence != 0 {
		d.fenceState[sub.Fence] = true
	}
	return nil
}

func (d *fakeDevice) CreateBuffer(spec BufferSpec) (BufferInfo, error) {
	id := BufferHandle(d.mint())
	d.buffers[id] = spec

	info := BufferInfo{Handle: id, Size: spec.Size}
	if spec.HostVisible {
		info.Mapped = make([]byte, spec.Size)
	}
	if spec.Usage&UsageDeviceAddress != 0 {
		info.Address = 0xf000_0000 + uint64(id)
	}
	return info, nil
}

func (d *fakeDevice) DestroyBuffer(id BufferHandle) {
	if _, ok := d.buffers[id]; !ok {
		panic(fmt.Sprintf("fakeDevice: destroying unknown buffer %d", id))
	}
	delete(d.buffers, id)
	d.destroyedBuffers = append(d.destroyedBuffers, id)
}

func (d *fakeDevice) CreateShader(code []byte) (ShaderHandle, error) {
	id := ShaderHandle(d.mint())
	d.shaders[id] = code
	return id, nil
}

func (d *fakeDevice) DestroyShader(id ShaderHandle) {
	delete(d.shaders, id)
	d.destroyedShaders = append(d.destroyedShaders, id)
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdleCalls++
	return nil
}

func (d *fakeDevice) Shutdown() {
	d.shutdownCalls++
}

// scriptFrames queues n successful acquire/present pairs cycling through
// image indices.
func (d *fakeDevice) scriptFrames(n int) {
	for i := 0; i < n; i++ {
		d.acquireScript = append(d.acquireScript, acquireStep{index: uint32(i % 3)})
		d.presentScript = append(d.presentScript, presentStep{})
	}
}
