// device_vulkan.go
package render

import (
	"math"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	vk "github.com/gpukit/vkframe"
)

var requiredDeviceExtensions = []string{
	"VK_KHR_swapchain",
	"VK_EXT_swapchain_maintenance1",
}

// VulkanDevice implements Device on the vkframe binding. Handles given
// out through the Device interface are small ids mapped to the real
// Vulkan objects here, which keeps the state machines free of cgo types.
type VulkanDevice struct {
	instance    vk.Instance
	surface     vk.SurfaceKHR
	physical    vk.PhysicalDevice
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32

	timelineSem vk.Semaphore
	commandPool vk.CommandPool
	alloc       *deviceAllocator

	swapchain       vk.SwapchainKHR
	swapchainFormat vk.Format
	extent          vk.Extent2D
	images          []vk.Image
	views           []vk.ImageView
	imageIDs        []Image
	viewIDs         []ImageView

	log *zap.Logger

	mu             sync.Mutex
	nextID         uint64
	semaphores     map[Semaphore]vk.Semaphore
	fences         map[Fence]vk.Fence
	commandBuffers map[CommandBuffer]vk.CommandBuffer
	buffers        map[BufferHandle]*vulkanBuffer
	shaders        map[ShaderHandle]vk.ShaderModule
	imagesByID     map[Image]vk.Image
	viewsByID      map[ImageView]vk.ImageView
}

type vulkanBuffer struct {
	buffer vk.Buffer
	alloc  allocation
}

// NewVulkanDevice selects a physical device, creates the logical device
// with the feature chain the substrate relies on, and builds the initial
// swapchain. The instance and surface stay owned by the caller.
func NewVulkanDevice(instance vk.Instance, surface vk.SurfaceKHR, width, height uint32, log *zap.Logger) (*VulkanDevice, error) {
	if log == nil {
		log = zap.NewNop()
	}

	version, err := vk.EnumerateInstanceVersion()
	if err != nil {
		return nil, errors.Wrap(err, "query instance version")
	}
	if vk.ApiVersionMajor(version) < 1 ||
		(vk.ApiVersionMajor(version) == 1 && vk.ApiVersionMinor(version) < 3) {
		return nil, errors.Errorf("Vulkan instance version %d.%d is below the required 1.3",
			vk.ApiVersionMajor(version), vk.ApiVersionMinor(version))
	}

	physicals, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}

	physical, queueFamily, err := selectPhysicalDevice(physicals, surface, log)
	if err != nil {
		return nil, err
	}

	device, err := physical.CreateDevice(&vk.DeviceCreateInfo{
		QueueCreateInfos: []vk.DeviceQueueCreateInfo{
			{QueueFamilyIndex: queueFamily, QueuePriorities: []float32{1.0}},
		},
		EnabledExtensionNames: requiredDeviceExtensions,
		Vulkan12Features: &vk.PhysicalDeviceVulkan12Features{
			DescriptorIndexing:                       true,
			DescriptorBindingVariableDescriptorCount: true,
			RuntimeDescriptorArray:                   true,
			TimelineSemaphore:                        true,
			BufferDeviceAddress:                      true,
			ScalarBlockLayout:                        true,
		},
		Vulkan13Features: &vk.PhysicalDeviceVulkan13Features{
			Synchronization2: true,
			DynamicRendering: true,
		},
		SwapchainMaintenance1: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create logical device")
	}

	timelineSem, err := device.CreateTimelineSemaphore(0)
	if err != nil {
		device.Destroy()
		return nil, errors.Wrap(err, "create timeline semaphore")
	}

	commandPool, err := device.CreateCommandPool(&vk.CommandPoolCreateInfo{
		Flags:            vk.COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT,
		QueueFamilyIndex: queueFamily,
	})
	if err != nil {
		device.DestroySemaphore(timelineSem)
		device.Destroy()
		return nil, errors.Wrap(err, "create command pool")
	}

	d := &VulkanDevice{
		instance:       instance,
		surface:        surface,
		physical:       physical,
		device:         device,
		queue:          device.GetQueue(queueFamily, 0),
		queueFamily:    queueFamily,
		timelineSem:    timelineSem,
		commandPool:    commandPool,
		alloc:          newDeviceAllocator(device, physical, log),
		log:            log,
		semaphores:     make(map[Semaphore]vk.Semaphore),
		fences:         make(map[Fence]vk.Fence),
		commandBuffers: make(map[CommandBuffer]vk.CommandBuffer),
		buffers:        make(map[BufferHandle]*vulkanBuffer),
		shaders:        make(map[ShaderHandle]vk.ShaderModule),
		imagesByID:     make(map[Image]vk.Image),
		viewsByID:      make(map[ImageView]vk.ImageView),
	}

	if err := d.createSwapchain(width, height, vk.SwapchainKHR{}); err != nil {
		d.device.DestroyCommandPool(d.commandPool)
		d.device.DestroySemaphore(d.timelineSem)
		d.device.Destroy()
		return nil, err
	}

	log.Info("vulkan device ready",
		zap.String("device", physical.GetProperties().DeviceName),
		zap.Uint32("queue_family", queueFamily))

	return d, nil
}

func selectPhysicalDevice(physicals []vk.PhysicalDevice, surface vk.SurfaceKHR, log *zap.Logger) (vk.PhysicalDevice, uint32, error) {
	for _, physical := range physicals {
		props := physical.GetProperties()
		name := props.DeviceName

		if vk.ApiVersionMajor(props.ApiVersion) == 1 && vk.ApiVersionMinor(props.ApiVersion) < 3 {
			log.Debug("skipping device: API version below 1.3", zap.String("device", name))
			continue
		}

		exts, err := physical.EnumerateExtensionProperties()
		if err != nil {
			log.Debug("skipping device: extension query failed", zap.String("device", name), zap.Error(err))
			continue
		}
		missing := missingExtensions(exts, requiredDeviceExtensions)
		if len(missing) > 0 {
			log.Debug("skipping device: missing extensions",
				zap.String("device", name), zap.Strings("missing", missing))
			continue
		}

		family, ok := findQueueFamily(physical, surface)
		if !ok {
			log.Debug("skipping device: no graphics+compute queue family with present support",
				zap.String("device", name))
			continue
		}

		return physical, family, nil
	}

	return vk.PhysicalDevice{}, 0, errors.New("no suitable physical device found")
}

func missingExtensions(available, required []string) []string {
	have := make(map[string]bool, len(available))
	for _, ext := range available {
		have[ext] = true
	}

	var missing []string
	for _, ext := range required {
		if !have[ext] {
			missing = append(missing, ext)
		}
	}
	return missing
}

func findQueueFamily(physical vk.PhysicalDevice, surface vk.SurfaceKHR) (uint32, bool) {
	wanted := vk.QUEUE_GRAPHICS_BIT | vk.QUEUE_COMPUTE_BIT
	for i, family := range physical.GetQueueFamilyProperties() {
		if family.QueueFlags&wanted != wanted {
			continue
		}
		supported, err := physical.GetSurfaceSupportKHR(uint32(i), surface)
		if err != nil || !supported {
			continue
		}
		return uint32(i), true
	}
	return 0, false
}

func (d *VulkanDevice) createSwapchain(width, height uint32, old vk.SwapchainKHR) error {
	support, err := d.physical.QuerySwapchainSupport(d.surface)
	if err != nil {
		return errors.Wrap(err, "query swapchain support")
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return errors.New("surface reports no formats or present modes")
	}

	surfaceFormat := vk.ChooseSurfaceFormat(support.Formats)
	presentMode := vk.ChoosePresentMode(support.PresentModes)
	extent := vk.ChooseSwapExtent(support.Capabilities, width, height)
	imageCount := vk.ChooseImageCount(support.Capabilities)

	swapchain, err := d.device.CreateSwapchainKHR(&vk.SwapchainCreateInfoKHR{
		Surface:          d.surface,
		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.IMAGE_USAGE_COLOR_ATTACHMENT_BIT | vk.IMAGE_USAGE_TRANSFER_DST_BIT,
		ImageSharingMode: vk.SHARING_MODE_EXCLUSIVE,
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.COMPOSITE_ALPHA_OPAQUE_BIT_KHR,
		PresentMode:      presentMode,
		Clipped:          true,
		OldSwapchain:     old,
	})
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}

	images, err := d.device.GetSwapchainImagesKHR(swapchain)
	if err != nil {
		d.device.DestroySwapchainKHR(swapchain)
		return errors.Wrap(err, "get swapchain images")
	}

	views, err := vk.CreateSwapchainImageViews(d.device, images, surfaceFormat.Format)
	if err != nil {
		d.device.DestroySwapchainKHR(swapchain)
		return errors.Wrap(err, "create swapchain image views")
	}

	d.swapchain = swapchain
	d.swapchainFormat = surfaceFormat.Format
	d.extent = extent
	d.images = images
	d.views = views

	d.mu.Lock()
	d.imageIDs = make([]Image, len(images))
	d.viewIDs = make([]ImageView, len(views))
	for i := range images {
		d.imageIDs[i] = Image(d.mintLocked())
		d.viewIDs[i] = ImageView(d.mintLocked())
		d.imagesByID[d.imageIDs[i]] = images[i]
		d.viewsByID[d.viewIDs[i]] = views[i]
	}
	d.mu.Unlock()

	return nil
}

func (d *VulkanDevice) mintLocked() uint64 {
	d.nextID++
	return d.nextID
}

func (d *VulkanDevice) mint() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mintLocked()
}

// softResult maps the binding's soft VkResult values onto the package's
// sentinel errors.
func softResult(err error) error {
	res, ok := err.(vk.Result)
	if !ok {
		return err
	}
	switch res {
	case vk.NOT_READY, vk.TIMEOUT:
		return ErrNotReady
	case vk.OUT_OF_DATE:
		return ErrOutOfDate
	default:
		return err
	}
}

func (d *VulkanDevice) TimelineCompleted() (uint64, error) {
	return d.device.GetSemaphoreCounterValue(d.timelineSem)
}

func (d *VulkanDevice) CreateSemaphore() (Semaphore, error) {
	sem, err := d.device.CreateSemaphore(&vk.SemaphoreCreateInfo{})
	if err != nil {
		return 0, err
	}
	id := Semaphore(d.mint())
	d.mu.Lock()
	d.semaphores[id] = sem
	d.mu.Unlock()
	return id, nil
}

func (d *VulkanDevice) DestroySemaphore(id Semaphore) {
	d.mu.Lock()
	sem, ok := d.semaphores[id]
	delete(d.semaphores, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroySemaphore(sem)
	}
}

func (d *VulkanDevice) CreateFence(signaled bool) (Fence, error) {
	info := vk.FenceCreateInfo{}
	if signaled {
		info.Flags = vk.FENCE_CREATE_SIGNALED_BIT
	}
	fence, err := d.device.CreateFence(&info)
	if err != nil {
		return 0, err
	}
	id := Fence(d.mint())
	d.mu.Lock()
	d.fences[id] = fence
	d.mu.Unlock()
	return id, nil
}

func (d *VulkanDevice) DestroyFence(id Fence) {
	d.mu.Lock()
	fence, ok := d.fences[id]
	delete(d.fences, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyFence(fence)
	}
}

func (d *VulkanDevice) lookupFences(ids []Fence) []vk.Fence {
	d.mu.Lock()
	defer d.mu.Unlock()
	fences := make([]vk.Fence, len(ids))
	for i, id := range ids {
		fences[i] = d.fences[id]
	}
	return fences
}

func (d *VulkanDevice) FenceSignaled(id Fence) (bool, error) {
	return d.device.WaitForFences(d.lookupFences([]Fence{id}), true, 0)
}

func (d *VulkanDevice) WaitFences(ids []Fence) error {
	_, err := d.device.WaitForFences(d.lookupFences(ids), true, math.MaxUint64)
	return err
}

func (d *VulkanDevice) ResetFences(ids []Fence) error {
	return d.device.ResetFences(d.lookupFences(ids))
}

func (d *VulkanDevice) CreateCommandBuffer() (CommandBuffer, error) {
	buffers, err := d.device.AllocateCommandBuffers(&vk.CommandBufferAllocateInfo{
		CommandPool:        d.commandPool,
		Level:              vk.COMMAND_BUFFER_LEVEL_PRIMARY,
		CommandBufferCount: 1,
	})
	if err != nil {
		return 0, err
	}
	id := CommandBuffer(d.mint())
	d.mu.Lock()
	d.commandBuffers[id] = buffers[0]
	d.mu.Unlock()
	return id, nil
}

func (d *VulkanDevice) commandBuffer(id CommandBuffer) vk.CommandBuffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commandBuffers[id]
}

// RealCommandBuffer returns the Vulkan command buffer behind a handle so
// application render callbacks can record into it.
func (d *VulkanDevice) RealCommandBuffer(id CommandBuffer) vk.CommandBuffer {
	return d.commandBuffer(id)
}

// RealImageView returns the Vulkan image view behind a handle.
func (d *VulkanDevice) RealImageView(id ImageView) vk.ImageView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewsByID[id]
}

// RealImage returns the Vulkan image behind a handle.
func (d *VulkanDevice) RealImage(id Image) vk.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.imagesByID[id]
}

func (d *VulkanDevice) ResetCommandBuffer(id CommandBuffer) error {
	return d.commandBuffer(id).Reset(0)
}

func (d *VulkanDevice) BeginCommandBuffer(id CommandBuffer) error {
	return d.commandBuffer(id).Begin(&vk.CommandBufferBeginInfo{
		Flags: vk.COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT,
	})
}

func (d *VulkanDevice) EndCommandBuffer(id CommandBuffer) error {
	return d.commandBuffer(id).End()
}

func vulkanizeLayout(layout ImageLayout) vk.ImageLayout {
	switch layout {
	case LayoutColorAttachment:
		return vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
	case LayoutTransferDst:
		return vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL
	case LayoutPresentSrc:
		return vk.IMAGE_LAYOUT_PRESENT_SRC_KHR
	default:
		return vk.IMAGE_LAYOUT_UNDEFINED
	}
}

func vulkanizeStage(stage StageMask) vk.PipelineStageFlags2 {
	switch stage {
	case StageColorAttachmentOutput:
		return vk.PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT
	case StageAllCommands:
		return vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT
	default:
		return vk.PIPELINE_STAGE_2_NONE
	}
}

func (d *VulkanDevice) TransitionImage(cb CommandBuffer, image Image, oldLayout, newLayout ImageLayout) {
	d.commandBuffer(cb).PipelineBarrier2([]vk.ImageMemoryBarrier2{{
		SrcStageMask:        vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT,
		SrcAccessMask:       vk.ACCESS_2_MEMORY_WRITE_BIT,
		DstStageMask:        vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT,
		DstAccessMask:       vk.ACCESS_2_MEMORY_READ_BIT | vk.ACCESS_2_MEMORY_WRITE_BIT,
		OldLayout:           vulkanizeLayout(oldLayout),
		NewLayout:           vulkanizeLayout(newLayout),
		SrcQueueFamilyIndex: vk.QUEUE_FAMILY_IGNORED,
		DstQueueFamilyIndex: vk.QUEUE_FAMILY_IGNORED,
		Image:               d.RealImage(image),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.IMAGE_ASPECT_COLOR_BIT,
			LevelCount: vk.REMAINING_MIP_LEVELS,
			LayerCount: vk.REMAINING_ARRAY_LAYERS,
		},
	}})
}

func (d *VulkanDevice) Acquire(sem Semaphore) (uint32, bool, error) {
	d.mu.Lock()
	vkSem := d.semaphores[sem]
	d.mu.Unlock()

	index, suboptimal, err := d.device.AcquireNextImageKHR(d.swapchain, 0, vkSem, vk.Fence{})
	if err != nil {
		return 0, false, softResult(err)
	}
	return index, suboptimal, nil
}

func (d *VulkanDevice) Present(imageIndex uint32, sem Semaphore, fence Fence) (bool, error) {
	d.mu.Lock()
	vkSem := d.semaphores[sem]
	vkFence := d.fences[fence]
	d.mu.Unlock()

	suboptimal, err := d.queue.PresentKHR(&vk.PresentInfoKHR{
		WaitSemaphores: []vk.Semaphore{vkSem},
		Swapchains:     []vk.SwapchainKHR{d.swapchain},
		ImageIndices:   []uint32{imageIndex},
		Fences:         []vk.Fence{vkFence},
	})
	if err != nil {
		return false, softResult(err)
	}
	return suboptimal, nil
}

func (d *VulkanDevice) SwapchainImage(imageIndex uint32) (Image, ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.imageIDs[imageIndex], d.viewIDs[imageIndex]
}

func (d *VulkanDevice) SwapchainExtent() Extent {
	return Extent{Width: d.extent.Width, Height: d.extent.Height}
}

func (d *VulkanDevice) SurfaceCapabilities() (SurfaceCapabilities, error) {
	caps, err := d.physical.GetSurfaceCapabilitiesKHR(d.surface)
	if err != nil {
		return SurfaceCapabilities{}, err
	}
	return SurfaceCapabilities{
		MinExtent: Extent{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		MaxExtent: Extent{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
	}, nil
}

func (d *VulkanDevice) RecreateSwapchain(width, height uint32) (Extent, error) {
	old := d.swapchain
	oldViews := d.views

	d.mu.Lock()
	for i := range d.imageIDs {
		delete(d.imagesByID, d.imageIDs[i])
		delete(d.viewsByID, d.viewIDs[i])
	}
	d.mu.Unlock()

	// Views belong to the old swapchain; the new one chains off it so
	// the presentation engine can hand over cleanly.
	for _, view := range oldViews {
		d.device.DestroyImageView(view)
	}

	if err := d.createSwapchain(width, height, old); err != nil {
		return Extent{}, err
	}

	d.device.DestroySwapchainKHR(old)

	return d.SwapchainExtent(), nil
}

func (d *VulkanDevice) semaphoreInfos(ops []SemaphoreOp) []vk.SemaphoreSubmitInfo {
	if len(ops) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	infos := make([]vk.SemaphoreSubmitInfo, len(ops))
	for i, op := range ops {
		infos[i] = vk.SemaphoreSubmitInfo{
			Semaphore: d.semaphores[op.Semaphore],
			Value:     op.Value,
			StageMask: vulkanizeStage(op.Stage),
		}
	}
	return infos
}

func (d *VulkanDevice) Submit(sub Submission) error {
	waits := d.semaphoreInfos(sub.Waits)
	signals := d.semaphoreInfos(sub.Signals)

	if sub.TimelineSignal != 0 {
		signals = append(signals, vk.SemaphoreSubmitInfo{
			Semaphore: d.timelineSem,
			Value:     sub.TimelineSignal,
			StageMask: vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT,
		})
	}

	buffers := make([]vk.CommandBuffer, len(sub.CommandBuffers))
	for i, id := range sub.CommandBuffers {
		buffers[i] = d.commandBuffer(id)
	}

	var fence vk.Fence
	if sub.Fence != 0 {
		d.mu.Lock()
		fence = d.fences[sub.Fence]
		d.mu.Unlock()
	}

	return d.queue.Submit2([]vk.SubmitInfo2{{
		WaitSemaphoreInfos:   waits,
		CommandBuffers:       buffers,
		SignalSemaphoreInfos: signals,
	}}, fence)
}

func (d *VulkanDevice) CreateBuffer(spec BufferSpec) (BufferInfo, error) {
	buffer, err := d.device.CreateBuffer(&vk.BufferCreateInfo{
		Size:        spec.Size,
		Usage:       vulkanizeBufferUsage(spec.Usage),
		SharingMode: vk.SHARING_MODE_EXCLUSIVE,
	})
	if err != nil {
		return BufferInfo{}, err
	}

	dedicated := spec.Dedicated || d.device.PrefersDedicatedAllocation(buffer)

	alloc, err := d.alloc.Allocate(allocationRequest{
		Requirements:  d.device.GetBufferMemoryRequirements(buffer),
		HostVisible:   spec.HostVisible,
		DeviceAddress: spec.Usage&UsageDeviceAddress != 0,
		Dedicated:     dedicated,
		Buffer:        buffer,
	})
	if err != nil {
		d.device.DestroyBuffer(buffer)
		return BufferInfo{}, err
	}

	if err := d.device.BindBufferMemory(buffer, alloc.memory, 0); err != nil {
		d.alloc.Free(alloc)
		d.device.DestroyBuffer(buffer)
		return BufferInfo{}, err
	}

	info := BufferInfo{Size: spec.Size}
	if alloc.mapped != nil {
		info.Mapped = unsafe.Slice((*byte)(alloc.mapped), spec.Size)
	}
	if spec.Usage&UsageDeviceAddress != 0 {
		info.Address = d.device.GetBufferDeviceAddress(buffer)
	}

	id := BufferHandle(d.mint())
	info.Handle = id
	d.mu.Lock()
	d.buffers[id] = &vulkanBuffer{buffer: buffer, alloc: alloc}
	d.mu.Unlock()

	return info, nil
}

func vulkanizeBufferUsage(usage BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlags
	if usage&UsageTransferSrc != 0 {
		flags |= vk.BUFFER_USAGE_TRANSFER_SRC_BIT
	}
	if usage&UsageTransferDst != 0 {
		flags |= vk.BUFFER_USAGE_TRANSFER_DST_BIT
	}
	if usage&UsageUniform != 0 {
		flags |= vk.BUFFER_USAGE_UNIFORM_BUFFER_BIT
	}
	if usage&UsageStorage != 0 {
		flags |= vk.BUFFER_USAGE_STORAGE_BUFFER_BIT
	}
	if usage&UsageVertex != 0 {
		flags |= vk.BUFFER_USAGE_VERTEX_BUFFER_BIT
	}
	if usage&UsageIndex != 0 {
		flags |= vk.BUFFER_USAGE_INDEX_BUFFER_BIT
	}
	if usage&UsageDeviceAddress != 0 {
		flags |= vk.BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT
	}
	return flags
}

func (d *VulkanDevice) DestroyBuffer(id BufferHandle) {
	d.mu.Lock()
	buf, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if !ok {
		return
	}

	d.device.DestroyBuffer(buf.buffer)
	d.alloc.Free(buf.alloc)
}

func (d *VulkanDevice) CreateShader(code []byte) (ShaderHandle, error) {
	module, err := d.device.CreateShaderModule(&vk.ShaderModuleCreateInfo{Code: code})
	if err != nil {
		return 0, err
	}
	id := ShaderHandle(d.mint())
	d.mu.Lock()
	d.shaders[id] = module
	d.mu.Unlock()
	return id, nil
}

func (d *VulkanDevice) DestroyShader(id ShaderHandle) {
	d.mu.Lock()
	module, ok := d.shaders[id]
	delete(d.shaders, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyShaderModule(module)
	}
}

func (d *VulkanDevice) WaitIdle() error {
	return d.device.WaitIdle()
}

// Shutdown destroys everything the backend owns, in dependency order. The
// instance and surface belong to the caller.
func (d *VulkanDevice) Shutdown() {
	d.mu.Lock()
	semaphores := d.semaphores
	fences := d.fences
	buffers := d.buffers
	shaders := d.shaders
	d.semaphores = map[Semaphore]vk.Semaphore{}
	d.fences = map[Fence]vk.Fence{}
	d.buffers = map[BufferHandle]*vulkanBuffer{}
	d.shaders = map[ShaderHandle]vk.ShaderModule{}
	d.mu.Unlock()

	for _, sem := range semaphores {
		d.device.DestroySemaphore(sem)
	}
	for _, fence := range fences {
		d.device.DestroyFence(fence)
	}
	for _, buf := range buffers {
		d.device.DestroyBuffer(buf.buffer)
		d.alloc.Free(buf.alloc)
	}
	for _, module := range shaders {
		d.device.DestroyShaderModule(module)
	}

	for _, view := range d.views {
		d.device.DestroyImageView(view)
	}
	d.device.DestroySwapchainKHR(d.swapchain)

	d.device.DestroyCommandPool(d.commandPool)
	d.device.DestroySemaphore(d.timelineSem)
	d.alloc.Destroy()
	d.device.Destroy()
}
