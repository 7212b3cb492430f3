// command.go
package vkframe

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type CommandPool struct {
	handle C.VkCommandPool
}

type CommandBuffer struct {
	handle C.VkCommandBuffer
}

type CommandPoolCreateInfo struct {
	Flags            CommandPoolCreateFlags
	QueueFamilyIndex uint32
}

type CommandPoolCreateFlags uint32

const (
	COMMAND_POOL_CREATE_TRANSIENT_BIT            CommandPoolCreateFlags = C.VK_COMMAND_POOL_CREATE_TRANSIENT_BIT
	COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT CommandPoolCreateFlags = C.VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT
)

type CommandBufferAllocateInfo struct {
	CommandPool        CommandPool
	Level              CommandBufferLevel
	CommandBufferCount uint32
}

type CommandBufferLevel int32

const (
	COMMAND_BUFFER_LEVEL_PRIMARY   CommandBufferLevel = C.VK_COMMAND_BUFFER_LEVEL_PRIMARY
	COMMAND_BUFFER_LEVEL_SECONDARY CommandBufferLevel = C.VK_COMMAND_BUFFER_LEVEL_SECONDARY
)

type CommandBufferBeginInfo struct {
	Flags CommandBufferUsageFlags
}

type CommandBufferUsageFlags uint32

const (
	COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT CommandBufferUsageFlags = C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT
)

// Rendering structures for dynamic rendering
type RenderingInfo struct {
	RenderArea        Rect2D
	LayerCount        uint32
	ColorAttachments  []RenderingAttachmentInfo
	DepthAttachment   *RenderingAttachmentInfo
	StencilAttachment *RenderingAttachmentInfo
}

type RenderingAttachmentInfo struct {
	ImageView   ImageView
	ImageLayout ImageLayout
	LoadOp      AttachmentLoadOp
	StoreOp     AttachmentStoreOp
	ClearValue  ClearValue
}

type ImageLayout int32

const (
	IMAGE_LAYOUT_UNDEFINED                ImageLayout = C.VK_IMAGE_LAYOUT_UNDEFINED
	IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL ImageLayout = C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
	IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL     ImageLayout = C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL
	IMAGE_LAYOUT_PRESENT_SRC_KHR          ImageLayout = C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR
)

type AttachmentLoadOp int32
type AttachmentStoreOp int32

const (
	ATTACHMENT_LOAD_OP_LOAD      AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_LOAD
	ATTACHMENT_LOAD_OP_CLEAR     AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
	ATTACHMENT_LOAD_OP_DONT_CARE AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_DONT_CARE

	ATTACHMENT_STORE_OP_STORE     AttachmentStoreOp = C.VK_ATTACHMENT_STORE_OP_STORE
	ATTACHMENT_STORE_OP_DONT_CARE AttachmentStoreOp = C.VK_ATTACHMENT_STORE_OP_DONT_CARE
)

type ClearValue struct {
	Color ClearColorValue
}

type ClearColorValue struct {
	Float32 [4]float32
}

// Command Pool
func (device Device) CreateCommandPool(createInfo *CommandPoolCreateInfo) (CommandPool, error) {
	cInfo := (*C.VkCommandPoolCreateInfo)(C.calloc(1, C.sizeof_VkCommandPoolCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO
	cInfo.pNext = nil
	cInfo.flags = C.VkCommandPoolCreateFlags(createInfo.Flags)
	cInfo.queueFamilyIndex = C.uint32_t(createInfo.QueueFamilyIndex)

	var pool C.VkCommandPool
	result := C.vkCreateCommandPool(device.handle, cInfo, nil, &pool)

	if result != C.VK_SUCCESS {
		return CommandPool{}, Result(result)
	}

	return CommandPool{handle: pool}, nil
}

func (device Device) DestroyCommandPool(pool CommandPool) {
	C.vkDestroyCommandPool(device.handle, pool.handle, nil)
}

// Command Buffer Allocation
func (device Device) AllocateCommandBuffers(allocInfo *CommandBufferAllocateInfo) ([]CommandBuffer, error) {
	cInfo := (*C.VkCommandBufferAllocateInfo)(C.calloc(1, C.sizeof_VkCommandBufferAllocateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO
	cInfo.pNext = nil
	cInfo.commandPool = allocInfo.CommandPool.handle
	cInfo.level = C.VkCommandBufferLevel(allocInfo.Level)
	cInfo.commandBufferCount = C.uint32_t(allocInfo.CommandBufferCount)

	cBuffers := make([]C.VkCommandBuffer, allocInfo.CommandBufferCount)
	result := C.vkAllocateCommandBuffers(device.handle, cInfo, &cBuffers[0])

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	buffers := make([]CommandBuffer, allocInfo.CommandBufferCount)
	for i := range buffers {
		buffers[i] = CommandBuffer{handle: cBuffers[i]}
	}

	return buffers, nil
}

func (device Device) FreeCommandBuffers(pool CommandPool, buffers []CommandBuffer) {
	if len(buffers) == 0 {
		return
	}

	cBuffers := make([]C.VkCommandBuffer, len(buffers))
	for i, buf := range buffers {
		cBuffers[i] = buf.handle
	}

	C.vkFreeCommandBuffers(device.handle, pool.handle, C.uint32_t(len(cBuffers)), &cBuffers[0])
}

// Command Buffer Recording
func (cmd CommandBuffer) Begin(beginInfo *CommandBufferBeginInfo) error {
	cInfo := (*C.VkCommandBufferBeginInfo)(C.calloc(1, C.sizeof_VkCommandBufferBeginInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO
	cInfo.pNext = nil
	cInfo.flags = C.VkCommandBufferUsageFlags(beginInfo.Flags)
	cInfo.pInheritanceInfo = nil

	result := C.vkBeginCommandBuffer(cmd.handle, cInfo)
	if result != C.VK_SUCCESS {
		return Result(result)
	}

	return nil
}

func (cmd CommandBuffer) End() error {
	result := C.vkEndCommandBuffer(cmd.handle)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

func (cmd CommandBuffer) Reset(flags uint32) error {
	result := C.vkResetCommandBuffer(cmd.handle, C.VkCommandBufferResetFlags(flags))
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

// Dynamic Rendering Commands
type renderingData struct {
	cInfo            *C.VkRenderingInfo
	colorAttachments []C.VkRenderingAttachmentInfo
}

func (info *RenderingInfo) vulkanize() *renderingData {
	data := &renderingData{}

	data.cInfo = (*C.VkRenderingInfo)(C.calloc(1, C.sizeof_VkRenderingInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_RENDERING_INFO
	data.cInfo.pNext = nil
	data.cInfo.flags = 0
	data.cInfo.renderArea.offset.x = C.int32_t(info.RenderArea.Offset.X)
	data.cInfo.renderArea.offset.y = C.int32_t(info.RenderArea.Offset.Y)
	data.cInfo.renderArea.extent.width = C.uint32_t(info.RenderArea.Extent.Width)
	data.cInfo.renderArea.extent.height = C.uint32_t(info.RenderArea.Extent.Height)
	data.cInfo.layerCount = C.uint32_t(info.LayerCount)
	data.cInfo.viewMask = 0

	// Color attachments
	if len(info.ColorAttachments) > 0 {
		data.colorAttachments = make([]C.VkRenderingAttachmentInfo, len(info.ColorAttachments))
		for i, att := range info.ColorAttachments {
			data.colorAttachments[i].sType = C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO
			data.colorAttachments[i].pNext = nil
			data.colorAttachments[i].imageView = att.ImageView.handle
			data.colorAttachments[i].imageLayout = C.VkImageLayout(att.ImageLayout)
			data.colorAttachments[i].resolveMode = C.VK_RESOLVE_MODE_NONE
			data.colorAttachments[i].resolveImageView = nil
			data.colorAttachments[i].resolveImageLayout = C.VK_IMAGE_LAYOUT_UNDEFINED
			data.colorAttachments[i].loadOp = C.VkAttachmentLoadOp(att.LoadOp)
			data.colorAttachments[i].storeOp = C.VkAttachmentStoreOp(att.StoreOp)
			colorPtr := (*[4]C.float)(unsafe.Pointer(&data.colorAttachments[i].clearValue))
			colorPtr[0] = C.float(att.ClearValue.Color.Float32[0])
			colorPtr[1] = C.float(att.ClearValue.Color.Float32[1])
			colorPtr[2] = C.float(att.ClearValue.Color.Float32[2])
			colorPtr[3] = C.float(att.ClearValue.Color.Float32[3])
		}
		data.cInfo.colorAttachmentCount = C.uint32_t(len(data.colorAttachments))
		data.cInfo.pColorAttachments = &data.colorAttachments[0]
	}

	data.cInfo.pDepthAttachment = nil
	data.cInfo.pStencilAttachment = nil

	return data
}

func (data *renderingData) free() {
	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
}

func (cmd CommandBuffer) BeginRendering(renderingInfo *RenderingInfo) {
	data := renderingInfo.vulkanize()
	defer data.free()

	C.vkCmdBeginRendering(cmd.handle, data.cInfo)
}

func (cmd CommandBuffer) EndRendering() {
	C.vkCmdEndRendering(cmd.handle)
}

// Image Layout Transition (synchronization2)
type ImageMemoryBarrier2 struct {
	SrcStageMask        PipelineStageFlags2
	SrcAccessMask       AccessFlags2
	DstStageMask        PipelineStageFlags2
	DstAccessMask       AccessFlags2
	OldLayout           ImageLayout
	NewLayout           ImageLayout
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Image               Image
	SubresourceRange    ImageSubresourceRange
}

func (cmd CommandBuffer) PipelineBarrier2(imageMemoryBarriers []ImageMemoryBarrier2) {
	var cBarriers []C.VkImageMemoryBarrier2

	if len(imageMemoryBarriers) > 0 {
		cBarriers = make([]C.VkImageMemoryBarrier2, len(imageMemoryBarriers))
		for i, barrier := range imageMemoryBarriers {
			cBarriers[i].sType = C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER_2
			cBarriers[i].pNext = nil
			cBarriers[i].srcStageMask = C.VkPipelineStageFlags2(barrier.SrcStageMask)
			cBarriers[i].srcAccessMask = C.VkAccessFlags2(barrier.SrcAccessMask)
			cBarriers[i].dstStageMask = C.VkPipelineStageFlags2(barrier.DstStageMask)
			cBarriers[i].dstAccessMask = C.VkAccessFlags2(barrier.DstAccessMask)
			cBarriers[i].oldLayout = C.VkImageLayout(barrier.OldLayout)
			cBarriers[i].newLayout = C.VkImageLayout(barrier.NewLayout)
			cBarriers[i].srcQueueFamilyIndex = C.uint32_t(barrier.SrcQueueFamilyIndex)
			cBarriers[i].dstQueueFamilyIndex = C.uint32_t(barrier.DstQueueFamilyIndex)
			cBarriers[i].image = barrier.Image.handle
			cBarriers[i].subresourceRange.aspectMask = C.VkImageAspectFlags(barrier.SubresourceRange.AspectMask)
			cBarriers[i].subresourceRange.baseMipLevel = C.uint32_t(barrier.SubresourceRange.BaseMipLevel)
			cBarriers[i].subresourceRange.levelCount = C.uint32_t(barrier.SubresourceRange.LevelCount)
			cBarriers[i].subresourceRange.baseArrayLayer = C.uint32_t(barrier.SubresourceRange.BaseArrayLayer)
			cBarriers[i].subresourceRange.layerCount = C.uint32_t(barrier.SubresourceRange.LayerCount)
		}
	}

	cDep := (*C.VkDependencyInfo)(C.calloc(1, C.sizeof_VkDependencyInfo))
	defer C.free(unsafe.Pointer(cDep))

	cDep.sType = C.VK_STRUCTURE_TYPE_DEPENDENCY_INFO
	cDep.pNext = nil
	cDep.dependencyFlags = 0

	if len(cBarriers) > 0 {
		cDep.imageMemoryBarrierCount = C.uint32_t(len(cBarriers))
		cDep.pImageMemoryBarriers = &cBarriers[0]
	}

	C.vkCmdPipelineBarrier2(cmd.handle, cDep)
}

// BufferCopy describes a buffer copy region
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

func (cmd CommandBuffer) CmdCopyBuffer(srcBuffer Buffer, dstBuffer Buffer, regions []BufferCopy) {
	if len(regions) == 0 {
		return
	}

	cRegions := make([]C.VkBufferCopy, len(regions))
	for i, region := range regions {
		cRegions[i] = C.VkBufferCopy{
			srcOffset: C.VkDeviceSize(region.SrcOffset),
			dstOffset: C.VkDeviceSize(region.DstOffset),
			size:      C.VkDeviceSize(region.Size),
		}
	}

	C.vkCmdCopyBuffer(
		cmd.handle,
		srcBuffer.handle,
		dstBuffer.handle,
		C.uint32_t(len(cRegions)),
		&cRegions[0],
	)
}
