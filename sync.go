// sync.go
package vkframe

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>

// The VK_PIPELINE_STAGE_2_* and VK_ACCESS_2_* values are static const
// variables in vulkan_core.h (C has no 64-bit enums), so their symbols are
// not visible to the Go linker. Re-export them as non-static globals.
const VkPipelineStageFlags2 goVK_PIPELINE_STAGE_2_NONE = VK_PIPELINE_STAGE_2_NONE;
const VkPipelineStageFlags2 goVK_PIPELINE_STAGE_2_TOP_OF_PIPE_BIT = VK_PIPELINE_STAGE_2_TOP_OF_PIPE_BIT;
const VkPipelineStageFlags2 goVK_PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT_BIT = VK_PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT_BIT;
const VkPipelineStageFlags2 goVK_PIPELINE_STAGE_2_ALL_COMMANDS_BIT = VK_PIPELINE_STAGE_2_ALL_COMMANDS_BIT;
const VkPipelineStageFlags2 goVK_PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT = VK_PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT;
const VkAccessFlags2 goVK_ACCESS_2_NONE = VK_ACCESS_2_NONE;
const VkAccessFlags2 goVK_ACCESS_2_MEMORY_READ_BIT = VK_ACCESS_2_MEMORY_READ_BIT;
const VkAccessFlags2 goVK_ACCESS_2_MEMORY_WRITE_BIT = VK_ACCESS_2_MEMORY_WRITE_BIT;
*/
import "C"
import "unsafe"

type Semaphore struct {
	handle C.VkSemaphore
}

type Fence struct {
	handle C.VkFence
}

type SemaphoreCreateInfo struct {
	Flags uint32
}

type FenceCreateInfo struct {
	Flags FenceCreateFlags
}

type FenceCreateFlags uint32

const (
	FENCE_CREATE_SIGNALED_BIT FenceCreateFlags = C.VK_FENCE_CREATE_SIGNALED_BIT
)

type PipelineStageFlags2 uint64

var (
	PIPELINE_STAGE_2_NONE                    = PipelineStageFlags2(C.goVK_PIPELINE_STAGE_2_NONE)
	PIPELINE_STAGE_2_TOP_OF_PIPE_BIT         = PipelineStageFlags2(C.goVK_PIPELINE_STAGE_2_TOP_OF_PIPE_BIT)
	PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT = PipelineStageFlags2(C.goVK_PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT_BIT)
	PIPELINE_STAGE_2_ALL_COMMANDS_BIT        = PipelineStageFlags2(C.goVK_PIPELINE_STAGE_2_ALL_COMMANDS_BIT)
	PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT      = PipelineStageFlags2(C.goVK_PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT)
)

type AccessFlags2 uint64

var (
	ACCESS_2_NONE             = AccessFlags2(C.goVK_ACCESS_2_NONE)
	ACCESS_2_MEMORY_READ_BIT  = AccessFlags2(C.goVK_ACCESS_2_MEMORY_READ_BIT)
	ACCESS_2_MEMORY_WRITE_BIT = AccessFlags2(C.goVK_ACCESS_2_MEMORY_WRITE_BIT)
)

// Semaphore
func (device Device) CreateSemaphore(createInfo *SemaphoreCreateInfo) (Semaphore, error) {
	cInfo := (*C.VkSemaphoreCreateInfo)(C.calloc(1, C.sizeof_VkSemaphoreCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO
	cInfo.pNext = nil
	cInfo.flags = C.VkSemaphoreCreateFlags(createInfo.Flags)

	var semaphore C.VkSemaphore
	result := C.vkCreateSemaphore(device.handle, cInfo, nil, &semaphore)

	if result != C.VK_SUCCESS {
		return Semaphore{}, Result(result)
	}

	return Semaphore{handle: semaphore}, nil
}

// CreateTimelineSemaphore creates a VK_SEMAPHORE_TYPE_TIMELINE semaphore
// whose counter starts at initialValue.
func (device Device) CreateTimelineSemaphore(initialValue uint64) (Semaphore, error) {
	cType := (*C.VkSemaphoreTypeCreateInfo)(C.calloc(1, C.sizeof_VkSemaphoreTypeCreateInfo))
	defer C.free(unsafe.Pointer(cType))

	cType.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_TYPE_CREATE_INFO
	cType.pNext = nil
	cType.semaphoreType = C.VK_SEMAPHORE_TYPE_TIMELINE
	cType.initialValue = C.uint64_t(initialValue)

	cInfo := (*C.VkSemaphoreCreateInfo)(C.calloc(1, C.sizeof_VkSemaphoreCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO
	cInfo.pNext = unsafe.Pointer(cType)
	cInfo.flags = 0

	var semaphore C.VkSemaphore
	result := C.vkCreateSemaphore(device.handle, cInfo, nil, &semaphore)

	if result != C.VK_SUCCESS {
		return Semaphore{}, Result(result)
	}

	return Semaphore{handle: semaphore}, nil
}

func (device Device) DestroySemaphore(semaphore Semaphore) {
	C.vkDestroySemaphore(device.handle, semaphore.handle, nil)
}

func (device Device) GetSemaphoreCounterValue(semaphore Semaphore) (uint64, error) {
	var value C.uint64_t
	result := C.vkGetSemaphoreCounterValue(device.handle, semaphore.handle, &value)

	if result != C.VK_SUCCESS {
		return 0, Result(result)
	}

	return uint64(value), nil
}

func (device Device) WaitSemaphores(semaphores []Semaphore, values []uint64, timeout uint64) (bool, error) {
	if len(semaphores) == 0 {
		return true, nil
	}

	cSemaphores := make([]C.VkSemaphore, len(semaphores))
	for i, sem := range semaphores {
		cSemaphores[i] = sem.handle
	}

	cValues := make([]C.uint64_t, len(values))
	for i, value := range values {
		cValues[i] = C.uint64_t(value)
	}

	cInfo := (*C.VkSemaphoreWaitInfo)(C.calloc(1, C.sizeof_VkSemaphoreWaitInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_WAIT_INFO
	cInfo.pNext = nil
	cInfo.flags = 0
	cInfo.semaphoreCount = C.uint32_t(len(cSemaphores))
	cInfo.pSemaphores = &cSemaphores[0]
	cInfo.pValues = &cValues[0]

	result := C.vkWaitSemaphores(device.handle, cInfo, C.uint64_t(timeout))

	if result == C.VK_TIMEOUT {
		return false, nil
	}
	if result != C.VK_SUCCESS {
		return false, Result(result)
	}

	return true, nil
}

// Fence
func (device Device) CreateFence(createInfo *FenceCreateInfo) (Fence, error) {
	cInfo := (*C.VkFenceCreateInfo)(C.calloc(1, C.sizeof_VkFenceCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_FENCE_CREATE_INFO
	cInfo.pNext = nil
	cInfo.flags = C.VkFenceCreateFlags(createInfo.Flags)

	var fence C.VkFence
	result := C.vkCreateFence(device.handle, cInfo, nil, &fence)

	if result != C.VK_SUCCESS {
		return Fence{}, Result(result)
	}

	return Fence{handle: fence}, nil
}

func (device Device) DestroyFence(fence Fence) {
	C.vkDestroyFence(device.handle, fence.handle, nil)
}

// WaitForFences reports whether the fences became signaled before the
// timeout elapsed. A zero timeout is a status poll.
func (device Device) WaitForFences(fences []Fence, waitAll bool, timeout uint64) (bool, error) {
	if len(fences) == 0 {
		return true, nil
	}

	cFences := make([]C.VkFence, len(fences))
	for i, fence := range fences {
		cFences[i] = fence.handle
	}

	var cWaitAll C.VkBool32
	if waitAll {
		cWaitAll = C.VK_TRUE
	} else {
		cWaitAll = C.VK_FALSE
	}

	result := C.vkWaitForFences(device.handle, C.uint32_t(len(cFences)), &cFences[0], cWaitAll, C.uint64_t(timeout))

	if result == C.VK_TIMEOUT {
		return false, nil
	}
	if result != C.VK_SUCCESS {
		return false, Result(result)
	}

	return true, nil
}

func (device Device) ResetFences(fences []Fence) error {
	if len(fences) == 0 {
		return nil
	}

	cFences := make([]C.VkFence, len(fences))
	for i, fence := range fences {
		cFences[i] = fence.handle
	}

	result := C.vkResetFences(device.handle, C.uint32_t(len(cFences)), &cFences[0])

	if result != C.VK_SUCCESS {
		return Result(result)
	}

	return nil
}

// Queue Operations (synchronization2)
type SemaphoreSubmitInfo struct {
	Semaphore Semaphore
	Value     uint64 // ignored for binary semaphores
	StageMask PipelineStageFlags2
}

type SubmitInfo2 struct {
	WaitSemaphoreInfos   []SemaphoreSubmitInfo
	CommandBuffers       []CommandBuffer
	SignalSemaphoreInfos []SemaphoreSubmitInfo
}

func vulkanizeSemaphoreInfos(infos []SemaphoreSubmitInfo, allocations *[]unsafe.Pointer) (*C.VkSemaphoreSubmitInfo, C.uint32_t) {
	if len(infos) == 0 {
		return nil, 0
	}

	cInfos := (*[1 << 28]C.VkSemaphoreSubmitInfo)(C.calloc(C.size_t(len(infos)), C.sizeof_VkSemaphoreSubmitInfo))[:len(infos):len(infos)]
	*allocations = append(*allocations, unsafe.Pointer(&cInfos[0]))

	for i, info := range infos {
		cInfos[i].sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_SUBMIT_INFO
		cInfos[i].pNext = nil
		cInfos[i].semaphore = info.Semaphore.handle
		cInfos[i].value = C.uint64_t(info.Value)
		cInfos[i].stageMask = C.VkPipelineStageFlags2(info.StageMask)
		cInfos[i].deviceIndex = 0
	}

	return &cInfos[0], C.uint32_t(len(infos))
}

func (queue Queue) Submit2(submits []SubmitInfo2, fence Fence) error {
	if len(submits) == 0 {
		return nil
	}

	cSubmits := (*[1 << 28]C.VkSubmitInfo2)(C.calloc(C.size_t(len(submits)), C.sizeof_VkSubmitInfo2))[:len(submits):len(submits)]
	defer C.free(unsafe.Pointer(&cSubmits[0]))

	// Track all C allocations for cleanup
	var allocations []unsafe.Pointer
	defer func() {
		for _, ptr := range allocations {
			C.free(ptr)
		}
	}()

	for i, submit := range submits {
		cSubmits[i].sType = C.VK_STRUCTURE_TYPE_SUBMIT_INFO_2
		cSubmits[i].pNext = nil
		cSubmits[i].flags = 0

		cSubmits[i].pWaitSemaphoreInfos, cSubmits[i].waitSemaphoreInfoCount = vulkanizeSemaphoreInfos(submit.WaitSemaphoreInfos, &allocations)
		cSubmits[i].pSignalSemaphoreInfos, cSubmits[i].signalSemaphoreInfoCount = vulkanizeSemaphoreInfos(submit.SignalSemaphoreInfos, &allocations)

		if len(submit.CommandBuffers) > 0 {
			cmdInfos := (*[1 << 28]C.VkCommandBufferSubmitInfo)(C.calloc(C.size_t(len(submit.CommandBuffers)), C.sizeof_VkCommandBufferSubmitInfo))[:len(submit.CommandBuffers):len(submit.CommandBuffers)]
			allocations = append(allocations, unsafe.Pointer(&cmdInfos[0]))

			for j, cmd := range submit.CommandBuffers {
				cmdInfos[j].sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_SUBMIT_INFO
				cmdInfos[j].pNext = nil
				cmdInfos[j].commandBuffer = cmd.handle
				cmdInfos[j].deviceMask = 0
			}

			cSubmits[i].commandBufferInfoCount = C.uint32_t(len(cmdInfos))
			cSubmits[i].pCommandBufferInfos = &cmdInfos[0]
		}
	}

	var cFence C.VkFence
	if fence.handle != nil {
		cFence = fence.handle
	}

	result := C.vkQueueSubmit2(queue.handle, C.uint32_t(len(cSubmits)), &cSubmits[0], cFence)

	if result != C.VK_SUCCESS {
		return Result(result)
	}

	return nil
}

func (queue Queue) WaitIdle() error {
	result := C.vkQueueWaitIdle(queue.handle)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

// Swapchain Present
type PresentInfoKHR struct {
	WaitSemaphores []Semaphore
	Swapchains     []SwapchainKHR
	ImageIndices   []uint32
	Fences         []Fence // VK_EXT_swapchain_maintenance1, one per swapchain
}

// PresentKHR reports (suboptimal, err). OUT_OF_DATE comes back as an error
// so the caller can distinguish it from the suboptimal case.
func (queue Queue) PresentKHR(presentInfo *PresentInfoKHR) (bool, error) {
	cInfo := (*C.VkPresentInfoKHR)(C.calloc(1, C.sizeof_VkPresentInfoKHR))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_PRESENT_INFO_KHR
	cInfo.pNext = nil

	var waitSemaphores []C.VkSemaphore
	if len(presentInfo.WaitSemaphores) > 0 {
		waitSemaphores = make([]C.VkSemaphore, len(presentInfo.WaitSemaphores))
		for i, sem := range presentInfo.WaitSemaphores {
			waitSemaphores[i] = sem.handle
		}
		cInfo.waitSemaphoreCount = C.uint32_t(len(waitSemaphores))
		cInfo.pWaitSemaphores = &waitSemaphores[0]
	}

	var swapchains []C.VkSwapchainKHR
	if len(presentInfo.Swapchains) > 0 {
		swapchains = make([]C.VkSwapchainKHR, len(presentInfo.Swapchains))
		for i, sc := range presentInfo.Swapchains {
			swapchains[i] = sc.handle
		}
		cInfo.swapchainCount = C.uint32_t(len(swapchains))
		cInfo.pSwapchains = &swapchains[0]
	}

	var imageIndices []C.uint32_t
	if len(presentInfo.ImageIndices) > 0 {
		imageIndices = make([]C.uint32_t, len(presentInfo.ImageIndices))
		for i, idx := range presentInfo.ImageIndices {
			imageIndices[i] = C.uint32_t(idx)
		}
		cInfo.pImageIndices = &imageIndices[0]
	}

	var cFenceInfo *C.VkSwapchainPresentFenceInfoEXT
	var presentFences []C.VkFence
	if len(presentInfo.Fences) > 0 {
		presentFences = make([]C.VkFence, len(presentInfo.Fences))
		for i, fence := range presentInfo.Fences {
			presentFences[i] = fence.handle
		}

		cFenceInfo = (*C.VkSwapchainPresentFenceInfoEXT)(C.calloc(1, C.sizeof_VkSwapchainPresentFenceInfoEXT))
		defer C.free(unsafe.Pointer(cFenceInfo))

		cFenceInfo.sType = C.VK_STRUCTURE_TYPE_SWAPCHAIN_PRESENT_FENCE_INFO_EXT
		cFenceInfo.pNext = nil
		cFenceInfo.swapchainCount = C.uint32_t(len(presentFences))
		cFenceInfo.pFences = &presentFences[0]

		cInfo.pNext = unsafe.Pointer(cFenceInfo)
	}

	cInfo.pResults = nil

	result := C.vkQueuePresentKHR(queue.handle, cInfo)

	if result == C.VK_SUBOPTIMAL_KHR {
		return true, nil
	}
	if result != C.VK_SUCCESS {
		return false, Result(result)
	}

	return false, nil
}

// Swapchain Image Acquisition
// Returns (imageIndex, suboptimal, err); NOT_READY, TIMEOUT and OUT_OF_DATE
// surface as Result errors.
func (device Device) AcquireNextImageKHR(swapchain SwapchainKHR, timeout uint64, semaphore Semaphore, fence Fence) (uint32, bool, error) {
	var imageIndex C.uint32_t

	var cSemaphore C.VkSemaphore
	if semaphore.handle != nil {
		cSemaphore = semaphore.handle
	}

	var cFence C.VkFence
	if fence.handle != nil {
		cFence = fence.handle
	}

	result := C.vkAcquireNextImageKHR(device.handle, swapchain.handle, C.uint64_t(timeout), cSemaphore, cFence, &imageIndex)

	if result == C.VK_SUBOPTIMAL_KHR {
		return uint32(imageIndex), true, nil
	}
	if result != C.VK_SUCCESS {
		return 0, false, Result(result)
	}

	return uint32(imageIndex), false, nil
}
