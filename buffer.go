// buffer.go
package vkframe

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import "unsafe"

type Buffer struct {
	handle C.VkBuffer
}

type DeviceMemory struct {
	handle C.VkDeviceMemory
}

type BufferCreateInfo struct {
	Size        uint64
	Usage       BufferUsageFlags
	SharingMode SharingMode
}

type BufferUsageFlags uint32

const (
	BUFFER_USAGE_TRANSFER_SRC_BIT          BufferUsageFlags = C.VK_BUFFER_USAGE_TRANSFER_SRC_BIT
	BUFFER_USAGE_TRANSFER_DST_BIT          BufferUsageFlags = C.VK_BUFFER_USAGE_TRANSFER_DST_BIT
	BUFFER_USAGE_UNIFORM_BUFFER_BIT        BufferUsageFlags = C.VK_BUFFER_USAGE_UNIFORM_BUFFER_BIT
	BUFFER_USAGE_STORAGE_BUFFER_BIT        BufferUsageFlags = C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT
	BUFFER_USAGE_VERTEX_BUFFER_BIT         BufferUsageFlags = C.VK_BUFFER_USAGE_VERTEX_BUFFER_BIT
	BUFFER_USAGE_INDEX_BUFFER_BIT          BufferUsageFlags = C.VK_BUFFER_USAGE_INDEX_BUFFER_BIT
	BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT BufferUsageFlags = C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT
)

type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

type MemoryPropertyFlags uint32

const (
	MEMORY_PROPERTY_DEVICE_LOCAL_BIT  MemoryPropertyFlags = C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT
	MEMORY_PROPERTY_HOST_VISIBLE_BIT  MemoryPropertyFlags = C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT
	MEMORY_PROPERTY_HOST_COHERENT_BIT MemoryPropertyFlags = C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT
)

type MemoryAllocateFlags uint32

const (
	MEMORY_ALLOCATE_DEVICE_ADDRESS_BIT MemoryAllocateFlags = C.VK_MEMORY_ALLOCATE_DEVICE_ADDRESS_BIT
)

type MemoryAllocateInfo struct {
	AllocationSize  uint64
	MemoryTypeIndex uint32
	Flags           MemoryAllocateFlags
	DedicatedBuffer Buffer // dedicated allocation when non-zero
}

func (device Device) CreateBuffer(createInfo *BufferCreateInfo) (Buffer, error) {
	cInfo := (*C.VkBufferCreateInfo)(C.calloc(1, C.sizeof_VkBufferCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO
	cInfo.pNext = nil
	cInfo.flags = 0
	cInfo.size = C.VkDeviceSize(createInfo.Size)
	cInfo.usage = C.VkBufferUsageFlags(createInfo.Usage)
	cInfo.sharingMode = C.VkSharingMode(createInfo.SharingMode)

	var buffer C.VkBuffer
	result := C.vkCreateBuffer(device.handle, cInfo, nil, &buffer)

	if result != C.VK_SUCCESS {
		return Buffer{}, Result(result)
	}

	return Buffer{handle: buffer}, nil
}

func (device Device) DestroyBuffer(buffer Buffer) {
	C.vkDestroyBuffer(device.handle, buffer.handle, nil)
}

func (device Device) GetBufferMemoryRequirements(buffer Buffer) MemoryRequirements {
	var memReqs C.VkMemoryRequirements
	C.vkGetBufferMemoryRequirements(device.handle, buffer.handle, &memReqs)

	return MemoryRequirements{
		Size:           uint64(memReqs.size),
		Alignment:      uint64(memReqs.alignment),
		MemoryTypeBits: uint32(memReqs.memoryTypeBits),
	}
}

// PrefersDedicatedAllocation queries VK_KHR_dedicated_allocation advice
// for the buffer.
func (device Device) PrefersDedicatedAllocation(buffer Buffer) bool {
	cBufInfo := (*C.VkBufferMemoryRequirementsInfo2)(C.calloc(1, C.sizeof_VkBufferMemoryRequirementsInfo2))
	defer C.free(unsafe.Pointer(cBufInfo))

	cBufInfo.sType = C.VK_STRUCTURE_TYPE_BUFFER_MEMORY_REQUIREMENTS_INFO_2
	cBufInfo.pNext = nil
	cBufInfo.buffer = buffer.handle

	cDedicated := (*C.VkMemoryDedicatedRequirements)(C.calloc(1, C.sizeof_VkMemoryDedicatedRequirements))
	defer C.free(unsafe.Pointer(cDedicated))

	cDedicated.sType = C.VK_STRUCTURE_TYPE_MEMORY_DEDICATED_REQUIREMENTS
	cDedicated.pNext = nil

	cReqs := (*C.VkMemoryRequirements2)(C.calloc(1, C.sizeof_VkMemoryRequirements2))
	defer C.free(unsafe.Pointer(cReqs))

	cReqs.sType = C.VK_STRUCTURE_TYPE_MEMORY_REQUIREMENTS_2
	cReqs.pNext = unsafe.Pointer(cDedicated)

	C.vkGetBufferMemoryRequirements2(device.handle, cBufInfo, cReqs)

	return cDedicated.prefersDedicatedAllocation == C.VK_TRUE ||
		cDedicated.requiresDedicatedAllocation == C.VK_TRUE
}

func (device Device) AllocateMemory(allocInfo *MemoryAllocateInfo) (DeviceMemory, error) {
	cInfo := (*C.VkMemoryAllocateInfo)(C.calloc(1, C.sizeof_VkMemoryAllocateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO
	cInfo.pNext = nil
	cInfo.allocationSize = C.VkDeviceSize(allocInfo.AllocationSize)
	cInfo.memoryTypeIndex = C.uint32_t(allocInfo.MemoryTypeIndex)

	var pNext unsafe.Pointer = nil

	var cDedicated *C.VkMemoryDedicatedAllocateInfo
	if allocInfo.DedicatedBuffer.handle != nil {
		cDedicated = (*C.VkMemoryDedicatedAllocateInfo)(C.calloc(1, C.sizeof_VkMemoryDedicatedAllocateInfo))
		defer C.free(unsafe.Pointer(cDedicated))

		cDedicated.sType = C.VK_STRUCTURE_TYPE_MEMORY_DEDICATED_ALLOCATE_INFO
		cDedicated.pNext = pNext
		cDedicated.image = nil
		cDedicated.buffer = allocInfo.DedicatedBuffer.handle
		pNext = unsafe.Pointer(cDedicated)
	}

	var cFlags *C.VkMemoryAllocateFlagsInfo
	if allocInfo.Flags != 0 {
		cFlags = (*C.VkMemoryAllocateFlagsInfo)(C.calloc(1, C.sizeof_VkMemoryAllocateFlagsInfo))
		defer C.free(unsafe.Pointer(cFlags))

		cFlags.sType = C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_FLAGS_INFO
		cFlags.pNext = pNext
		cFlags.flags = C.VkMemoryAllocateFlags(allocInfo.Flags)
		cFlags.deviceMask = 0
		pNext = unsafe.Pointer(cFlags)
	}

	cInfo.pNext = pNext

	var memory C.VkDeviceMemory
	result := C.vkAllocateMemory(device.handle, cInfo, nil, &memory)

	if result != C.VK_SUCCESS {
		return DeviceMemory{}, Result(result)
	}

	return DeviceMemory{handle: memory}, nil
}

func (device Device) FreeMemory(memory DeviceMemory) {
	C.vkFreeMemory(device.handle, memory.handle, nil)
}

func (device Device) BindBufferMemory(buffer Buffer, memory DeviceMemory, offset uint64) error {
	result := C.vkBindBufferMemory(device.handle, buffer.handle, memory.handle, C.VkDeviceSize(offset))
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

func (device Device) MapMemory(memory DeviceMemory, offset, size uint64) (unsafe.Pointer, error) {
	var pData unsafe.Pointer
	result := C.vkMapMemory(device.handle, memory.handle, C.VkDeviceSize(offset), C.VkDeviceSize(size), 0, &pData)

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	return pData, nil
}

func (device Device) UnmapMemory(memory DeviceMemory) {
	C.vkUnmapMemory(device.handle, memory.handle)
}

// GetBufferDeviceAddress requires the buffer to have been created with
// BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT.
func (device Device) GetBufferDeviceAddress(buffer Buffer) uint64 {
	cInfo := (*C.VkBufferDeviceAddressInfo)(C.calloc(1, C.sizeof_VkBufferDeviceAddressInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_BUFFER_DEVICE_ADDRESS_INFO
	cInfo.pNext = nil
	cInfo.buffer = buffer.handle

	return uint64(C.vkGetBufferDeviceAddress(device.handle, cInfo))
}

// Memory type finding helper
type PhysicalDeviceMemoryProperties struct {
	MemoryTypeCount uint32
	MemoryTypes     [32]MemoryType
	MemoryHeapCount uint32
	MemoryHeaps     [16]MemoryHeap
}

type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     uint32
}

type MemoryHeap struct {
	Size  uint64
	Flags uint32
}

func (physicalDevice PhysicalDevice) GetMemoryProperties() PhysicalDeviceMemoryProperties {
	var props C.VkPhysicalDeviceMemoryProperties
	C.vkGetPhysicalDeviceMemoryProperties(physicalDevice.handle, &props)

	result := PhysicalDeviceMemoryProperties{
		MemoryTypeCount: uint32(props.memoryTypeCount),
		MemoryHeapCount: uint32(props.memoryHeapCount),
	}

	for i := uint32(0); i < result.MemoryTypeCount; i++ {
		result.MemoryTypes[i] = MemoryType{
			PropertyFlags: MemoryPropertyFlags(props.memoryTypes[i].propertyFlags),
			HeapIndex:     uint32(props.memoryTypes[i].heapIndex),
		}
	}

	for i := uint32(0); i < result.MemoryHeapCount; i++ {
		result.MemoryHeaps[i] = MemoryHeap{
			Size:  uint64(props.memoryHeaps[i].size),
			Flags: uint32(props.memoryHeaps[i].flags),
		}
	}

	return result
}

// Helper to find suitable memory type
func FindMemoryType(memProperties PhysicalDeviceMemoryProperties, typeFilter uint32, properties MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < memProperties.MemoryTypeCount; i++ {
		if (typeFilter&(1<<i)) != 0 && (memProperties.MemoryTypes[i].PropertyFlags&properties) == properties {
			return i, true
		}
	}
	return 0, false
}
