// allocator.go
package render

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	vk "github.com/gpukit/vkframe"
)

type allocationRequest struct {
	Requirements  vk.MemoryRequirements
	HostVisible   bool
	DeviceAddress bool
	Dedicated     bool
	// Buffer is set for dedicated allocations so the driver can tie the
	// memory to it.
	Buffer vk.Buffer
}

type allocation struct {
	memory vk.DeviceMemory
	size   uint64
	mapped unsafe.Pointer
}

// deviceAllocator is a one-allocation-per-resource memory facade. It
// picks a memory type, allocates, and keeps host-visible memory
// persistently mapped. No sub-allocation; every resource in this
// substrate is long-lived enough that driver allocations are fine.
type deviceAllocator struct {
	device   vk.Device
	memProps vk.PhysicalDeviceMemoryProperties
	log      *zap.Logger

	mu        sync.Mutex
	liveCount int
	liveBytes uint64
}

func newDeviceAllocator(device vk.Device, physical vk.PhysicalDevice, log *zap.Logger) *deviceAllocator {
	return &deviceAllocator{
		device:   device,
		memProps: physical.GetMemoryProperties(),
		log:      log,
	}
}

func (a *deviceAllocator) Allocate(req allocationRequest) (allocation, error) {
	props := vk.MEMORY_PROPERTY_DEVICE_LOCAL_BIT
	if req.HostVisible {
		props = vk.MEMORY_PROPERTY_HOST_VISIBLE_BIT | vk.MEMORY_PROPERTY_HOST_COHERENT_BIT
	}

	typeIndex, found := vk.FindMemoryType(a.memProps, req.Requirements.MemoryTypeBits, props)
	if !found {
		return allocation{}, errors.Errorf("no memory type matches filter %#x with properties %#x",
			req.Requirements.MemoryTypeBits, props)
	}

	info := vk.MemoryAllocateInfo{
		AllocationSize:  req.Requirements.Size,
		MemoryTypeIndex: typeIndex,
	}
	if req.DeviceAddress {
		info.Flags |= vk.MEMORY_ALLOCATE_DEVICE_ADDRESS_BIT
	}
	if req.Dedicated {
		info.DedicatedBuffer = req.Buffer
	}

	memory, err := a.device.AllocateMemory(&info)
	if err != nil {
		return allocation{}, errors.Wrap(err, "allocate device memory")
	}

	alloc := allocation{memory: memory, size: req.Requirements.Size}

	if req.HostVisible {
		mapped, err := a.device.MapMemory(memory, 0, vk.WHOLE_SIZE)
		if err != nil {
			a.device.FreeMemory(memory)
			return allocation{}, errors.Wrap(err, "map device memory")
		}
		alloc.mapped = mapped
	}

	a.mu.Lock()
	a.liveCount++
	a.liveBytes += alloc.size
	a.mu.Unlock()

	return alloc, nil
}

func (a *deviceAllocator) Free(alloc allocation) {
	if alloc.mapped != nil {
		a.device.UnmapMemory(alloc.memory)
	}
	a.device.FreeMemory(alloc.memory)

	a.mu.Lock()
	a.liveCount--
	a.liveBytes -= alloc.size
	a.mu.Unlock()
}

func (a *deviceAllocator) Destroy() {
	a.mu.Lock()
	count, bytes := a.liveCount, a.liveBytes
	a.mu.Unlock()

	if count != 0 {
		a.log.Warn("allocator destroyed with live allocations",
			zap.Int("count", count),
			zap.Uint64("bytes", bytes))
	}
}
