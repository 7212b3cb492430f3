// types.go
package vkframe

/*
#include <vulkan/vulkan.h>
*/
import "C"

import "fmt"

type Result int32

const (
	SUCCESS               Result = 0
	NOT_READY             Result = 1
	TIMEOUT               Result = 2
	INCOMPLETE            Result = 5
	OUT_OF_HOST_MEMORY    Result = -1
	OUT_OF_DEVICE_MEMORY  Result = -2
	INITIALIZATION_FAILED Result = -3
	DEVICE_LOST           Result = -4
	MEMORY_MAP_FAILED     Result = -5
	LAYER_NOT_PRESENT     Result = -6
	EXTENSION_NOT_PRESENT Result = -7
	FEATURE_NOT_PRESENT   Result = -8
	INCOMPATIBLE_DRIVER   Result = -9
	TOO_MANY_OBJECTS      Result = -10
	FORMAT_NOT_SUPPORTED  Result = -11
	UNKNOWN               Result = -13
	SURFACE_LOST          Result = -1000000000
	NATIVE_WINDOW_IN_USE  Result = -1000000001
	SUBOPTIMAL            Result = 1000001003
	OUT_OF_DATE           Result = -1000001004
	VALIDATION_FAILED     Result = -1000011001
	FRAGMENTATION         Result = -1000161000
)

func (r Result) Error() string {
	switch r {
	case SUCCESS:
		return "SUCCESS"
	case NOT_READY:
		return "NOT READY"
	case TIMEOUT:
		return "TIMEOUT"
	case INCOMPLETE:
		return "INCOMPLETE"
	case OUT_OF_HOST_MEMORY:
		return "OUT OF HOST MEMORY"
	case OUT_OF_DEVICE_MEMORY:
		return "OUT OF DEVICE MEMORY"
	case INITIALIZATION_FAILED:
		return "INITIALIZATION FAILED"
	case DEVICE_LOST:
		return "DEVICE LOST"
	case MEMORY_MAP_FAILED:
		return "MEMORY MAP FAILED"
	case LAYER_NOT_PRESENT:
		return "LAYER NOT PRESENT"
	case EXTENSION_NOT_PRESENT:
		return "EXTENSION NOT PRESENT"
	case FEATURE_NOT_PRESENT:
		return "FEATURE NOT PRESENT"
	case INCOMPATIBLE_DRIVER:
		return "INCOMPATIBLE DRIVER"
	case TOO_MANY_OBJECTS:
		return "TOO MANY OBJECTS"
	case FORMAT_NOT_SUPPORTED:
		return "FORMAT NOT SUPPORTED"
	case UNKNOWN:
		return "UNKNOWN"
	case SURFACE_LOST:
		return "SURFACE LOST"
	case NATIVE_WINDOW_IN_USE:
		return "NATIVE WINDOW IN USE"
	case SUBOPTIMAL:
		return "SUBOPTIMAL"
	case OUT_OF_DATE:
		return "OUT OF DATE"
	case VALIDATION_FAILED:
		return "VALIDATION FAILED"
	case FRAGMENTATION:
		return "FRAGMENTATION"
	default:
		return fmt.Sprintf("VkResult(%d)", r)
	}
}

type Extent2D struct {
	Width  uint32
	Height uint32
}

type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

type Offset2D struct {
	X int32
	Y int32
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type Format int32

const (
	FORMAT_UNDEFINED      Format = C.VK_FORMAT_UNDEFINED
	FORMAT_B8G8R8A8_UNORM Format = C.VK_FORMAT_B8G8R8A8_UNORM
	FORMAT_B8G8R8A8_SRGB  Format = C.VK_FORMAT_B8G8R8A8_SRGB
	FORMAT_R8G8B8A8_UNORM Format = C.VK_FORMAT_R8G8B8A8_UNORM
	FORMAT_R8G8B8A8_SRGB  Format = C.VK_FORMAT_R8G8B8A8_SRGB
)

type ColorSpaceKHR int32

const (
	COLOR_SPACE_SRGB_NONLINEAR_KHR ColorSpaceKHR = C.VK_COLOR_SPACE_SRGB_NONLINEAR_KHR
)

type PresentModeKHR int32

const (
	PRESENT_MODE_IMMEDIATE_KHR PresentModeKHR = C.VK_PRESENT_MODE_IMMEDIATE_KHR
	PRESENT_MODE_MAILBOX_KHR   PresentModeKHR = C.VK_PRESENT_MODE_MAILBOX_KHR
	PRESENT_MODE_FIFO_KHR      PresentModeKHR = C.VK_PRESENT_MODE_FIFO_KHR
)

type SurfaceTransformFlagsKHR uint32

const (
	SURFACE_TRANSFORM_IDENTITY_BIT_KHR SurfaceTransformFlagsKHR = C.VK_SURFACE_TRANSFORM_IDENTITY_BIT_KHR
)

type CompositeAlphaFlagsKHR uint32

const (
	COMPOSITE_ALPHA_OPAQUE_BIT_KHR CompositeAlphaFlagsKHR = C.VK_COMPOSITE_ALPHA_OPAQUE_BIT_KHR
)

type ImageUsageFlags uint32

const (
	IMAGE_USAGE_TRANSFER_DST_BIT     ImageUsageFlags = C.VK_IMAGE_USAGE_TRANSFER_DST_BIT
	IMAGE_USAGE_COLOR_ATTACHMENT_BIT ImageUsageFlags = C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT
)

type QueueFlags uint32

const (
	QUEUE_GRAPHICS_BIT QueueFlags = C.VK_QUEUE_GRAPHICS_BIT
	QUEUE_COMPUTE_BIT  QueueFlags = C.VK_QUEUE_COMPUTE_BIT
	QUEUE_TRANSFER_BIT QueueFlags = C.VK_QUEUE_TRANSFER_BIT
)

type SurfaceFormatKHR struct {
	Format     Format
	ColorSpace ColorSpaceKHR
}

type SurfaceCapabilitiesKHR struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent2D
	MinImageExtent          Extent2D
	MaxImageExtent          Extent2D
	MaxImageArrayLayers     uint32
	SupportedTransforms     SurfaceTransformFlagsKHR
	CurrentTransform        SurfaceTransformFlagsKHR
	SupportedCompositeAlpha CompositeAlphaFlagsKHR
	SupportedUsageFlags     ImageUsageFlags
}

type QueueFamilyProperties struct {
	QueueFlags         QueueFlags
	QueueCount         uint32
	TimestampValidBits uint32
}

const (
	QUEUE_FAMILY_IGNORED   = ^uint32(0)
	WHOLE_SIZE             = ^uint64(0)
	REMAINING_MIP_LEVELS   = ^uint32(0)
	REMAINING_ARRAY_LAYERS = ^uint32(0)
)
