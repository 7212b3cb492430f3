// image.go
package vkframe

/*
#include <vulkan/vulkan.h>
*/
import "C"

type Image struct {
	handle C.VkImage
}

type ImageView struct {
	handle C.VkImageView
}

type ImageAspectFlags uint32

const (
	IMAGE_ASPECT_COLOR_BIT ImageAspectFlags = C.VK_IMAGE_ASPECT_COLOR_BIT
	IMAGE_ASPECT_DEPTH_BIT ImageAspectFlags = C.VK_IMAGE_ASPECT_DEPTH_BIT
)

type ImageSubresourceRange struct {
	AspectMask     ImageAspectFlags
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

type ImageViewType int32

const (
	IMAGE_VIEW_TYPE_1D ImageViewType = C.VK_IMAGE_VIEW_TYPE_1D
	IMAGE_VIEW_TYPE_2D ImageViewType = C.VK_IMAGE_VIEW_TYPE_2D
	IMAGE_VIEW_TYPE_3D ImageViewType = C.VK_IMAGE_VIEW_TYPE_3D
)

type ComponentSwizzle int32

const (
	COMPONENT_SWIZZLE_IDENTITY ComponentSwizzle = C.VK_COMPONENT_SWIZZLE_IDENTITY
)

type ComponentMapping struct {
	R ComponentSwizzle
	G ComponentSwizzle
	B ComponentSwizzle
	A ComponentSwizzle
}

type ImageViewCreateInfo struct {
	Image            Image
	ViewType         ImageViewType
	Format           Format
	Components       ComponentMapping
	SubresourceRange ImageSubresourceRange
}
