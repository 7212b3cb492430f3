// instance.go
package vkframe

// #cgo windows LDFLAGS: -LC:/VulkanSDK/1.4.328.1/Lib -lvulkan-1
// #cgo windows CFLAGS: -IC:/VulkanSDK/1.4.328.1/Include
// #cgo linux LDFLAGS: -L/usr/lib/x86_64-linux-gnu -lvulkan
// #cgo darwin LDFLAGS: -lvulkan
// #include <vulkan/vulkan.h>
// #include <stdlib.h>
import "C"
import "unsafe"

type Instance struct {
	handle C.VkInstance
}

type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	ApiVersion         uint32
}

type InstanceCreateInfo struct {
	ApplicationInfo       *ApplicationInfo
	EnabledLayerNames     []string
	EnabledExtensionNames []string
}

const (
	API_VERSION_1_2 = uint32(1<<22 | 2<<12)
	API_VERSION_1_3 = uint32(1<<22 | 3<<12)
	API_VERSION_1_4 = uint32(1<<22 | 4<<12)
)

func MakeApiVersion(variant, major, minor, patch uint32) uint32 {
	return variant<<29 | major<<22 | minor<<12 | patch
}

func ApiVersionMajor(version uint32) uint32 { return (version >> 22) & 0x7F }
func ApiVersionMinor(version uint32) uint32 { return (version >> 12) & 0x3FF }
func ApiVersionPatch(version uint32) uint32 { return version & 0xFFF }

func EnumerateInstanceVersion() (uint32, error) {
	var version C.uint32_t
	result := C.vkEnumerateInstanceVersion(&version)

	if result != C.VK_SUCCESS {
		return 0, Result(result)
	}

	return uint32(version), nil
}

type instanceCreateData struct {
	cInfo      *C.VkInstanceCreateInfo
	cAppInfo   *C.VkApplicationInfo
	layers     []*C.char
	extensions []*C.char
	strings    []*C.char
}

func (info *InstanceCreateInfo) vulkanize() *instanceCreateData {
	data := &instanceCreateData{}

	data.cInfo = (*C.VkInstanceCreateInfo)(C.calloc(1, C.sizeof_VkInstanceCreateInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO
	data.cInfo.pNext = nil

	if info.ApplicationInfo != nil {
		data.cAppInfo = (*C.VkApplicationInfo)(C.calloc(1, C.sizeof_VkApplicationInfo))
		data.cAppInfo.sType = C.VK_STRUCTURE_TYPE_APPLICATION_INFO
		data.cAppInfo.pNext = nil

		appName := C.CString(info.ApplicationInfo.ApplicationName)
		engineName := C.CString(info.ApplicationInfo.EngineName)
		data.strings = append(data.strings, appName, engineName)

		data.cAppInfo.pApplicationName = appName
		data.cAppInfo.applicationVersion = C.uint32_t(info.ApplicationInfo.ApplicationVersion)
		data.cAppInfo.pEngineName = engineName
		data.cAppInfo.engineVersion = C.uint32_t(info.ApplicationInfo.EngineVersion)
		data.cAppInfo.apiVersion = C.uint32_t(info.ApplicationInfo.ApiVersion)

		data.cInfo.pApplicationInfo = data.cAppInfo
	}

	if len(info.EnabledLayerNames) > 0 {
		data.layers = make([]*C.char, len(info.EnabledLayerNames))
		for i, layer := range info.EnabledLayerNames {
			data.layers[i] = C.CString(layer)
		}
		data.cInfo.enabledLayerCount = C.uint32_t(len(data.layers))
		data.cInfo.ppEnabledLayerNames = &data.layers[0]
	}

	if len(info.EnabledExtensionNames) > 0 {
		data.extensions = make([]*C.char, len(info.EnabledExtensionNames))
		for i, ext := range info.EnabledExtensionNames {
			data.extensions[i] = C.CString(ext)
		}
		data.cInfo.enabledExtensionCount = C.uint32_t(len(data.extensions))
		data.cInfo.ppEnabledExtensionNames = &data.extensions[0]
	}

	return data
}

func (data *instanceCreateData) free() {
	for _, layer := range data.layers {
		C.free(unsafe.Pointer(layer))
	}

	for _, ext := range data.extensions {
		C.free(unsafe.Pointer(ext))
	}

	for _, str := range data.strings {
		C.free(unsafe.Pointer(str))
	}

	if data.cAppInfo != nil {
		C.free(unsafe.Pointer(data.cAppInfo))
	}

	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
}

func CreateInstance(createInfo *InstanceCreateInfo) (Instance, error) {
	data := createInfo.vulkanize()
	defer data.free()

	var instance C.VkInstance
	result := C.vkCreateInstance(data.cInfo, nil, &instance)

	if result != C.VK_SUCCESS {
		return Instance{}, Result(result)
	}

	return Instance{handle: instance}, nil
}

func (instance Instance) Destroy() {
	C.vkDestroyInstance(instance.handle, nil)
}

// Handle exposes the raw VkInstance for windowing integrations
// (e.g. SDL's VulkanCreateSurface).
func (instance Instance) Handle() unsafe.Pointer {
	return unsafe.Pointer(instance.handle)
}

func (instance Instance) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	var count C.uint32_t
	result := C.vkEnumeratePhysicalDevices(instance.handle, &count, nil)

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	if count == 0 {
		return nil, nil
	}

	devices := make([]C.VkPhysicalDevice, count)
	result = C.vkEnumeratePhysicalDevices(instance.handle, &count, &devices[0])

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	goDevices := make([]PhysicalDevice, count)
	for i := range goDevices {
		goDevices[i] = PhysicalDevice{handle: devices[i]}
	}

	return goDevices, nil
}

func (instance Instance) DestroySurfaceKHR(surface SurfaceKHR) {
	C.vkDestroySurfaceKHR(instance.handle, surface.handle, nil)
}
