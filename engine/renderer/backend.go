package renderer

import "github.com/spaghettifunk/ferrite/engine/renderer/metadata"

// RendererBackend is the native graphics device boundary. Implementations
// own every native object and hand out opaque handles; all calls are
// synchronous and report failure only through their error return.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint16) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	// SwapchainImageCount reports the current presentable image count;
	// swapchain-redundant resources carry one copy per image.
	SwapchainImageCount() int

	ShaderModuleCreate(name string, code []byte, stage metadata.ShaderStageFlags) (metadata.ShaderModuleHandle, error)
	ShaderModuleDestroy(handle metadata.ShaderModuleHandle)

	UniformBufferCreate(size uint64) (metadata.BufferHandle, error)
	BufferWrite(handle metadata.BufferHandle, offset uint64, data []byte) error
	BufferDestroy(handle metadata.BufferHandle)

	TextureCreate(pixels []byte, width, height, channelCount uint32) (metadata.TextureHandle, error)
	TextureDestroy(handle metadata.TextureHandle)

	CreateDescriptorSetLayout(bindings []metadata.BindingDescription) (metadata.DescriptorSetLayoutHandle, error)
	CreatePipelineLayout(layouts []metadata.DescriptorSetLayoutHandle) (metadata.PipelineLayoutHandle, error)
	CreateDescriptorPool(sizes map[metadata.DescriptorKind]uint32, maxSets uint32) (metadata.DescriptorPoolHandle, error)
	DestroyDescriptorPool(pool metadata.DescriptorPoolHandle)
	AllocateDescriptorSets(pool metadata.DescriptorPoolHandle, layout metadata.DescriptorSetLayoutHandle, count uint32) ([]metadata.DescriptorSetHandle, error)
	// WriteBinding points one slot of a descriptor set at a resource. The
	// caller guarantees the GPU is not reading the slot; no synchronization
	// happens here.
	WriteBinding(set metadata.DescriptorSetHandle, binding metadata.BindingDescription, ref metadata.ResourceReference) error

	CreatePipeline(config *metadata.PipelineConfig) (metadata.PipelineHandle, error)
	DestroyPipeline(handle metadata.PipelineHandle)
}
