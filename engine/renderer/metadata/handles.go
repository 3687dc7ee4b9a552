package metadata

/** @brief An invalid id in any of the handle spaces below. */
const InvalidID uint32 = 0xFFFFFFFF

// Backend object handles. The renderer backend owns the native objects and
// hands out opaque arena indices; nothing outside the backend ever sees a
// native Vulkan handle.
type (
	BufferHandle              uint32
	TextureHandle             uint32
	ShaderModuleHandle        uint32
	DescriptorSetLayoutHandle uint32
	PipelineLayoutHandle      uint32
	DescriptorPoolHandle      uint32
	DescriptorSetHandle       uint32
	RenderPassHandle          uint32
	PipelineHandle            uint32
)
