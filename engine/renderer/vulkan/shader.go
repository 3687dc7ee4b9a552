package vulkan

import (
	"encoding/binary"
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ferrite/engine/core"
	"github.com/spaghettifunk/ferrite/engine/renderer/metadata"
)

// VulkanShaderModule pairs the native module with the pipeline stage info
// derived from it.
type VulkanShaderModule struct {
	Name       string
	Handle     vk.ShaderModule
	StageInfo  vk.PipelineShaderStageCreateInfo
	StageFlags vk.ShaderStageFlags
}

func ShaderModuleCreate(context *VulkanContext, name string, code []byte, stages metadata.ShaderStageFlags) (*VulkanShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader %s: SPIR-V byte code length %d is not a multiple of 4", name, len(code))
		core.LogError(err.Error())
		return nil, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    repackUint32(code),
	}
	createInfo.Deref()

	var pModule vk.ShaderModule
	if err := lockPool.SafeCall(ShaderManagement, func() error {
		if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &pModule); res != vk.Success {
			return fmt.Errorf("vkCreateShaderModule failed for %s with %s", name, VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	module := &VulkanShaderModule{
		Name:       name,
		Handle:     pModule,
		StageFlags: shaderStageToVulkan(stages),
	}
	module.StageInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFlagBits(module.StageFlags),
		Module: module.Handle,
		PName:  VulkanSafeString("main"),
	}
	module.StageInfo.Deref()

	return module, nil
}

func (sm *VulkanShaderModule) Destroy(context *VulkanContext) {
	if sm.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, sm.Handle, context.Allocator)
		sm.Handle = nil
	}
}

// SPIR-V words are little-endian per the format spec.
func repackUint32(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

func shaderStageToVulkan(stages metadata.ShaderStageFlags) vk.ShaderStageFlags {
	var out vk.ShaderStageFlags
	if stages&metadata.ShaderStageVertex != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if stages&metadata.ShaderStageGeometry != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageGeometryBit)
	}
	if stages&metadata.ShaderStageFragment != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	if stages&metadata.ShaderStageCompute != 0 {
		out |= vk.ShaderStageFlags(vk.ShaderStageComputeBit)
	}
	return out
}
