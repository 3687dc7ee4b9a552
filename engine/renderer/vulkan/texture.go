package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/spaghettifunk/ferrite/engine/core"
)

type VulkanTexture struct {
	// Internal identifier, useful when tracing resource lifetimes in logs.
	ID      string
	Image   *VulkanImage
	Sampler vk.Sampler
}

// TextureCreate uploads pixel data into a device-local sampled image
// through a host-visible staging buffer.
func TextureCreate(context *VulkanContext, pixels []byte, width, height, channelCount uint32) (*VulkanTexture, error) {
	imageSize := uint64(width * height * channelCount)

	// NOTE: assumes 8 bits per channel.
	imageFormat := vk.FormatR8g8b8a8Unorm

	staging, err := BufferCreate(
		context,
		imageSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		core.LogError("failed to create staging buffer for texture upload")
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, pixels[:imageSize]); err != nil {
		return nil, err
	}

	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		width,
		height,
		imageFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	pool := context.Device.GraphicsCommandPool
	queue := context.Device.GraphicsQueue

	commandBuffer, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return nil, err
	}

	// Transition the layout from whatever it is currently to optimal for receiving data.
	if err := image.TransitionLayout(context, commandBuffer, imageFormat, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		return nil, err
	}

	// Copy the data from the buffer.
	image.CopyFromBuffer(context, staging.Handle, commandBuffer)

	// Transition from optimal for data receipt to shader-read-only optimal layout.
	if err := image.TransitionLayout(context, commandBuffer, imageFormat, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return nil, err
	}

	if err := commandBuffer.EndSingleUse(context, pool, queue); err != nil {
		return nil, err
	}

	// Create a sampler for the texture.
	samplerInfo := vk.SamplerCreateInfo{
		SType: vk.StructureTypeSamplerCreateInfo,
		// TODO: these filters should be configurable.
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           16,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0.0,
		MinLod:                  0.0,
		MaxLod:                  0.0,
	}
	samplerInfo.Deref()

	var pSampler vk.Sampler
	if err := lockPool.SafeCall(SamplerManagement, func() error {
		if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &pSampler); res != vk.Success {
			return fmt.Errorf("error creating texture sampler with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	texture := &VulkanTexture{
		ID:      uuid.New().String(),
		Image:   image,
		Sampler: pSampler,
	}
	core.LogDebug("texture %s uploaded (%dx%d, %d channels)", texture.ID, width, height, channelCount)

	return texture, nil
}

func (vt *VulkanTexture) Destroy(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	if vt.Image != nil {
		vt.Image.ImageDestroy(context)
		vt.Image = nil
	}
	if vt.Sampler != nil {
		vk.DestroySampler(context.Device.LogicalDevice, vt.Sampler, context.Allocator)
		vt.Sampler = nil
	}
}
