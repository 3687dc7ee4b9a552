package metadata

import (
	"github.com/spaghettifunk/ferrite/engine/containers"
)

/** @brief The closed set of resource description variants. */
type ResourceDescriptionType int

const (
	ResourceDescriptionUniform ResourceDescriptionType = iota
	ResourceDescriptionSampledImage
	ResourceDescriptionVertexInput
)

/** @brief Describes a uniform buffer binding point. */
type UniformDescription struct {
	Binding   uint32
	Frequency DescriptorFrequency
	/** @brief The size of one element in bytes. */
	Stride uint64
	/** @brief The number of elements; 1 for a plain uniform block. */
	Elements uint32
}

/** @brief Describes a combined image/sampler binding point. */
type SampledImageDescription struct {
	Binding   uint32
	Frequency DescriptorFrequency
}

type VertexInputRate int

const (
	VertexInputRateVertex VertexInputRate = iota
	VertexInputRateInstance
)

type VertexInputBinding struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

type VertexAttributeFormat int

const (
	VertexAttributeFloat32 VertexAttributeFormat = iota
	VertexAttributeVec2
	VertexAttributeVec3
	VertexAttributeVec4
)

type VertexInputAttribute struct {
	Binding  uint32
	Location uint32
	Format   VertexAttributeFormat
	Offset   uint32
}

/** @brief Describes the vertex layout consumed by a pipeline. */
type VertexInputDescription struct {
	Bindings   []VertexInputBinding
	Attributes []VertexInputAttribute
}

// ResourceDescription is a tagged union over the variants above. Exactly one
// of the variant pointers matching Type is set.
type ResourceDescription struct {
	Name string
	Type ResourceDescriptionType

	Uniform      *UniformDescription
	SampledImage *SampledImageDescription
	VertexInput  *VertexInputDescription
}

func NewUniformDescription(name string, binding uint32, frequency DescriptorFrequency, stride uint64) *ResourceDescription {
	return &ResourceDescription{
		Name: name,
		Type: ResourceDescriptionUniform,
		Uniform: &UniformDescription{
			Binding:   binding,
			Frequency: frequency,
			Stride:    stride,
			Elements:  1,
		},
	}
}

func NewSampledImageDescription(name string, binding uint32, frequency DescriptorFrequency) *ResourceDescription {
	return &ResourceDescription{
		Name: name,
		Type: ResourceDescriptionSampledImage,
		SampledImage: &SampledImageDescription{
			Binding:   binding,
			Frequency: frequency,
		},
	}
}

func NewVertexInputDescription(name string, bindings []VertexInputBinding, attributes []VertexInputAttribute) *ResourceDescription {
	return &ResourceDescription{
		Name: name,
		Type: ResourceDescriptionVertexInput,
		VertexInput: &VertexInputDescription{
			Bindings:   bindings,
			Attributes: attributes,
		},
	}
}

// ShaderBinding yields the descriptor binding this resource occupies, if
// any. Vertex inputs are consumed by the pipeline's vertex stage directly
// and contribute no descriptor.
func (rd *ResourceDescription) ShaderBinding() (ShaderBinding, bool) {
	switch rd.Type {
	case ResourceDescriptionUniform:
		return ShaderBinding{
			Kind:      DescriptorKindUniformBuffer,
			Frequency: rd.Uniform.Frequency,
			Binding:   rd.Uniform.Binding,
			Count:     rd.Uniform.Elements,
		}, true
	case ResourceDescriptionSampledImage:
		return ShaderBinding{
			Kind:      DescriptorKindSampledImage,
			Frequency: rd.SampledImage.Frequency,
			Binding:   rd.SampledImage.Binding,
			Count:     1,
		}, true
	}
	return ShaderBinding{}, false
}

/** @brief The closed set of bindable GPU resource reference kinds. */
type ResourceReferenceKind int

const (
	ResourceReferenceBuffer ResourceReferenceKind = iota
	ResourceReferenceImage
)

// ResourceReference points at one concrete GPU object supplying the data for
// a binding. Kind selects which handle field is meaningful.
type ResourceReference struct {
	Kind   ResourceReferenceKind
	Buffer BufferHandle
	Image  TextureHandle
}

func BufferRef(h BufferHandle) ResourceReference {
	return ResourceReference{Kind: ResourceReferenceBuffer, Buffer: h}
}

func ImageRef(h TextureHandle) ResourceReference {
	return ResourceReference{Kind: ResourceReferenceImage, Image: h}
}

// ResourceBinding pairs a resource's description with the redundant set of
// GPU references supplying its data across in-flight frames.
type ResourceBinding struct {
	Description *ResourceDescription
	Reference   containers.RedundantSet[ResourceReference]
}
