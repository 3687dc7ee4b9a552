package metadata

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/ferrite/engine/core"
)

/** @brief The kind of resource a descriptor binding points at. */
type DescriptorKind int

const (
	DescriptorKindUniformBuffer DescriptorKind = 0
	DescriptorKindSampledImage  DescriptorKind = 1
)

func (k DescriptorKind) String() string {
	switch k {
	case DescriptorKindUniformBuffer:
		return "UniformBuffer"
	case DescriptorKindSampledImage:
		return "SampledImage"
	}
	return fmt.Sprintf("DescriptorKind(%d)", int(k))
}

/** @brief Bitset of shader stages that read a binding. */
type ShaderStageFlags uint32

const (
	ShaderStageVertex   ShaderStageFlags = 0x00000001
	ShaderStageGeometry ShaderStageFlags = 0x00000002
	ShaderStageFragment ShaderStageFlags = 0x00000004
	ShaderStageCompute  ShaderStageFlags = 0x00000008
)

// ShaderBinding is a single stage's declaration of a descriptor binding
// point: what kind of resource, at which slot of which frequency tier.
type ShaderBinding struct {
	Kind      DescriptorKind
	Frequency DescriptorFrequency
	Binding   uint32
	Count     uint32
}

// BindingDescription is a ShaderBinding reconciled across stages, carrying
// the union of the stage flags that declared it.
type BindingDescription struct {
	ShaderBinding
	StageFlags ShaderStageFlags
}

type bindingSlot struct {
	binding   uint32
	frequency DescriptorFrequency
}

// AccumulateBindings flattens the binding declarations of every module,
// merges declarations that target the same (slot, frequency) by OR-ing
// their stage flags, and groups the result per frequency tier, sorted by
// slot. Declarations that agree on slot and tier but disagree on kind or
// count make the whole accumulation fail; no partial result is produced.
func AccumulateBindings(modules []*ShaderModule) (FrequencySet[[]BindingDescription], error) {
	var out FrequencySet[[]BindingDescription]

	merged := make(map[bindingSlot]*BindingDescription)
	order := make([]bindingSlot, 0)

	for _, module := range modules {
		for _, resource := range module.Resources {
			sb, ok := resource.ShaderBinding()
			if !ok {
				continue
			}

			slot := bindingSlot{binding: sb.Binding, frequency: sb.Frequency}
			existing, seen := merged[slot]
			if !seen {
				merged[slot] = &BindingDescription{ShaderBinding: sb, StageFlags: module.StageFlags}
				order = append(order, slot)
				continue
			}

			if existing.Kind != sb.Kind || existing.Count != sb.Count {
				err := fmt.Errorf("%w: binding %d at %s tier declared as %s x%d and %s x%d",
					core.ErrBindingConflict,
					sb.Binding, sb.Frequency,
					existing.Kind, existing.Count,
					sb.Kind, sb.Count)
				core.LogError(err.Error())
				return out, err
			}
			existing.StageFlags |= module.StageFlags
		}
	}

	for _, slot := range order {
		tier := out.GetPtr(slot.frequency)
		*tier = append(*tier, *merged[slot])
	}
	for _, frequency := range Frequencies() {
		tier := out.GetPtr(frequency)
		sort.Slice(*tier, func(i, j int) bool {
			return (*tier)[i].Binding < (*tier)[j].Binding
		})
	}

	return out, nil
}
