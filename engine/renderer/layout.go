package renderer

import (
	"fmt"

	"github.com/spaghettifunk/ferrite/engine/containers"
	"github.com/spaghettifunk/ferrite/engine/core"
	"github.com/spaghettifunk/ferrite/engine/renderer/metadata"
)

// Layouts is the built descriptor schema of one shader effect: one
// descriptor set layout per frequency tier and the combined pipeline layout
// referencing them in ascending tier order.
//
// Every tier receives a layout even when it carries no bindings. Vulkan
// requires contiguous set indices in a pipeline layout, so an empty layout
// at an unused tier keeps the tier-to-set-index mapping stable.
type Layouts struct {
	Descriptors metadata.FrequencySet[metadata.DescriptorSetLayoutHandle]
	Pipeline    metadata.PipelineLayoutHandle
	Bindings    metadata.FrequencySet[[]metadata.BindingDescription]
}

// BuildLayout reconciles the binding declarations of the given shader
// stages and creates the per-tier descriptor set layouts plus the combined
// pipeline layout. Construction is all-or-nothing: a binding conflict
// surfaces before any native object is created.
func (r *Renderer) BuildLayout(modules []*metadata.ShaderModule) (*Layouts, error) {
	bindings, err := metadata.AccumulateBindings(modules)
	if err != nil {
		return nil, err
	}

	out := &Layouts{Bindings: bindings}
	ordered := make([]metadata.DescriptorSetLayoutHandle, 0, metadata.DescriptorFrequencyCount)
	for _, frequency := range metadata.Frequencies() {
		layout, err := r.backend.CreateDescriptorSetLayout(bindings.Get(frequency))
		if err != nil {
			return nil, fmt.Errorf("creating %s tier descriptor set layout: %w", frequency, err)
		}
		*out.Descriptors.GetPtr(frequency) = layout
		ordered = append(ordered, layout)
	}

	pipeline, err := r.backend.CreatePipelineLayout(ordered)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline layout: %w", err)
	}
	out.Pipeline = pipeline
	return out, nil
}

// reconciled finds the reconciled description for a shader binding within
// the built layouts.
func (l *Layouts) reconciled(sb metadata.ShaderBinding) (metadata.BindingDescription, error) {
	for _, desc := range l.Bindings.Get(sb.Frequency) {
		if desc.Binding == sb.Binding {
			return desc, nil
		}
	}
	return metadata.BindingDescription{}, fmt.Errorf("%w: binding %d at %s tier",
		core.ErrMissingTierLayout, sb.Binding, sb.Frequency)
}

// GetDescriptors allocates a descriptor pool sized for the given writes,
// one Even/Odd descriptor set pair per frequency tier, and points every
// set slot at its resource.
//
// Each write's reference set is widened to parity: a Single resource serves
// both frames, a Parity resource contributes its even and odd copies, and a
// Swapchain-redundant resource is rejected since parity and swapchain
// replication are incompatible. The caller must guarantee no in-flight GPU
// read of the slots being written.
func (r *Renderer) GetDescriptors(layouts *Layouts, writes []*metadata.ResourceBinding) (metadata.DescriptorPoolHandle, metadata.FrequencySet[containers.ParitySet[metadata.DescriptorSetHandle]], error) {
	var sets metadata.FrequencySet[containers.ParitySet[metadata.DescriptorSetHandle]]

	// Pool capacity comes from the declared kind and count of every write,
	// doubled for the two parity slots.
	sizes := make(map[metadata.DescriptorKind]uint32)
	for _, write := range writes {
		sb, ok := write.Description.ShaderBinding()
		if !ok {
			continue
		}
		sizes[sb.Kind] += sb.Count * 2
	}

	pool, err := r.backend.CreateDescriptorPool(sizes, metadata.DescriptorFrequencyCount*2)
	if err != nil {
		return 0, sets, fmt.Errorf("creating descriptor pool: %w", err)
	}

	for _, frequency := range metadata.Frequencies() {
		allocated, err := r.backend.AllocateDescriptorSets(pool, layouts.Descriptors.Get(frequency), 2)
		if err != nil {
			return 0, sets, fmt.Errorf("allocating %s tier descriptor sets: %w", frequency, err)
		}
		pair, err := containers.ParitySetFromSlice(allocated)
		if err != nil {
			return 0, sets, err
		}
		*sets.GetPtr(frequency) = pair
	}

	for _, write := range writes {
		sb, ok := write.Description.ShaderBinding()
		if !ok {
			continue
		}
		desc, err := layouts.reconciled(sb)
		if err != nil {
			return 0, sets, err
		}

		widened, err := write.Reference.AsType(containers.RedundancyParity, 0)
		if err != nil {
			return 0, sets, fmt.Errorf("resources for a descriptor set must be single or parity redundant: %w", err)
		}
		references, _ := widened.Parity()
		pair := sets.Get(sb.Frequency)

		if err := r.backend.WriteBinding(pair.Even, desc, references.Even); err != nil {
			return 0, sets, err
		}
		if err := r.backend.WriteBinding(pair.Odd, desc, references.Odd); err != nil {
			return 0, sets, err
		}
	}

	return pool, sets, nil
}
