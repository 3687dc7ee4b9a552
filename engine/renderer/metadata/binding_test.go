package metadata

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/ferrite/engine/core"
)

func vertexModule(resources ...*ResourceDescription) *ShaderModule {
	return &ShaderModule{Name: "test.vert", StageFlags: ShaderStageVertex, Resources: resources}
}

func fragmentModule(resources ...*ResourceDescription) *ShaderModule {
	return &ShaderModule{Name: "test.frag", StageFlags: ShaderStageFragment, Resources: resources}
}

func TestAccumulateBindingsMergesStageFlags(t *testing.T) {
	mvp := NewUniformDescription("mvp", 0, DescriptorFrequencyGlobal, 192)

	set, err := AccumulateBindings([]*ShaderModule{
		vertexModule(mvp),
		fragmentModule(mvp),
	})
	if err != nil {
		t.Fatalf("AccumulateBindings failed: %v", err)
	}

	global := set.Global
	if len(global) != 1 {
		t.Fatalf("global tier has %d bindings, want 1", len(global))
	}
	b := global[0]
	if b.Kind != DescriptorKindUniformBuffer || b.Binding != 0 || b.Count != 1 {
		t.Errorf("merged binding = %+v", b)
	}
	want := ShaderStageVertex | ShaderStageFragment
	if b.StageFlags != want {
		t.Errorf("merged stage flags = %#x, want %#x", b.StageFlags, want)
	}
}

func TestAccumulateBindingsKindConflict(t *testing.T) {
	asUniform := NewUniformDescription("clash", 0, DescriptorFrequencyGlobal, 64)
	asImage := NewSampledImageDescription("clash", 0, DescriptorFrequencyGlobal)

	_, err := AccumulateBindings([]*ShaderModule{
		vertexModule(asUniform),
		fragmentModule(asImage),
	})
	if !errors.Is(err, core.ErrBindingConflict) {
		t.Errorf("err = %v, want ErrBindingConflict", err)
	}
}

func TestAccumulateBindingsSameSlotDifferentTier(t *testing.T) {
	globalUniform := NewUniformDescription("camera", 0, DescriptorFrequencyGlobal, 128)
	materialImage := NewSampledImageDescription("albedo", 0, DescriptorFrequencyMaterial)

	set, err := AccumulateBindings([]*ShaderModule{
		vertexModule(globalUniform),
		fragmentModule(materialImage),
	})
	if err != nil {
		t.Fatalf("AccumulateBindings failed: %v", err)
	}
	if len(set.Global) != 1 || len(set.Material) != 1 {
		t.Errorf("tiers = global:%d material:%d, want 1 and 1", len(set.Global), len(set.Material))
	}
	if len(set.Pass) != 0 || len(set.Object) != 0 {
		t.Errorf("unused tiers should be empty, got pass:%d object:%d", len(set.Pass), len(set.Object))
	}
}

func TestAccumulateBindingsSortedBySlot(t *testing.T) {
	texture := NewSampledImageDescription("texture", 1, DescriptorFrequencyGlobal)
	mvp := NewUniformDescription("mvp", 0, DescriptorFrequencyGlobal, 192)

	set, err := AccumulateBindings([]*ShaderModule{
		fragmentModule(texture, mvp),
	})
	if err != nil {
		t.Fatalf("AccumulateBindings failed: %v", err)
	}
	if len(set.Global) != 2 {
		t.Fatalf("global tier has %d bindings, want 2", len(set.Global))
	}
	if set.Global[0].Binding != 0 || set.Global[1].Binding != 1 {
		t.Errorf("bindings not sorted by slot: %d, %d", set.Global[0].Binding, set.Global[1].Binding)
	}
}

func TestVertexInputYieldsNoBinding(t *testing.T) {
	vertexInput := NewVertexInputDescription("vertex", nil, nil)
	if _, ok := vertexInput.ShaderBinding(); ok {
		t.Error("vertex input should not occupy a descriptor binding")
	}

	set, err := AccumulateBindings([]*ShaderModule{vertexModule(vertexInput)})
	if err != nil {
		t.Fatalf("AccumulateBindings failed: %v", err)
	}
	for _, tier := range set.Values() {
		if len(tier) != 0 {
			t.Errorf("expected no bindings, got %v", tier)
		}
	}
}

func TestFrequencySetOrder(t *testing.T) {
	fs := FrequencySet[string]{Global: "g", Pass: "p", Material: "m", Object: "o"}
	got := fs.Values()
	want := []string{"g", "p", "m", "o"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	frequencies := Frequencies()
	for i := 1; i < len(frequencies); i++ {
		if frequencies[i-1] >= frequencies[i] {
			t.Errorf("Frequencies() not ascending at %d", i)
		}
	}
}
