package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/ferrite/engine/core"
	"github.com/spaghettifunk/ferrite/engine/renderer"
	"github.com/spaghettifunk/ferrite/engine/renderer/metadata"
)

// materialBackend records shader, pipeline and descriptor calls with
// sequential handles.
type materialBackend struct {
	shaderNames      []string
	shadersDestroyed []metadata.ShaderModuleHandle

	pipelineConfigs    []*metadata.PipelineConfig
	pipelinesDestroyed []metadata.PipelineHandle

	setLayoutCount int
	nextSet        metadata.DescriptorSetHandle
}

func (b *materialBackend) Initialize(string, uint32, uint32) error { return nil }
func (b *materialBackend) Shutdown() error                         { return nil }
func (b *materialBackend) Resized(uint16, uint16) error            { return nil }
func (b *materialBackend) BeginFrame(float64) error                { return nil }
func (b *materialBackend) EndFrame(float64) error                  { return nil }
func (b *materialBackend) SwapchainImageCount() int                { return 3 }

func (b *materialBackend) ShaderModuleCreate(name string, _ []byte, _ metadata.ShaderStageFlags) (metadata.ShaderModuleHandle, error) {
	b.shaderNames = append(b.shaderNames, name)
	return metadata.ShaderModuleHandle(len(b.shaderNames) - 1), nil
}

func (b *materialBackend) ShaderModuleDestroy(handle metadata.ShaderModuleHandle) {
	b.shadersDestroyed = append(b.shadersDestroyed, handle)
}

func (b *materialBackend) UniformBufferCreate(uint64) (metadata.BufferHandle, error) { return 0, nil }
func (b *materialBackend) BufferWrite(metadata.BufferHandle, uint64, []byte) error   { return nil }
func (b *materialBackend) BufferDestroy(metadata.BufferHandle)                       {}

func (b *materialBackend) TextureCreate([]byte, uint32, uint32, uint32) (metadata.TextureHandle, error) {
	return 0, nil
}
func (b *materialBackend) TextureDestroy(metadata.TextureHandle) {}

func (b *materialBackend) CreateDescriptorSetLayout([]metadata.BindingDescription) (metadata.DescriptorSetLayoutHandle, error) {
	b.setLayoutCount++
	return metadata.DescriptorSetLayoutHandle(b.setLayoutCount - 1), nil
}

func (b *materialBackend) CreatePipelineLayout([]metadata.DescriptorSetLayoutHandle) (metadata.PipelineLayoutHandle, error) {
	return 42, nil
}

func (b *materialBackend) CreateDescriptorPool(map[metadata.DescriptorKind]uint32, uint32) (metadata.DescriptorPoolHandle, error) {
	return 7, nil
}

func (b *materialBackend) DestroyDescriptorPool(metadata.DescriptorPoolHandle) {}

func (b *materialBackend) AllocateDescriptorSets(_ metadata.DescriptorPoolHandle, _ metadata.DescriptorSetLayoutHandle, count uint32) ([]metadata.DescriptorSetHandle, error) {
	out := make([]metadata.DescriptorSetHandle, count)
	for i := range out {
		out[i] = b.nextSet
		b.nextSet++
	}
	return out, nil
}

func (b *materialBackend) WriteBinding(metadata.DescriptorSetHandle, metadata.BindingDescription, metadata.ResourceReference) error {
	return nil
}

func (b *materialBackend) CreatePipeline(config *metadata.PipelineConfig) (metadata.PipelineHandle, error) {
	b.pipelineConfigs = append(b.pipelineConfigs, config)
	return metadata.PipelineHandle(len(b.pipelineConfigs) - 1), nil
}

func (b *materialBackend) DestroyPipeline(handle metadata.PipelineHandle) {
	b.pipelinesDestroyed = append(b.pipelinesDestroyed, handle)
}

func newTestMaterialSystem(t *testing.T) (*MaterialSystem, *materialBackend) {
	t.Helper()
	backend := &materialBackend{}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxEffectCount: 16}, renderer.NewWithBackend(backend))
	if err != nil {
		t.Fatalf("NewMaterialSystem failed: %v", err)
	}
	return ms, backend
}

func registerTestStages(t *testing.T, ms *MaterialSystem) []*metadata.ShaderModule {
	t.Helper()
	mvp := metadata.NewUniformDescription("mvp", 0, metadata.DescriptorFrequencyGlobal, 192)
	albedo := metadata.NewSampledImageDescription("albedo", 0, metadata.DescriptorFrequencyMaterial)
	vertexInput := metadata.NewVertexInputDescription("vertex",
		[]metadata.VertexInputBinding{{Binding: 0, Stride: 32}},
		[]metadata.VertexInputAttribute{{Binding: 0, Location: 0, Format: metadata.VertexAttributeVec3}})

	vert, err := ms.RegisterShader("basic.vert", []byte{0, 0, 0, 0}, metadata.ShaderStageVertex,
		[]*metadata.ResourceDescription{mvp, vertexInput})
	if err != nil {
		t.Fatalf("RegisterShader(vert) failed: %v", err)
	}
	frag, err := ms.RegisterShader("basic.frag", []byte{0, 0, 0, 0}, metadata.ShaderStageFragment,
		[]*metadata.ResourceDescription{mvp, albedo})
	if err != nil {
		t.Fatalf("RegisterShader(frag) failed: %v", err)
	}
	return []*metadata.ShaderModule{vert, frag}
}

func TestRegisterShaderRejectsDuplicateName(t *testing.T) {
	ms, backend := newTestMaterialSystem(t)
	registerTestStages(t, ms)

	if _, err := ms.RegisterShader("basic.vert", nil, metadata.ShaderStageVertex, nil); err == nil {
		t.Fatal("duplicate registration succeeded")
	}
	if len(backend.shaderNames) != 2 {
		t.Errorf("backend saw %d shader creates, want 2", len(backend.shaderNames))
	}
}

func TestRegisterEffectBuildsLayouts(t *testing.T) {
	ms, backend := newTestMaterialSystem(t)
	stages := registerTestStages(t, ms)

	id, err := ms.RegisterEffect(stages)
	if err != nil {
		t.Fatalf("RegisterEffect failed: %v", err)
	}

	layouts, err := ms.GetEffectLayouts(id)
	if err != nil {
		t.Fatalf("GetEffectLayouts failed: %v", err)
	}
	if layouts.Pipeline != 42 {
		t.Errorf("pipeline layout handle = %d, want 42", layouts.Pipeline)
	}
	if backend.setLayoutCount != metadata.DescriptorFrequencyCount {
		t.Errorf("created %d set layouts, want %d", backend.setLayoutCount, metadata.DescriptorFrequencyCount)
	}
}

func TestRegisterEffectRejectsBindingConflict(t *testing.T) {
	ms, _ := newTestMaterialSystem(t)

	// Same slot and tier, different kinds.
	uniform := metadata.NewUniformDescription("mvp", 0, metadata.DescriptorFrequencyGlobal, 192)
	image := metadata.NewSampledImageDescription("shadow", 0, metadata.DescriptorFrequencyGlobal)
	stages := []*metadata.ShaderModule{
		{Name: "a.vert", StageFlags: metadata.ShaderStageVertex, Resources: []*metadata.ResourceDescription{uniform}},
		{Name: "a.frag", StageFlags: metadata.ShaderStageFragment, Resources: []*metadata.ResourceDescription{image}},
	}

	if _, err := ms.RegisterEffect(stages); !errors.Is(err, core.ErrBindingConflict) {
		t.Fatalf("RegisterEffect error = %v, want ErrBindingConflict", err)
	}
	if ms.effects.Len() != 0 {
		t.Errorf("conflicting effect was stored, arena has %d entries", ms.effects.Len())
	}
}

func TestEffectPipelineBuiltOnceAndCached(t *testing.T) {
	ms, backend := newTestMaterialSystem(t)
	stages := registerTestStages(t, ms)

	id, err := ms.RegisterEffect(stages)
	if err != nil {
		t.Fatalf("RegisterEffect failed: %v", err)
	}
	if len(backend.pipelineConfigs) != 0 {
		t.Fatalf("pipeline built eagerly at registration")
	}

	first, err := ms.GetEffectPipeline(id)
	if err != nil {
		t.Fatalf("GetEffectPipeline failed: %v", err)
	}
	second, err := ms.GetEffectPipeline(id)
	if err != nil {
		t.Fatalf("second GetEffectPipeline failed: %v", err)
	}
	if first != second {
		t.Errorf("cached pipeline handle changed: %d then %d", first, second)
	}
	if len(backend.pipelineConfigs) != 1 {
		t.Fatalf("backend saw %d pipeline creates, want 1", len(backend.pipelineConfigs))
	}

	config := backend.pipelineConfigs[0]
	if config.PipelineLayout != 42 {
		t.Errorf("pipeline config layout = %d, want 42", config.PipelineLayout)
	}
	if config.VertexInput == nil {
		t.Error("pipeline config missing the vertex stage's input description")
	}
	if len(config.Stages) != 2 {
		t.Errorf("pipeline config has %d stages, want 2", len(config.Stages))
	}
}

func TestEffectPipelineWireframeFromConfig(t *testing.T) {
	backend := &materialBackend{}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxEffectCount: 16, Wireframe: true},
		renderer.NewWithBackend(backend))
	if err != nil {
		t.Fatalf("NewMaterialSystem failed: %v", err)
	}

	id, err := ms.RegisterEffect(registerTestStages(t, ms))
	if err != nil {
		t.Fatalf("RegisterEffect failed: %v", err)
	}
	if _, err := ms.GetEffectPipeline(id); err != nil {
		t.Fatalf("GetEffectPipeline failed: %v", err)
	}

	if len(backend.pipelineConfigs) != 1 {
		t.Fatalf("backend saw %d pipeline creates, want 1", len(backend.pipelineConfigs))
	}
	if !backend.pipelineConfigs[0].IsWireframe {
		t.Error("pipeline config did not carry the wireframe rasterization mode")
	}
}

func TestUnknownEffectHandles(t *testing.T) {
	ms, _ := newTestMaterialSystem(t)

	stale := EffectID(12)
	if _, err := ms.GetEffectLayouts(stale); !errors.Is(err, core.ErrUnknownEffect) {
		t.Errorf("GetEffectLayouts error = %v, want ErrUnknownEffect", err)
	}
	if _, err := ms.GetEffectPipeline(stale); !errors.Is(err, core.ErrUnknownEffect) {
		t.Errorf("GetEffectPipeline error = %v, want ErrUnknownEffect", err)
	}
	if _, _, err := ms.WriteDescriptorSets(stale, nil); !errors.Is(err, core.ErrUnknownEffect) {
		t.Errorf("WriteDescriptorSets error = %v, want ErrUnknownEffect", err)
	}
}

func TestReleaseEffectDestroysPipeline(t *testing.T) {
	ms, backend := newTestMaterialSystem(t)
	stages := registerTestStages(t, ms)

	id, err := ms.RegisterEffect(stages)
	if err != nil {
		t.Fatalf("RegisterEffect failed: %v", err)
	}
	pipeline, err := ms.GetEffectPipeline(id)
	if err != nil {
		t.Fatalf("GetEffectPipeline failed: %v", err)
	}

	if err := ms.ReleaseEffect(id); err != nil {
		t.Fatalf("ReleaseEffect failed: %v", err)
	}
	if len(backend.pipelinesDestroyed) != 1 || backend.pipelinesDestroyed[0] != pipeline {
		t.Errorf("destroyed pipelines = %v, want [%d]", backend.pipelinesDestroyed, pipeline)
	}
	if _, err := ms.GetEffectLayouts(id); !errors.Is(err, core.ErrUnknownEffect) {
		t.Errorf("released effect still resolvable, err = %v", err)
	}
}

func TestShutdownDestroysShaderModules(t *testing.T) {
	ms, backend := newTestMaterialSystem(t)
	stages := registerTestStages(t, ms)
	if _, err := ms.RegisterEffect(stages); err != nil {
		t.Fatalf("RegisterEffect failed: %v", err)
	}

	if err := ms.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if len(backend.shadersDestroyed) != 2 {
		t.Errorf("destroyed %d shader modules, want 2", len(backend.shadersDestroyed))
	}
	if ms.effects.Len() != 0 {
		t.Errorf("effect arena not emptied, %d entries remain", ms.effects.Len())
	}
}

func TestWriteDescriptorSetsUsesEffectLayouts(t *testing.T) {
	ms, _ := newTestMaterialSystem(t)
	stages := registerTestStages(t, ms)

	id, err := ms.RegisterEffect(stages)
	if err != nil {
		t.Fatalf("RegisterEffect failed: %v", err)
	}

	pool, sets, err := ms.WriteDescriptorSets(id, nil)
	if err != nil {
		t.Fatalf("WriteDescriptorSets failed: %v", err)
	}
	if pool != 7 {
		t.Errorf("pool handle = %d, want 7", pool)
	}
	// One Even/Odd pair per tier, allocated in tier order.
	global := sets.Get(metadata.DescriptorFrequencyGlobal)
	if global.Even != 0 || global.Odd != 1 {
		t.Errorf("global pair = (%d,%d), want (0,1)", global.Even, global.Odd)
	}
	object := sets.Get(metadata.DescriptorFrequencyObject)
	if object.Even != 6 || object.Odd != 7 {
		t.Errorf("object pair = (%d,%d), want (6,7)", object.Even, object.Odd)
	}
}
