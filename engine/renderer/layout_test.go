package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spaghettifunk/ferrite/engine/containers"
	"github.com/spaghettifunk/ferrite/engine/core"
	"github.com/spaghettifunk/ferrite/engine/renderer/metadata"
)

// fakeBackend records descriptor calls and hands out sequential handles.
type fakeBackend struct {
	setLayouts      [][]metadata.BindingDescription
	pipelineLayouts [][]metadata.DescriptorSetLayoutHandle
	poolSizes       map[metadata.DescriptorKind]uint32
	poolMaxSets     uint32
	allocations     []metadata.DescriptorSetLayoutHandle
	writes          []fakeWrite

	nextSet metadata.DescriptorSetHandle
}

type fakeWrite struct {
	set     metadata.DescriptorSetHandle
	binding metadata.BindingDescription
	ref     metadata.ResourceReference
}

func (f *fakeBackend) Initialize(string, uint32, uint32) error { return nil }
func (f *fakeBackend) Shutdown() error                         { return nil }
func (f *fakeBackend) Resized(uint16, uint16) error            { return nil }
func (f *fakeBackend) BeginFrame(float64) error                { return nil }
func (f *fakeBackend) EndFrame(float64) error                  { return nil }
func (f *fakeBackend) SwapchainImageCount() int                { return 3 }

func (f *fakeBackend) ShaderModuleCreate(string, []byte, metadata.ShaderStageFlags) (metadata.ShaderModuleHandle, error) {
	return 0, nil
}
func (f *fakeBackend) ShaderModuleDestroy(metadata.ShaderModuleHandle) {}

func (f *fakeBackend) UniformBufferCreate(uint64) (metadata.BufferHandle, error) { return 0, nil }
func (f *fakeBackend) BufferWrite(metadata.BufferHandle, uint64, []byte) error   { return nil }
func (f *fakeBackend) BufferDestroy(metadata.BufferHandle)                       {}

func (f *fakeBackend) TextureCreate([]byte, uint32, uint32, uint32) (metadata.TextureHandle, error) {
	return 0, nil
}
func (f *fakeBackend) TextureDestroy(metadata.TextureHandle) {}

func (f *fakeBackend) CreateDescriptorSetLayout(bindings []metadata.BindingDescription) (metadata.DescriptorSetLayoutHandle, error) {
	f.setLayouts = append(f.setLayouts, bindings)
	return metadata.DescriptorSetLayoutHandle(len(f.setLayouts) - 1), nil
}

func (f *fakeBackend) CreatePipelineLayout(layouts []metadata.DescriptorSetLayoutHandle) (metadata.PipelineLayoutHandle, error) {
	f.pipelineLayouts = append(f.pipelineLayouts, layouts)
	return metadata.PipelineLayoutHandle(len(f.pipelineLayouts) - 1), nil
}

func (f *fakeBackend) CreateDescriptorPool(sizes map[metadata.DescriptorKind]uint32, maxSets uint32) (metadata.DescriptorPoolHandle, error) {
	f.poolSizes = sizes
	f.poolMaxSets = maxSets
	return 7, nil
}

func (f *fakeBackend) DestroyDescriptorPool(metadata.DescriptorPoolHandle) {}

func (f *fakeBackend) AllocateDescriptorSets(pool metadata.DescriptorPoolHandle, layout metadata.DescriptorSetLayoutHandle, count uint32) ([]metadata.DescriptorSetHandle, error) {
	if pool != 7 {
		return nil, fmt.Errorf("allocation against unknown pool %d", pool)
	}
	out := make([]metadata.DescriptorSetHandle, count)
	for i := range out {
		out[i] = f.nextSet
		f.nextSet++
	}
	f.allocations = append(f.allocations, layout)
	return out, nil
}

func (f *fakeBackend) WriteBinding(set metadata.DescriptorSetHandle, binding metadata.BindingDescription, ref metadata.ResourceReference) error {
	f.writes = append(f.writes, fakeWrite{set: set, binding: binding, ref: ref})
	return nil
}

func (f *fakeBackend) CreatePipeline(*metadata.PipelineConfig) (metadata.PipelineHandle, error) {
	return 0, nil
}
func (f *fakeBackend) DestroyPipeline(metadata.PipelineHandle) {}

func testModules() []*metadata.ShaderModule {
	mvp := metadata.NewUniformDescription("mvp", 0, metadata.DescriptorFrequencyGlobal, 192)
	albedo := metadata.NewSampledImageDescription("albedo", 0, metadata.DescriptorFrequencyMaterial)
	return []*metadata.ShaderModule{
		{Name: "basic.vert", StageFlags: metadata.ShaderStageVertex, Resources: []*metadata.ResourceDescription{mvp}},
		{Name: "basic.frag", StageFlags: metadata.ShaderStageFragment, Resources: []*metadata.ResourceDescription{mvp, albedo}},
	}
}

func TestBuildLayoutTierOrdering(t *testing.T) {
	backend := &fakeBackend{}
	r := NewWithBackend(backend)

	layouts, err := r.BuildLayout(testModules())
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}

	// One layout per tier, even for unused tiers, in ascending tier order.
	if len(backend.setLayouts) != metadata.DescriptorFrequencyCount {
		t.Fatalf("created %d set layouts, want %d", len(backend.setLayouts), metadata.DescriptorFrequencyCount)
	}
	if len(backend.setLayouts[0]) != 1 {
		t.Errorf("global tier has %d bindings, want 1", len(backend.setLayouts[0]))
	}
	if len(backend.setLayouts[1]) != 0 {
		t.Errorf("pass tier should be empty, got %d bindings", len(backend.setLayouts[1]))
	}
	if len(backend.setLayouts[2]) != 1 {
		t.Errorf("material tier has %d bindings, want 1", len(backend.setLayouts[2]))
	}

	if len(backend.pipelineLayouts) != 1 {
		t.Fatalf("created %d pipeline layouts, want 1", len(backend.pipelineLayouts))
	}
	ordered := backend.pipelineLayouts[0]
	for i := range ordered {
		if ordered[i] != metadata.DescriptorSetLayoutHandle(i) {
			t.Errorf("pipeline layout set %d references layout %d, want %d", i, ordered[i], i)
		}
	}

	if got := layouts.Descriptors.Get(metadata.DescriptorFrequencyMaterial); got != 2 {
		t.Errorf("material tier layout handle = %d, want 2", got)
	}
}

func TestBuildLayoutMergedStageFlags(t *testing.T) {
	backend := &fakeBackend{}
	r := NewWithBackend(backend)

	layouts, err := r.BuildLayout(testModules())
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}
	global := layouts.Bindings.Global
	if len(global) != 1 {
		t.Fatalf("global tier has %d bindings, want 1", len(global))
	}
	want := metadata.ShaderStageVertex | metadata.ShaderStageFragment
	if global[0].StageFlags != want {
		t.Errorf("merged stage flags = %#x, want %#x", global[0].StageFlags, want)
	}
}

func TestBuildLayoutConflictCreatesNothing(t *testing.T) {
	backend := &fakeBackend{}
	r := NewWithBackend(backend)

	modules := []*metadata.ShaderModule{
		{Name: "a.vert", StageFlags: metadata.ShaderStageVertex, Resources: []*metadata.ResourceDescription{
			metadata.NewUniformDescription("clash", 0, metadata.DescriptorFrequencyGlobal, 64),
		}},
		{Name: "a.frag", StageFlags: metadata.ShaderStageFragment, Resources: []*metadata.ResourceDescription{
			metadata.NewSampledImageDescription("clash", 0, metadata.DescriptorFrequencyGlobal),
		}},
	}

	if _, err := r.BuildLayout(modules); !errors.Is(err, core.ErrBindingConflict) {
		t.Fatalf("err = %v, want ErrBindingConflict", err)
	}
	if len(backend.setLayouts) != 0 || len(backend.pipelineLayouts) != 0 {
		t.Error("no native objects should be created on conflict")
	}
}

func TestGetDescriptorsWritesParityPairs(t *testing.T) {
	backend := &fakeBackend{}
	r := NewWithBackend(backend)

	layouts, err := r.BuildLayout(testModules())
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}

	writes := []*metadata.ResourceBinding{
		{
			Description: metadata.NewUniformDescription("mvp", 0, metadata.DescriptorFrequencyGlobal, 192),
			Reference: containers.ParityOf(containers.NewParitySet(
				metadata.BufferRef(10), metadata.BufferRef(11))),
		},
		{
			Description: metadata.NewSampledImageDescription("albedo", 0, metadata.DescriptorFrequencyMaterial),
			Reference:   containers.SingleOf(metadata.ImageRef(20)),
		},
	}

	pool, sets, err := r.GetDescriptors(layouts, writes)
	if err != nil {
		t.Fatalf("GetDescriptors failed: %v", err)
	}
	if pool != 7 {
		t.Errorf("pool handle = %d, want 7", pool)
	}

	// Two parity slots per declared descriptor.
	if backend.poolSizes[metadata.DescriptorKindUniformBuffer] != 2 {
		t.Errorf("uniform pool size = %d, want 2", backend.poolSizes[metadata.DescriptorKindUniformBuffer])
	}
	if backend.poolSizes[metadata.DescriptorKindSampledImage] != 2 {
		t.Errorf("image pool size = %d, want 2", backend.poolSizes[metadata.DescriptorKindSampledImage])
	}
	if backend.poolMaxSets != metadata.DescriptorFrequencyCount*2 {
		t.Errorf("pool max sets = %d, want %d", backend.poolMaxSets, metadata.DescriptorFrequencyCount*2)
	}

	if len(backend.writes) != 4 {
		t.Fatalf("recorded %d writes, want 4", len(backend.writes))
	}

	globalPair := sets.Get(metadata.DescriptorFrequencyGlobal)
	if backend.writes[0].set != globalPair.Even || backend.writes[0].ref.Buffer != 10 {
		t.Errorf("even uniform write = %+v", backend.writes[0])
	}
	if backend.writes[1].set != globalPair.Odd || backend.writes[1].ref.Buffer != 11 {
		t.Errorf("odd uniform write = %+v", backend.writes[1])
	}

	// Single image reference replicated into both parity slots.
	materialPair := sets.Get(metadata.DescriptorFrequencyMaterial)
	if backend.writes[2].set != materialPair.Even || backend.writes[2].ref.Image != 20 {
		t.Errorf("even image write = %+v", backend.writes[2])
	}
	if backend.writes[3].set != materialPair.Odd || backend.writes[3].ref.Image != 20 {
		t.Errorf("odd image write = %+v", backend.writes[3])
	}
}

func TestGetDescriptorsRejectsSwapchainResources(t *testing.T) {
	backend := &fakeBackend{}
	r := NewWithBackend(backend)

	layouts, err := r.BuildLayout(testModules())
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}

	writes := []*metadata.ResourceBinding{
		{
			Description: metadata.NewUniformDescription("mvp", 0, metadata.DescriptorFrequencyGlobal, 192),
			Reference: containers.SwapchainOf(containers.SwapSet[metadata.ResourceReference]{
				metadata.BufferRef(1), metadata.BufferRef(2), metadata.BufferRef(3),
			}),
		},
	}

	if _, _, err := r.GetDescriptors(layouts, writes); !errors.Is(err, core.ErrRedundancyIncompatible) {
		t.Errorf("err = %v, want ErrRedundancyIncompatible", err)
	}
}

func TestGetDescriptorsUnknownBinding(t *testing.T) {
	backend := &fakeBackend{}
	r := NewWithBackend(backend)

	layouts, err := r.BuildLayout(testModules())
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}

	writes := []*metadata.ResourceBinding{
		{
			Description: metadata.NewUniformDescription("stray", 5, metadata.DescriptorFrequencyPass, 64),
			Reference:   containers.SingleOf(metadata.BufferRef(1)),
		},
	}

	if _, _, err := r.GetDescriptors(layouts, writes); !errors.Is(err, core.ErrMissingTierLayout) {
		t.Errorf("err = %v, want ErrMissingTierLayout", err)
	}
}
