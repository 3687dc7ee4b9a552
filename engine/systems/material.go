package systems

import (
	"fmt"

	"github.com/spaghettifunk/ferrite/engine/containers"
	"github.com/spaghettifunk/ferrite/engine/core"
	"github.com/spaghettifunk/ferrite/engine/renderer"
	"github.com/spaghettifunk/ferrite/engine/renderer/metadata"
)

/** @brief An opaque identity for a registered shader effect. Two IDs compare
 * equal only when they name the same registration, so everything the system
 * caches per effect is keyed by identity rather than by the effect's
 * contents. */
type EffectID core.Handle

/** @brief Configuration for the material system. */
type MaterialSystemConfig struct {
	/** @brief The maximum number of shader effects held in the system. */
	MaxEffectCount uint32
	/** @brief When set, effect pipelines rasterize in wireframe mode. */
	Wireframe bool
}

// effect is one registered shader-stage combination together with
// everything built from it so far.
type effect struct {
	stages  []*metadata.ShaderModule
	layouts *renderer.Layouts

	pipeline    metadata.PipelineHandle
	hasPipeline bool
}

/** @brief The material system owns shader modules and the effects composed
 * from them. Registering an effect reconciles its stages' resource
 * declarations into descriptor and pipeline layouts; the graphics pipeline
 * itself is built lazily on first use and cached against the effect ID. */
type MaterialSystem struct {
	// This system's configuration.
	Config *MaterialSystemConfig
	// A lookup table for shader module name->module.
	Lookup map[string]*metadata.ShaderModule

	effects  *core.Arena[*effect]
	renderer *renderer.Renderer
}

func NewMaterialSystem(config *MaterialSystemConfig, r *renderer.Renderer) (*MaterialSystem, error) {
	// Verify configuration.
	if config.MaxEffectCount == 0 {
		err := fmt.Errorf("NewMaterialSystem - config.MaxEffectCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &MaterialSystem{
		Config:   config,
		Lookup:   make(map[string]*metadata.ShaderModule),
		effects:  core.NewArena[*effect](),
		renderer: r,
	}, nil
}

/**
 * @brief Creates a native shader module from compiled SPIR-V and registers
 * it under the given name together with its resource declarations.
 *
 * @param name The unique name to register the module under.
 * @param code The compiled SPIR-V bytes.
 * @param stage The pipeline stage the module runs at.
 * @param resources The resource declarations the module consumes.
 * @return The registered module, or an error.
 */
func (ms *MaterialSystem) RegisterShader(name string, code []byte, stage metadata.ShaderStageFlags, resources []*metadata.ResourceDescription) (*metadata.ShaderModule, error) {
	if _, exists := ms.Lookup[name]; exists {
		err := fmt.Errorf("RegisterShader - a shader module named '%s' already exists", name)
		core.LogError(err.Error())
		return nil, err
	}

	handle, err := ms.renderer.Backend().ShaderModuleCreate(name, code, stage)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	module := &metadata.ShaderModule{
		Name:       name,
		StageFlags: stage,
		Handle:     handle,
		Resources:  resources,
	}
	ms.Lookup[name] = module
	return module, nil
}

/** @brief Returns the shader module registered under the given name. */
func (ms *MaterialSystem) GetShader(name string) (*metadata.ShaderModule, error) {
	module, ok := ms.Lookup[name]
	if !ok {
		err := fmt.Errorf("GetShader - no shader module named '%s' is registered", name)
		core.LogError(err.Error())
		return nil, err
	}
	return module, nil
}

/**
 * @brief Registers the given stage combination as a new effect. The stages'
 * resource declarations are reconciled and the per-tier descriptor set
 * layouts plus the pipeline layout are created up front; a binding conflict
 * fails the registration before any native object exists.
 *
 * @param stages The shader stages, in pipeline order.
 * @return The new effect's ID, or an error.
 */
func (ms *MaterialSystem) RegisterEffect(stages []*metadata.ShaderModule) (EffectID, error) {
	if len(stages) == 0 {
		err := fmt.Errorf("RegisterEffect - an effect needs at least one shader stage")
		core.LogError(err.Error())
		return EffectID(core.InvalidHandle), err
	}
	if uint32(ms.effects.Len()) >= ms.Config.MaxEffectCount {
		err := fmt.Errorf("RegisterEffect - the maximum of %d effects is reached", ms.Config.MaxEffectCount)
		core.LogError(err.Error())
		return EffectID(core.InvalidHandle), err
	}

	layouts, err := ms.renderer.BuildLayout(stages)
	if err != nil {
		core.LogError(err.Error())
		return EffectID(core.InvalidHandle), err
	}

	id := ms.effects.Acquire(&effect{
		stages:  stages,
		layouts: layouts,
	})
	core.LogDebug("registered effect %d with %d shader stages", id, len(stages))
	return EffectID(id), nil
}

func (ms *MaterialSystem) lookup(id EffectID) (*effect, error) {
	e, ok := ms.effects.Get(core.Handle(id))
	if !ok {
		return nil, fmt.Errorf("%w: effect %d", core.ErrUnknownEffect, id)
	}
	return e, nil
}

/** @brief Returns the layouts built for the effect when it was registered. */
func (ms *MaterialSystem) GetEffectLayouts(id EffectID) (*renderer.Layouts, error) {
	e, err := ms.lookup(id)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return e.layouts, nil
}

/**
 * @brief Returns the graphics pipeline of the effect, building it on the
 * first call and serving the cached handle afterwards.
 *
 * @param id The effect to build the pipeline for.
 * @return The pipeline handle, or an error.
 */
func (ms *MaterialSystem) GetEffectPipeline(id EffectID) (metadata.PipelineHandle, error) {
	e, err := ms.lookup(id)
	if err != nil {
		core.LogError(err.Error())
		return metadata.PipelineHandle(metadata.InvalidID), err
	}
	if e.hasPipeline {
		return e.pipeline, nil
	}

	config := &metadata.PipelineConfig{
		PipelineLayout: e.layouts.Pipeline,
		Stages:         e.stages,
		IsWireframe:    ms.Config.Wireframe,
	}
	for _, stage := range e.stages {
		if input, ok := stage.VertexInput(); ok {
			config.VertexInput = input
			break
		}
	}

	pipeline, err := ms.renderer.Backend().CreatePipeline(config)
	if err != nil {
		core.LogError(err.Error())
		return metadata.PipelineHandle(metadata.InvalidID), err
	}
	e.pipeline = pipeline
	e.hasPipeline = true
	return pipeline, nil
}

/**
 * @brief Allocates a descriptor pool and one Even/Odd descriptor set pair
 * per frequency tier for the effect, pointing every slot at its resource.
 * The caller owns the returned pool and must guarantee the GPU is not
 * reading the slots being written.
 */
func (ms *MaterialSystem) WriteDescriptorSets(id EffectID, writes []*metadata.ResourceBinding) (metadata.DescriptorPoolHandle, metadata.FrequencySet[containers.ParitySet[metadata.DescriptorSetHandle]], error) {
	e, err := ms.lookup(id)
	if err != nil {
		core.LogError(err.Error())
		var zero metadata.FrequencySet[containers.ParitySet[metadata.DescriptorSetHandle]]
		return 0, zero, err
	}
	return ms.renderer.GetDescriptors(e.layouts, writes)
}

/**
 * @brief Releases the effect, destroying its cached pipeline if one was
 * built. The effect's shader modules stay registered; other effects may
 * share them.
 */
func (ms *MaterialSystem) ReleaseEffect(id EffectID) error {
	e, err := ms.lookup(id)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	if e.hasPipeline {
		ms.renderer.Backend().DestroyPipeline(e.pipeline)
	}
	return ms.effects.Release(core.Handle(id))
}

/** @brief Shuts down the material system, releasing every effect still
 * registered and destroying every shader module. */
func (ms *MaterialSystem) Shutdown() error {
	for h := core.Handle(0); int(h) < ms.effects.Cap(); h++ {
		if _, ok := ms.effects.Get(h); ok {
			if err := ms.ReleaseEffect(EffectID(h)); err != nil {
				return err
			}
		}
	}
	for _, module := range ms.Lookup {
		ms.renderer.Backend().ShaderModuleDestroy(module.Handle)
	}
	ms.Lookup = make(map[string]*metadata.ShaderModule)
	return nil
}
