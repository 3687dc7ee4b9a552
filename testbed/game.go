/*
A small demo game exercising the engine: one textured effect with a
per-frame uniform buffer pair and a single albedo texture.
*/
package testbed

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/spaghettifunk/ferrite/engine"
	"github.com/spaghettifunk/ferrite/engine/config"
	"github.com/spaghettifunk/ferrite/engine/containers"
	"github.com/spaghettifunk/ferrite/engine/core"
	amath "github.com/spaghettifunk/ferrite/engine/math"
	"github.com/spaghettifunk/ferrite/engine/renderer/metadata"
	"github.com/spaghettifunk/ferrite/engine/systems"
)

type TestGame struct {
	*engine.Game
}

// mvpUniform is the global uniform block of the basic shaders: model, view
// and projection matrices, std140-compatible.
type mvpUniform struct {
	Model      amath.Mat4
	View       amath.Mat4
	Projection amath.Mat4
}

const mvpStride = uint64(unsafe.Sizeof(mvpUniform{}))

type gameState struct {
	effect   systems.EffectID
	pipeline metadata.PipelineHandle

	uniformBuffers containers.ParitySet[metadata.BufferHandle]
	descriptorSets metadata.FrequencySet[containers.ParitySet[metadata.DescriptorSetHandle]]
	descriptorPool metadata.DescriptorPoolHandle
	texture        metadata.TextureHandle

	transform  *amath.Transform
	view       amath.Mat4
	projection amath.Mat4
}

func NewTestGame(cfg *config.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: cfg,
			State: &gameState{
				transform: amath.TransformCreate(),
			},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (tg *TestGame) Initialize() error {
	state := tg.State.(*gameState)
	e := tg.Engine
	materials := e.Materials()

	// Shader stages and the resources they declare.
	vertCode, err := e.Assets().LoadShader("basic.vert.spv")
	if err != nil {
		return err
	}
	fragCode, err := e.Assets().LoadShader("basic.frag.spv")
	if err != nil {
		return err
	}

	mvp := metadata.NewUniformDescription("mvp", 0, metadata.DescriptorFrequencyGlobal, mvpStride)
	albedo := metadata.NewSampledImageDescription("albedo", 0, metadata.DescriptorFrequencyMaterial)
	vertexInput := metadata.NewVertexInputDescription("vertex",
		[]metadata.VertexInputBinding{
			{Binding: 0, Stride: 8 * 4},
		},
		[]metadata.VertexInputAttribute{
			{Binding: 0, Location: 0, Format: metadata.VertexAttributeVec3, Offset: 0},
			{Binding: 0, Location: 1, Format: metadata.VertexAttributeVec3, Offset: 3 * 4},
			{Binding: 0, Location: 2, Format: metadata.VertexAttributeVec2, Offset: 6 * 4},
		})

	vert, err := materials.RegisterShader("basic.vert", vertCode, metadata.ShaderStageVertex,
		[]*metadata.ResourceDescription{mvp, vertexInput})
	if err != nil {
		return err
	}
	frag, err := materials.RegisterShader("basic.frag", fragCode, metadata.ShaderStageFragment,
		[]*metadata.ResourceDescription{mvp, albedo})
	if err != nil {
		return err
	}

	state.effect, err = materials.RegisterEffect([]*metadata.ShaderModule{vert, frag})
	if err != nil {
		return err
	}

	// One uniform buffer per in-flight frame; the GPU reads one half while
	// the CPU writes the other.
	backend := e.Renderer().Backend()
	state.uniformBuffers, err = containers.ParitySetFromFnErr(func() (metadata.BufferHandle, error) {
		return backend.UniformBufferCreate(mvpStride)
	})
	if err != nil {
		return err
	}

	img, err := e.Assets().LoadImage("albedo.png")
	if err != nil {
		return err
	}
	state.texture, err = backend.TextureCreate(img.Pixels, img.Width, img.Height, img.ChannelCount)
	if err != nil {
		return err
	}

	writes := []*metadata.ResourceBinding{
		{
			Description: mvp,
			Reference: containers.ParityOf(containers.NewParitySet(
				metadata.BufferRef(state.uniformBuffers.Even),
				metadata.BufferRef(state.uniformBuffers.Odd),
			)),
		},
		{
			Description: albedo,
			Reference:   containers.SingleOf(metadata.ImageRef(state.texture)),
		},
	}
	state.descriptorPool, state.descriptorSets, err = materials.WriteDescriptorSets(state.effect, writes)
	if err != nil {
		return err
	}

	state.pipeline, err = materials.GetEffectPipeline(state.effect)
	if err != nil {
		return err
	}

	state.view = amath.NewMat4LookAt(amath.NewVec3(0, 1, 3), amath.NewVec3Zero(), amath.NewVec3Up())
	core.LogInfo("testbed initialized, effect %d pipeline %d", state.effect, state.pipeline)
	return nil
}

func (tg *TestGame) Update(deltaTime float64) error {
	state := tg.State.(*gameState)

	rotation := amath.NewQuatFromAxisAngle(amath.NewVec3Up(), float32(0.5*deltaTime), false)
	state.transform.Rotate(rotation)

	uniform := mvpUniform{
		Model:      state.transform.GetWorld(),
		View:       state.view,
		Projection: state.projection,
	}

	// Write the half of the buffer pair the GPU is not reading this frame.
	buffer := state.uniformBuffers.Get(tg.Engine.FrameParity())
	return tg.Engine.Renderer().Backend().BufferWrite(buffer, 0, marshalUniform(&uniform))
}

func (tg *TestGame) Render(deltaTime float64) error {
	// Command recording binds state.pipeline and the frame parity's
	// descriptor sets once mesh drawing lands.
	return nil
}

func (tg *TestGame) OnResize(width, height uint32) error {
	state := tg.State.(*gameState)
	if height == 0 {
		return nil
	}
	aspect := float32(width) / float32(height)
	state.projection = amath.NewMat4Perspective(amath.DegToRad(45.0), aspect, 0.1, 1000.0)
	return nil
}

func (tg *TestGame) Shutdown() error {
	state := tg.State.(*gameState)
	backend := tg.Engine.Renderer().Backend()

	backend.DestroyDescriptorPool(state.descriptorPool)
	for _, buffer := range state.uniformBuffers.Slice() {
		backend.BufferDestroy(buffer)
	}
	backend.TextureDestroy(state.texture)
	return nil
}

func marshalUniform(u *mvpUniform) []byte {
	out := make([]byte, 0, mvpStride)
	for _, mat := range []amath.Mat4{u.Model, u.View, u.Projection} {
		for _, f := range mat.Data {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}
