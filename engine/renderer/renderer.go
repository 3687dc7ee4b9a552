package renderer

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/ferrite/engine/core"
	"github.com/spaghettifunk/ferrite/engine/platform"
	"github.com/spaghettifunk/ferrite/engine/renderer/vulkan"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
)

// Renderer is the front-end every system talks to. It owns the backend and
// layers the layout/descriptor building of layout.go on top of it.
type Renderer struct {
	backend RendererBackend
}

var initRenderer sync.Once
var renderer *Renderer

// Initialize boots the default (Vulkan) backend against the platform window.
// swapchainImages is the requested swapchain image count; zero lets the
// backend pick from the surface capabilities.
func Initialize(appName string, appWidth, appHeight, swapchainImages uint32, p *platform.Platform) (*Renderer, error) {
	initRenderer.Do(func() {
		renderer = &Renderer{
			backend: vulkan.New(p, swapchainImages),
		}
	})
	if err := renderer.backend.Initialize(appName, appWidth, appHeight); err != nil {
		return nil, err
	}
	return renderer, nil
}

// NewWithBackend wires an explicit backend. Used by tests and by callers
// embedding the engine with a non-default device.
func NewWithBackend(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint16) error {
	return r.backend.Resized(width, height)
}

func (r *Renderer) BeginFrame(deltaTime float64) error {
	return r.backend.BeginFrame(deltaTime)
}

func (r *Renderer) EndFrame(deltaTime float64) error {
	return r.backend.EndFrame(deltaTime)
}

// DrawFrame runs one begin/render/end cycle. A booting swapchain is not an
// error; the frame is simply skipped while the new swapchain settles.
func (r *Renderer) DrawFrame(deltaTime float64, render func() error) error {
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			return nil
		}
		core.LogError(err.Error())
		return err
	}
	if render != nil {
		if err := render(); err != nil {
			return err
		}
	}
	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("EndFrame failed. Application shutting down...")
		return err
	}
	return nil
}
