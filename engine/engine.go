package engine

import (
	"fmt"

	"github.com/spaghettifunk/ferrite/engine/assets"
	"github.com/spaghettifunk/ferrite/engine/containers"
	"github.com/spaghettifunk/ferrite/engine/core"
	"github.com/spaghettifunk/ferrite/engine/platform"
	"github.com/spaghettifunk/ferrite/engine/renderer"
	"github.com/spaghettifunk/ferrite/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	materials    *systems.MaterialSystem

	// frameParity selects the descriptor set and uniform buffer copy of the
	// current frame; it advances once per rendered frame.
	frameParity containers.Parity

	width    uint32
	height   uint32
	clock    *core.Clock
	lastTime float64
}

func New(g *Game) (*Engine, error) {
	core.SetLogLevel(g.Config.App.LogLevel)

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		platform:     p,
		isRunning:    false,
		isSuspended:  false,
		width:        g.Config.Window.Width,
		height:       g.Config.Window.Height,
	}
	g.Engine = e
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting

	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)
	core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, e, e.onAssetChanged)

	cfg := e.gameInstance.Config
	if err := e.platform.Startup(cfg.App.Name,
		cfg.Window.PosX, cfg.Window.PosY,
		cfg.Window.Width, cfg.Window.Height); err != nil {
		return err
	}

	r, err := renderer.Initialize(cfg.App.Name, e.width, e.height, cfg.Renderer.SwapchainImages, e.platform)
	if err != nil {
		return err
	}
	e.renderer = r

	am, err := assets.NewAssetManager(cfg.Assets.Dir, cfg.Assets.Watch)
	if err != nil {
		return err
	}
	e.assetManager = am

	ms, err := systems.NewMaterialSystem(&systems.MaterialSystemConfig{
		MaxEffectCount: 1000,
		Wireframe:      cfg.Renderer.Wireframe,
	}, r)
	if err != nil {
		return err
	}
	e.materials = ms

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()
		e.assetManager.Pump()

		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down.")
				e.isRunning = false
				break
			}
		}

		render := e.gameInstance.FnRender
		if err := e.renderer.DrawFrame(delta, func() error {
			if render != nil {
				return render(delta)
			}
			return nil
		}); err != nil {
			core.LogError("Game render failed, shutting down.")
			e.isRunning = false
			break
		}

		// The finished frame flips which half of every parity-redundant
		// resource the next frame may touch.
		e.frameParity.Swap()

		e.clock.Update()
		core.MetricsUpdate(e.clock.Elapsed() - currentTime)
		e.lastTime = currentTime
	}

	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}

	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	core.EventUnregister(core.EVENT_CODE_KEY_PRESSED, e)
	core.EventUnregister(core.EVENT_CODE_RESIZED, e)
	core.EventUnregister(core.EVENT_CODE_ASSET_CHANGED, e)

	if e.materials != nil {
		if err := e.materials.Shutdown(); err != nil {
			return err
		}
	}
	if e.assetManager != nil {
		if err := e.assetManager.Shutdown(); err != nil {
			return err
		}
	}
	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			return err
		}
	}
	return e.platform.Shutdown()
}

/** @brief The renderer front-end. Valid after Initialize. */
func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

/** @brief The material system. Valid after Initialize. */
func (e *Engine) Materials() *systems.MaterialSystem {
	return e.materials
}

/** @brief The asset manager. Valid after Initialize. */
func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

// FrameParity reports which half of parity-redundant resources the frame
// being recorded may touch.
func (e *Engine) FrameParity() containers.Parity {
	return e.frameParity
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	keyCode := context.U32[0]
	if keyCode == platform.KeyEscape {
		// NOTE: Technically firing an event to itself, but there may be
		// other listeners.
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		return true
	}
	core.LogDebug("key %d pressed in window", keyCode)
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	width := context.U32[0]
	height := context.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization.
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	if err := e.renderer.OnResize(uint16(width), uint16(height)); err != nil {
		core.LogError(err.Error())
	}
	return false
}

func (e *Engine) onAssetChanged(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	core.LogInfo(fmt.Sprintf("asset '%s' changed on disk", context.Str))
	return false
}
