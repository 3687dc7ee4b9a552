package engine

import (
	"github.com/spaghettifunk/ferrite/engine/config"
)

/** @brief A game supplies the callbacks the engine loop drives. The engine
 * assigns itself to Engine before FnInitialize runs, giving the callbacks
 * access to every subsystem. */
type Game struct {
	Config *config.Config
	Engine *Engine
	State  interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
