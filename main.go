/*
Boots the engine with the testbed game. The engine configuration is read
from engine.toml next to the binary; defaults apply when it is absent.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/ferrite/engine"
	"github.com/spaghettifunk/ferrite/engine/config"
	"github.com/spaghettifunk/ferrite/testbed"
)

func main() {
	cfg, err := config.Load("engine.toml")
	if err != nil {
		panic(err)
	}

	tb := testbed.NewTestGame(cfg)

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		<-sigCh
		_ = e.Shutdown()
	}()

	if err := e.Run(); err != nil {
		panic(err)
	}

	if err := e.Shutdown(); err != nil {
		panic(err)
	}
}
