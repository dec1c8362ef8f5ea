/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/testbed"
)

func main() {
	configPath := flag.String("config", "lumen.toml", "path of the engine configuration")
	flag.Parse()

	tb := testbed.NewTestGame(*configPath)

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("failed to initialize engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// GL calls must stay on the main thread, the loop stops itself and
	// shutdown runs below.
	go func() {
		<-sigCh
		e.Quit()
	}()

	// run engine
	if err := e.Run(); err != nil {
		core.LogError("engine stopped: %s", err)
	}
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
		os.Exit(1)
	}
}
