package engine

import "time"

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize builds the game content. The engine's scene, camera and window exist when it runs.
type Initialize func(e *Engine) error
type Update func(deltaTime time.Duration) error
type OnResize func(width int, height int) error
type Shutdown func() error
