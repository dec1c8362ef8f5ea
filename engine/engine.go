package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/scene"

	// OpenGL backend
	_ "github.com/spaghettifunk/lumen/engine/renderer/opengl/glbackend"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Vertical field of view of the engine camera, in degrees.
const fieldOfView = 45.0

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *core.Config
	isRunning    bool
	quit         atomic.Bool
	isSuspended  bool
	window       *platform.Window
	renderer     renderer.Renderer
	scene        *scene.Scene
	camera       *scene.Camera
	controller   scene.CameraController
	watcher      *assets.ShaderWatcher
	clock        *core.Clock
	metrics      *core.Metrics
	width        int
	height       int
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = &ApplicationConfig{}
	}
	cfg, err := g.ApplicationConfig.loadConfig()
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(cfg.Log.Level)

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}, nil
}

func (e *Engine) Config() *core.Config           { return e.config }
func (e *Engine) Window() *platform.Window       { return e.window }
func (e *Engine) Renderer() renderer.Renderer    { return e.renderer }
func (e *Engine) Scene() *scene.Scene            { return e.scene }
func (e *Engine) Camera() *scene.Camera          { return e.camera }
func (e *Engine) Metrics() *core.Metrics         { return e.metrics }
func (e *Engine) Stage() Stage                   { return e.currentStage }
func (e *Engine) Watcher() *assets.ShaderWatcher { return e.watcher }

// SetCameraController makes c drive the engine camera every frame. Nil disables it.
func (e *Engine) SetCameraController(c scene.CameraController) {
	e.controller = c
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	// initialize events
	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	core.EventRegister(core.EventCodeApplicationQuit, e, e.onEvent)
	core.EventRegister(core.EventCodeResized, e, e.onResized)

	w, err := platform.Startup(platform.WindowOptionsFromConfig(e.config.Window))
	if err != nil {
		return err
	}
	e.window = w
	e.width, e.height = w.FramebufferSize()

	kind, err := renderer.ParseRendererType(e.config.Renderer.Backend)
	if err != nil {
		return err
	}
	opts, err := renderer.OptionsFromConfig(e.config, w, w)
	if err != nil {
		return err
	}
	opts.Width, opts.Height = e.width, e.height
	r, err := renderer.New(kind, opts)
	if err != nil {
		return fmt.Errorf("failed to create %s renderer: %w", kind, err)
	}
	e.renderer = r

	e.scene = scene.NewScene()
	e.camera = scene.NewCamera()
	e.camera.SetPerspective(fieldOfView, aspectRatio(e.width, e.height))

	if g := e.gameInstance; g.FnInitialize != nil {
		if err := g.FnInitialize(e); err != nil {
			return err
		}
	}

	if e.config.Assets.HotReload {
		if err := e.watchShaders(); err != nil {
			core.LogWarn("shader hot reload disabled: %s", err)
		}
	}

	if g := e.gameInstance; g.FnOnResize != nil {
		if err := g.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// watchShaders reloads the file backed materials of the scene when their sources change.
func (e *Engine) watchShaders() error {
	sw, err := assets.NewShaderWatcher()
	if err != nil {
		return err
	}
	for _, m := range e.scene.ResourceManager().Materials() {
		if err := sw.Watch(m); err != nil {
			sw.Close()
			return err
		}
	}
	core.LogInfo("watching %d shader files", sw.Watched())
	e.watcher = sw
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.isRunning = true
	e.clock.Start()

	for e.isRunning {
		e.window.PumpMessages()
		if e.window.ShouldClose() || e.quit.Load() {
			e.isRunning = false
			break
		}

		delta := e.clock.Restart()
		if e.isSuspended {
			// Nothing to draw into, give the time back to the OS.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if e.watcher != nil {
			e.watcher.Poll()
		}

		if err := e.UpdateScene(delta); err != nil {
			core.LogError("game update failed, shutting down: %s", err)
			e.isRunning = false
			break
		}
		if err := e.UpdateView(); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			e.isRunning = false
			break
		}
		e.metrics.Update(delta.Seconds())
	}

	return nil
}

// Quit asks the main loop to stop after the current frame. Safe to call from any goroutine.
func (e *Engine) Quit() {
	e.quit.Store(true)
}

// UpdateScene advances the game and the scene controllers by delta.
func (e *Engine) UpdateScene(delta time.Duration) error {
	if g := e.gameInstance; g.FnUpdate != nil {
		if err := g.FnUpdate(delta); err != nil {
			return err
		}
	}
	if e.controller != nil && e.controller.Update(e.camera, delta) {
		e.scene.MarkChanged()
	}
	e.scene.UpdateScene(delta)
	core.InputUpdate()
	return nil
}

/**
 * @brief Draws the scene as seen by the camera and presents it. Caches whose
 * resource was destroyed during the frame are reclaimed afterwards.
 */
func (e *Engine) UpdateView() error {
	start := time.Now()
	if err := e.renderer.DrawAll(e.scene, e.camera); err != nil {
		return err
	}
	e.window.SwapBuffers()
	e.renderer.CleanupRenderCache()

	var ctx core.EventContext
	ctx.Data.F64[0] = float64(time.Since(start).Microseconds()) / 1000.0
	core.EventFire(core.EventCodeFrameRendered, e, ctx)
	return nil
}

// Shutdown releases the game, then the renderer while its context is alive, then the window.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if g := e.gameInstance; g.FnShutdown != nil {
		if err := g.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.renderer != nil {
		e.renderer.DeleteAllResources()
		if err := e.renderer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.scene != nil {
		e.scene.Close()
	}
	if e.window != nil {
		e.window.Shutdown()
	}
	core.InputReset()
	core.EventUnregister(core.EventCodeApplicationQuit, e)
	core.EventUnregister(core.EventCodeResized, e)
	if err := core.EventShutdown(); err != nil {
		errs = append(errs, err)
	}

	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order) of the window framebuffer.
func (e *Engine) GetFramebufferSize() (int, int) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code == core.EventCodeApplicationQuit {
		core.LogInfo("EventCodeApplicationQuit received, shutting down.")
		e.isRunning = false
	}
	// Other listeners may want to know too.
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	width := int(data.Data.U32[0])
	height := int(data.Data.U32[1])
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}

	e.renderer.Resize(width, height)
	e.camera.SetPerspective(fieldOfView, aspectRatio(width, height))
	if g := e.gameInstance; g.FnOnResize != nil {
		if err := g.FnOnResize(width, height); err != nil {
			core.LogError("game resize failed: %s", err)
		}
	}
	return false
}

func aspectRatio(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
