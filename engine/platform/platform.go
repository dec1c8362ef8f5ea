package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

var (
	_ renderer.Context         = (*Window)(nil)
	_ renderer.ContextProvider = (*Window)(nil)
)

/**
 * @brief A glfw window owning an OpenGL 3.3 core context. It is both the
 * context a renderer draws with and the provider reporting which window is
 * current on the calling thread.
 */
type Window struct {
	handle    *glfw.Window
	destroyed bool
}

type WindowOptions struct {
	Title   string
	X, Y    int
	Width   int
	Height  int
	VSync   bool
	Samples int
}

func WindowOptionsFromConfig(cfg core.WindowConfig) WindowOptions {
	return WindowOptions{
		Title:   cfg.Title,
		X:       cfg.X,
		Y:       cfg.Y,
		Width:   cfg.Width,
		Height:  cfg.Height,
		VSync:   cfg.VSync,
		Samples: cfg.Samples,
	}
}

// Startup initializes glfw and opens a window with its context current.
func Startup(opts WindowOptions) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, opts.Samples)
	// The translucent pass copies the default depth buffer into its own.
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.StencilBits, 8)

	handle, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	w := &Window{handle: handle}

	handle.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	handle.SetKeyCallback(w.keyCallback)
	handle.SetFramebufferSizeCallback(w.framebufferSizeCallback)
	handle.SetCloseCallback(w.closeCallback)
	handle.SetPos(opts.X, opts.Y)
	handle.Show()

	core.LogInfo("window %q created (%dx%d)", opts.Title, opts.Width, opts.Height)
	return w, nil
}

// Shutdown destroys the window and terminates glfw. The context is invalid afterwards.
func (w *Window) Shutdown() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	if glfw.GetCurrentContext() == w.handle {
		glfw.DetachCurrentContext()
	}
	w.handle.Destroy()
	glfw.Terminate()
}

func (w *Window) MakeCurrent() {
	if !w.destroyed {
		w.handle.MakeContextCurrent()
	}
}

func (w *Window) DoneCurrent() {
	if w.IsCurrent() {
		glfw.DetachCurrentContext()
	}
}

func (w *Window) IsCurrent() bool {
	return !w.destroyed && glfw.GetCurrentContext() == w.handle
}

func (w *Window) Valid() bool { return !w.destroyed }

// Current reports this window when its context is current, nil otherwise.
// Only one window is ever opened, so any other current context is foreign.
func (w *Window) Current() renderer.Context {
	if w.IsCurrent() {
		return w
	}
	return nil
}

func (w *Window) ShouldClose() bool {
	return w.destroyed || w.handle.ShouldClose()
}

func (w *Window) SwapBuffers() {
	if !w.destroyed {
		w.handle.SwapBuffers()
	}
}

// PumpMessages processes pending window events, firing the matching engine events.
func (w *Window) PumpMessages() {
	glfw.PollEvents()
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	if w.destroyed {
		return 0, 0
	}
	return w.handle.GetFramebufferSize()
}

// Time returns the seconds elapsed since glfw was initialized.
func Time() float64 {
	return glfw.GetTime()
}

func (w *Window) keyCallback(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.handle.SetShouldClose(true)
		core.EventFire(core.EventCodeApplicationQuit, w, core.EventContext{})
		return
	}
	// Repeats carry no state change.
	if key < 0 || action == glfw.Repeat {
		return
	}
	core.InputProcessKey(core.KeyCode(key), action == glfw.Press)
}

func (w *Window) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	var ctx core.EventContext
	ctx.Data.U32[0] = uint32(width)
	ctx.Data.U32[1] = uint32(height)
	core.EventFire(core.EventCodeResized, w, ctx)
}

func (w *Window) closeCallback(_ *glfw.Window) {
	core.EventFire(core.EventCodeApplicationQuit, w, core.EventContext{})
}
