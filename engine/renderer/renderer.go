package renderer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case DirectX:
		return "directx"
	case Metal:
		return "metal"
	case OpenGL:
		return "opengl"
	}
	return fmt.Sprintf("RendererType(%d)", uint8(t))
}

func ParseRendererType(name string) (RendererType, error) {
	for _, t := range []RendererType{Vulkan, DirectX, Metal, OpenGL} {
		if strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", core.ErrUnsupportedBackend, name)
}

/**
 * @brief Draws scenes and owns the GPU caches it builds on resources.
 *
 * All methods must be called from the render thread. Caches on shared
 * resources are not locked, rendering from several threads or contexts at
 * once is not supported.
 */
type Renderer interface {
	resources.CacheDeleter

	// ID is the identity the renderer stores its caches under.
	ID() core.Identifier
	// BeginDrawing opens a frame. Opening a frame while one is open fails.
	BeginDrawing(camera *scene.Camera, sc *scene.Scene) error
	// Draw queues one visible group of the open frame.
	Draw(item scene.DrawItem)
	// EndDrawing runs the passes over the queued groups and closes the frame.
	EndDrawing() error
	// DrawAll draws the whole scene as seen from camera in one frame.
	DrawAll(sc *scene.Scene, camera *scene.Camera) error
	// DeleteAllResources frees every cache and GPU object the renderer owns.
	DeleteAllResources()
	// CleanupRenderCache frees the caches whose resource has been destroyed.
	CleanupRenderCache()
	Resize(width, height int)
	Close() error
}

type Options struct {
	Context  Context
	Provider ContextProvider
	// MaxLights is the number of closest lights uploaded per draw, at most core.MaxLightSlots.
	MaxLights                int
	Translucency             TranslucencyMode
	ClearColor               math.Vec4
	DeferredDeletionCapacity int
	Width                    int
	Height                   int
}

func OptionsFromConfig(cfg *core.Config, ctx Context, provider ContextProvider) (Options, error) {
	translucency, err := ParseTranslucencyMode(cfg.Renderer.Translucency)
	if err != nil {
		return Options{}, err
	}
	cc := cfg.Renderer.ClearColor
	return Options{
		Context:                  ctx,
		Provider:                 provider,
		MaxLights:                cfg.Renderer.MaxLights,
		Translucency:             translucency,
		ClearColor:               math.NewVec4(cc[0], cc[1], cc[2], cc[3]),
		DeferredDeletionCapacity: cfg.Renderer.DeferredDeletionCapacity,
		Width:                    cfg.Window.Width,
		Height:                   cfg.Window.Height,
	}, nil
}

// Factory builds a renderer for one backend.
type Factory func(opts Options) (Renderer, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[RendererType]Factory{}
)

// Register makes a backend available to New. Backends call it from init.
func Register(kind RendererType, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("renderer: Register factory for " + kind.String() + " is nil")
	}
	factories[kind] = factory
}

func New(kind RendererType, opts Options) (Renderer, error) {
	factoriesMu.RLock()
	factory, ok := factories[kind]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedBackend, kind)
	}
	return factory(opts)
}

// DrawScene brackets one frame around a walk of sc. Backends implement
// DrawAll with it.
func DrawScene(r Renderer, sc *scene.Scene, camera *scene.Camera) error {
	if err := r.BeginDrawing(camera, sc); err != nil {
		return err
	}
	scene.Walk(sc, r.Draw)
	return r.EndDrawing()
}
