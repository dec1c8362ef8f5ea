package testbed

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine  *engine.Engine
	elapsed time.Duration
	pulse   []*resources.MaterialProperties
	fps     float64
}

func NewTestGame(configPath string) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:       "Lumen Testbed",
				ConfigPath: configPath,
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

/**
 * @brief Builds the demo scene: a ring of spinning opaque cubes, translucent
 * panes crossing each other, axis lines, orbiting lights and a skybox.
 */
func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.state()
	state.engine = e

	sc := e.Scene()
	mgr := sc.ResourceManager()

	camera := e.Camera()
	camera.SetPosition(math.NewVec3(0, 4, 12))
	camera.SetOrientationTarget(math.NewVec3(0, 0, 0))

	fly := scene.NewKeyboardCameraController(nil)
	fly.MoveSpeed = 4
	fly.HomePosition = camera.Position()
	e.SetCameraController(fly)

	skybox, err := loadSkybox(e.Config().Assets.ShaderDir, mgr)
	if err != nil {
		return err
	}
	sc.SetSkybox(skybox)

	if err := g.addCubes(sc, mgr); err != nil {
		return err
	}
	g.addPanes(sc, mgr, skybox)
	addAxes(sc, mgr)
	addLights(sc)

	sc.Run()
	return nil
}

func (g *TestGame) addCubes(sc *scene.Scene, mgr *resources.Manager) error {
	pulse := resources.NewMaterial(mgr)
	dir := g.state().engine.Config().Assets.ShaderDir
	if err := pulse.SetShaderFile(resources.VertexShader, filepath.Join(dir, "Pulse.vert")); err != nil {
		return err
	}
	if err := pulse.SetShaderFile(resources.FragmentShader, filepath.Join(dir, "Pulse.frag")); err != nil {
		return err
	}
	mgr.RegisterMaterial("Pulse", pulse)

	cube := resources.StandardMesh(resources.CubeIndexedMesh)
	basic := resources.StandardMaterial(resources.Basic3DMaterial)

	const count = 6
	for i := 0; i < count; i++ {
		angle := 2 * math32.Pi * float32(i) / count
		ent := sc.AddChild(fmt.Sprintf("cube-%d", i))
		ent.SetPosition(math.NewVec3(4*math32.Cos(angle), 0, 4*math32.Sin(angle)))
		ent.AddController(&scene.SpinController{Axis: math.NewVec3(0, 1, 0), Speed: 0.5 + 0.2*float32(i)})

		props := resources.NewMaterialProperties(mgr)
		props.SetAlbedo(math.NewVec4(0.3+0.1*float32(i), 0.5, 0.9-0.1*float32(i), 1))
		props.SetPBR(0, 0.3+0.1*float32(i), 1)
		mgr.RegisterMaterialProperties(ent.Name+"-props", props)

		model := scene.NewModel("cube")
		group := model.AddGroup("body")
		group.SetMesh(cube)
		group.SetMaterialProperties(props)
		if i%2 == 0 {
			group.SetMaterial(pulse)
			props.SetRawValue("GlowColor", math.NewVec3(1, 0.6, 0.2))
			g.state().pulse = append(g.state().pulse, props)
		} else {
			group.SetMaterial(basic)
		}
		ent.SetModel(model)
	}
	return nil
}

func (g *TestGame) addPanes(sc *scene.Scene, mgr *resources.Manager, skybox *resources.Cubemap) {
	quad := resources.StandardMesh(resources.UnitQuadMesh)
	glass := resources.StandardMaterial(resources.SampleTranslucentMaterial)

	tints := []math.Vec4{
		math.NewVec4(1, 0.2, 0.2, 1),
		math.NewVec4(0.2, 1, 0.2, 1),
		math.NewVec4(0.2, 0.2, 1, 1),
	}
	panes := sc.AddChild("panes")
	panes.SetScale(math.NewVec3(3, 3, 3))
	for i, tint := range tints {
		props := resources.NewMaterialProperties(mgr)
		props.SetAlbedo(tint)
		props.SetOpacity(0.4)
		props.SetEnvironmentCubemap(skybox)
		mgr.RegisterMaterialProperties(fmt.Sprintf("pane-%d", i), props)

		ent := panes.AddChild(fmt.Sprintf("pane-%d", i))
		ent.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), float32(i)*math32.Pi/3, true))

		model := scene.NewModel("pane")
		group := model.AddGroup("glass")
		group.SetMesh(quad)
		group.SetMaterial(glass)
		group.SetMaterialProperties(props)
		ent.SetModel(model)
	}
}

func addAxes(sc *scene.Scene, mgr *resources.Manager) {
	lg := resources.NewLineGroup(mgr)
	lg.SetContents(resources.LinePosition3D | resources.LineColor4D)
	lg.SetDrawMode(resources.Lines)
	lg.SetThickness(3)

	var vertices []resources.LineVertex
	axes := []math.Vec3{math.NewVec3(1, 0, 0), math.NewVec3(0, 1, 0), math.NewVec3(0, 0, 1)}
	for _, axis := range axes {
		c := math.NewVec4(axis.X, axis.Y, axis.Z, 1)
		vertices = append(vertices,
			resources.LineVertex{Position3D: math.NewVec3(0, 0, 0), Color4D: c},
			resources.LineVertex{Position3D: axis.MulScalar(2), Color4D: c},
		)
	}
	lg.SetVertices(vertices)
	mgr.RegisterLineGroup("axes", lg)

	model := scene.NewModel("axes")
	model.AddGroup("lines").SetLineGroup(lg)
	sc.AddChild("axes").SetModel(model)
}

func addLights(sc *scene.Scene) {
	colors := []math.Vec4{
		math.NewVec4(1, 0.9, 0.8, 20),
		math.NewVec4(0.4, 0.6, 1, 12),
		math.NewVec4(1, 0.3, 0.3, 8),
	}
	for i, c := range colors {
		l := sc.GetOrCreateLight(i)
		l.Color = c
	}
	sc.AddController(&orbitLights{radius: 6, height: 3})
}

// orbitLights moves every light of the scene on a horizontal circle.
type orbitLights struct {
	radius, height float32
	t              float32
}

func (o *orbitLights) Update(s *scene.Scene, dt time.Duration) bool {
	o.t += float32(dt.Seconds())
	for i := 0; ; i++ {
		l, ok := s.Light(i)
		if !ok {
			break
		}
		angle := o.t*0.7 + 2*math32.Pi*float32(i)/3
		l.Position = math.NewVec3(o.radius*math32.Cos(angle), o.height, o.radius*math32.Sin(angle))
	}
	return true
}

// loadSkybox reads skybox/<face>.png next to the shaders, or builds a gradient sky.
func loadSkybox(dir string, mgr *resources.Manager) (*resources.Cubemap, error) {
	names := [resources.CubemapFaceCount]string{"negx", "negy", "negz", "posx", "posy", "posz"}
	var faces [resources.CubemapFaceCount]string
	for i, n := range names {
		faces[i] = filepath.Join(dir, "..", "skybox", n+".png")
	}
	if _, err := os.Stat(faces[0]); err == nil {
		return assets.LoadCubemap("sky", faces, mgr)
	}

	core.LogInfo("no skybox images found, using a gradient sky")
	sky := resources.NewCubemap(mgr)
	for f := resources.CubemapFace(0); f < resources.CubemapFaceCount; f++ {
		sky.SetFace(f, gradientFace(f, 64))
	}
	mgr.RegisterCubemap("sky", sky)
	return sky, nil
}

func gradientFace(face resources.CubemapFace, size int) resources.Image {
	zenith := color.NRGBA{R: 40, G: 80, B: 170, A: 255}
	horizon := color.NRGBA{R: 190, G: 210, B: 230, A: 255}
	ground := color.NRGBA{R: 60, G: 55, B: 50, A: 255}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		var c color.NRGBA
		switch face {
		case resources.CubemapPosY:
			c = zenith
		case resources.CubemapNegY:
			c = ground
		default:
			// Rows run from the top of the face down to the horizon and below.
			t := float32(y) / float32(size-1)
			if t < 0.5 {
				c = lerpColor(zenith, horizon, t*2)
			} else {
				c = lerpColor(horizon, ground, (t-0.5)*2)
			}
		}
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return resources.ImageFrom(img)
}

func lerpColor(a, b color.NRGBA, t float32) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func (g *TestGame) Update(deltaTime time.Duration) error {
	state := g.state()
	state.elapsed += deltaTime
	for _, props := range state.pulse {
		props.SetRawValue("Time", float32(state.elapsed.Seconds()))
	}

	if fps := state.engine.Metrics().FPS(); fps != state.fps {
		state.fps = fps
		core.LogDebug("fps: %.0f, frame: %.2fms", fps, state.engine.Metrics().FrameTime())
	}
	return nil
}

func (g *TestGame) OnResize(width int, height int) error {
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed shutting down after %s", g.state().elapsed.Round(time.Second))
	return nil
}
