package opengl

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// DrawBuffersBlendExtension provides the per target blend functions of the
// OIT accumulation pass on a 3.3 context.
const DrawBuffersBlendExtension = "GL_ARB_draw_buffers_blend"

// FrameStats describes the last rendered frame.
type FrameStats struct {
	DrawCalls    int
	SceneUploads int
	Passes       []renderer.Pass
}

/**
 * @brief OpenGL 3.3 core renderer. Caches are built lazily on first draw and
 * stored on the resources under the renderer's identity.
 */
type RendererGL struct {
	*renderer.Base
	gl   Functions
	opts renderer.Options

	width, height int32

	sceneUniforms   uniformBuffer
	lastScene       renderer.SceneUniforms
	sceneUploaded   bool
	oit             oitTargets
	translucency    renderer.TranslucencyMode
	stats           FrameStats
	compositeWarned bool
}

/**
 * @brief Creates an OpenGL renderer drawing into opts.Context.
 * @param gl The bound GL entry points.
 * @param opts The renderer options.
 */
func New(gl Functions, opts renderer.Options) (*RendererGL, error) {
	if gl == nil {
		return nil, fmt.Errorf("%w: no OpenGL functions", core.ErrUnsupportedBackend)
	}
	r := &RendererGL{
		gl:           gl,
		opts:         opts,
		width:        int32(opts.Width),
		height:       int32(opts.Height),
		translucency: opts.Translucency,
	}
	if r.translucency == renderer.TranslucencyOIT && !gl.HasExtension(DrawBuffersBlendExtension) {
		core.LogWarn("%s not supported, falling back to blending", DrawBuffersBlendExtension)
		r.translucency = renderer.TranslucencyBlend
	}
	r.Base = renderer.NewBase(r, opts, r.free)
	core.LogInfo("OpenGL renderer %s created (%s translucency)", r.ID(), r.translucency)
	return r, nil
}

// Factory adapts New to renderer.Register. load resolves the GL entry
// points once the context is current.
func Factory(load func() (Functions, error)) renderer.Factory {
	return func(opts renderer.Options) (renderer.Renderer, error) {
		restore, err := renderer.SwitchContext(opts.Provider, opts.Context)
		if err != nil {
			return nil, err
		}
		gl, err := load()
		restore()
		if err != nil {
			return nil, err
		}
		r, err := New(gl, opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

func (r *RendererGL) Stats() FrameStats { return r.stats }

func (r *RendererGL) Translucency() renderer.TranslucencyMode { return r.translucency }

// free releases the GPU objects of one cache. The context is current.
func (r *RendererGL) free(c resources.Cache) {
	if gc, ok := c.(interface{ destroy(Functions) }); ok {
		gc.destroy(r.gl)
		return
	}
	core.LogWarn("OpenGL renderer cannot free %T", c)
}

// buildable is a cache the renderer knows how to update.
type buildable interface {
	resources.Cache
	update(gl Functions)
}

// cacheFor fetches or creates the cache of a resource for this renderer
// and updates it when dirty.
func cacheFor[T buildable](r *RendererGL, get func(id core.Identifier) (T, bool, error)) T {
	c, created, err := get(r.ID())
	if err != nil {
		// two renderers sharing an identity
		panic(err)
	}
	if created {
		r.Track(c)
	}
	if c.IsDirty() {
		c.update(r.gl)
	}
	return c
}

func (r *RendererGL) meshCache(m *resources.Mesh) *MeshCache {
	return cacheFor(r, func(id core.Identifier) (*MeshCache, bool, error) {
		return resources.GetOrEmplaceMeshCache(m, id, NewMeshCache)
	})
}

func (r *RendererGL) lineGroupCache(lg *resources.LineGroup) *LineGroupCache {
	return cacheFor(r, func(id core.Identifier) (*LineGroupCache, bool, error) {
		return resources.GetOrEmplaceLineGroupCache(lg, id, NewLineGroupCache)
	})
}

func (r *RendererGL) materialCache(m *resources.Material) *MaterialCache {
	return cacheFor(r, func(id core.Identifier) (*MaterialCache, bool, error) {
		return resources.GetOrEmplaceMaterialCache(m, id, NewMaterialCache)
	})
}

func (r *RendererGL) materialPropertiesCache(mp *resources.MaterialProperties) *MaterialPropertiesCache {
	return cacheFor(r, func(id core.Identifier) (*MaterialPropertiesCache, bool, error) {
		return resources.GetOrEmplaceMaterialPropertiesCache(mp, id, NewMaterialPropertiesCache)
	})
}

func (r *RendererGL) textureCache(t *resources.Texture) *TextureCache {
	return cacheFor(r, func(id core.Identifier) (*TextureCache, bool, error) {
		return resources.GetOrEmplaceTextureCache(t, id, NewTextureCache)
	})
}

func (r *RendererGL) cubemapCache(cm *resources.Cubemap) *CubemapCache {
	return cacheFor(r, func(id core.Identifier) (*CubemapCache, bool, error) {
		return resources.GetOrEmplaceCubemapCache(cm, id, NewCubemapCache)
	})
}

func (r *RendererGL) BeginDrawing(camera *scene.Camera, sc *scene.Scene) error {
	if r.ID() == core.InvalidID {
		return core.ErrRendererNotFound
	}
	if camera == nil {
		return fmt.Errorf("BeginDrawing: camera is nil")
	}
	return r.BeginFrame(camera, sc)
}

func (r *RendererGL) Draw(item scene.DrawItem) {
	if err := r.Queue(item); err != nil {
		core.LogWarn("Draw %s: %s", groupName(item), err)
	}
}

func groupName(item scene.DrawItem) string {
	if item.Group == nil {
		return "<anonymous>"
	}
	return item.Group.Name
}

// EndDrawing renders the queued groups and closes the frame. The frame is
// closed even when the context is unavailable.
func (r *RendererGL) EndDrawing() error {
	if !r.InFrame() {
		return core.ErrNoFrameInProgress
	}
	r.FlushDeferred()
	err := r.WithContext(r.renderFrame)
	if eerr := r.EndFrame(); err == nil {
		err = eerr
	}
	return err
}

func (r *RendererGL) DrawAll(sc *scene.Scene, camera *scene.Camera) error {
	return renderer.DrawScene(r, sc, camera)
}

func (r *RendererGL) renderFrame() {
	defer checkErrors(r.gl, "RendererGL.renderFrame")()

	gl := r.gl
	r.stats = FrameStats{}

	cc := r.opts.ClearColor
	gl.Viewport(0, 0, r.width, r.height)
	gl.ClearColor(cc.X, cc.Y, cc.Z, cc.W)
	gl.DepthMask(true)
	gl.Clear(glColorBufferBit | glDepthBufferBit)
	gl.Enable(glDepthTest)
	gl.DepthFunc(glLess)
	gl.Enable(glTextureCubeMapSeamless)
	gl.CullFace(glBack)

	items := r.Items()
	var lights []scene.PointLight
	if sc := r.Scene(); sc != nil {
		lights = sc.Lights()
		if sky := sc.Skybox(); sky != nil {
			r.drawSkybox(sky)
		}
	}

	r.stats.Passes = append(r.stats.Passes, renderer.PassOpaque)
	gl.Disable(glBlend)
	gl.Enable(glCullFace)
	for _, item := range items.Opaque {
		r.drawMesh(item, lights, false)
	}

	if len(items.Lines) > 0 {
		r.drawLines(items.Lines)
	}

	if len(items.Translucent) > 0 {
		r.drawTranslucent(items.Translucent, lights)
	}

	gl.DepthMask(true)
	gl.Disable(glBlend)
	gl.Enable(glDepthTest)
	gl.DepthFunc(glLess)
	gl.Enable(glCullFace)
	gl.UseProgram(0)
}

// drawSkybox draws the cubemap on a cube around the camera, behind everything else.
func (r *RendererGL) drawSkybox(sky *resources.Cubemap) {
	gl := r.gl
	mc := r.materialCache(resources.StandardMaterial(resources.SkyboxMaterial))
	if !mc.install(gl) {
		return
	}
	cc := r.cubemapCache(sky)
	if !cc.applyToSlots(gl, uint32(resources.EnvironmentTextureSlot), IrradianceUnit, uint32(resources.PrefilterTextureSlot)) {
		return
	}
	r.stats.Passes = append(r.stats.Passes, renderer.PassSkybox)

	gl.DepthMask(false)
	gl.DepthFunc(glLEqual)
	gl.Disable(glCullFace)
	r.meshCache(resources.StandardMesh(resources.CubeIndexedMesh)).render(gl, renderer.SkyboxDrawInfo(r.Camera()))
	r.stats.DrawCalls++
	gl.DepthFunc(glLess)
	gl.DepthMask(true)
}

// uploadScene updates the scene uniform block when the camera or the light
// selection differs from the last upload.
func (r *RendererGL) uploadScene(position math.Vec3, lights []scene.PointLight) {
	u := renderer.NewSceneUniforms(r.Camera().Position(),
		renderer.SelectClosestLights(lights, position, r.MaxLights()))
	if r.sceneUniforms.handle == 0 || !r.sceneUploaded || !u.Equal(r.lastScene) {
		r.sceneUniforms.upload(r.gl, u.Bytes())
		r.lastScene = u
		r.sceneUploaded = true
		r.stats.SceneUploads++
	}
	r.sceneUniforms.bind(r.gl, renderer.SceneUniformBinding)
}

func (r *RendererGL) drawMesh(item scene.DrawItem, lights []scene.PointLight, accumulate bool) {
	gl := r.gl
	mc := r.materialCache(item.Material)
	if !mc.install(gl) {
		return
	}
	mesh := r.meshCache(item.Mesh)
	props := r.materialPropertiesCache(item.MaterialProperties)

	r.uploadScene(item.WorldPosition, lights)
	props.install(gl, r, mc)
	if renderer.IsTranslucent(item) {
		pass := int32(0)
		if accumulate {
			pass = 1
		}
		mc.applyUniform(gl, "OITPass", pass)
	}

	noCull := renderer.CullingDisabled(item)
	if noCull {
		gl.Disable(glCullFace)
	}
	mesh.render(gl, renderer.NewDrawInfo(item, r.Camera()))
	r.stats.DrawCalls++
	if noCull {
		gl.Enable(glCullFace)
	}
}

// lineMaterial picks the program of a line group. Groups that also carry
// a mesh use their material for the mesh only.
func lineMaterial(item scene.DrawItem) *resources.Material {
	if item.Mesh == nil && item.Material != nil {
		return item.Material
	}
	return resources.StandardMaterial(resources.LinesMaterial)
}

func (r *RendererGL) drawLines(items []scene.DrawItem) {
	gl := r.gl
	gl.Enable(glBlend)
	gl.BlendFunc(glSrcAlpha, glOneMinusSrcAlpha)
	gl.Disable(glCullFace)

	viewport := math.NewVec2(float32(r.width), float32(r.height))
	for _, item := range items {
		mc := r.materialCache(lineMaterial(item))
		if !mc.install(gl) {
			continue
		}
		mc.applyUniform(gl, "ViewportSize", viewport)
		r.lineGroupCache(item.LineGroup).render(gl, renderer.NewDrawInfo(item, r.Camera()))
		r.stats.DrawCalls++
	}

	gl.Disable(glBlend)
	gl.Enable(glCullFace)
}

func (r *RendererGL) drawTranslucent(items []scene.DrawItem, lights []scene.PointLight) {
	gl := r.gl
	r.stats.Passes = append(r.stats.Passes, renderer.PassTranslucent)

	if r.translucency == renderer.TranslucencyOIT {
		if err := r.oit.ensure(gl, r.width, r.height); err != nil {
			core.LogWarn("Order independent transparency unavailable, falling back to blending: %s", err)
			r.translucency = renderer.TranslucencyBlend
		}
	}

	if r.translucency == renderer.TranslucencyBlend {
		sorted := backToFront(items, r.Camera().Position())
		gl.DepthMask(false)
		gl.Enable(glBlend)
		gl.BlendFunc(glSrcAlpha, glOneMinusSrcAlpha)
		for _, item := range sorted {
			r.drawMesh(item, lights, false)
		}
		gl.Disable(glBlend)
		gl.DepthMask(true)
		return
	}

	r.oit.begin(gl)
	for _, item := range items {
		r.drawMesh(item, lights, true)
	}
	r.oit.end(gl)
	r.composite()
}

// composite blends the resolved translucent layer over the opaque image.
func (r *RendererGL) composite() {
	gl := r.gl
	mc := r.materialCache(resources.StandardMaterial(resources.OITCompositeMaterial))
	if !mc.install(gl) {
		if !r.compositeWarned {
			core.LogWarn("OIT composite program unavailable, translucent objects are not shown")
			r.compositeWarned = true
		}
		return
	}
	r.stats.Passes = append(r.stats.Passes, renderer.PassComposite)

	gl.ActiveTexture(glTexture0)
	gl.BindTexture(glTexture2D, r.oit.accum)
	gl.ActiveTexture(glTexture0 + 1)
	gl.BindTexture(glTexture2D, r.oit.reveal)
	mc.applyUniform(gl, "AccumTexture", int32(0))
	mc.applyUniform(gl, "RevealTexture", int32(1))

	gl.Disable(glDepthTest)
	gl.Disable(glCullFace)
	gl.Enable(glBlend)
	gl.BlendFunc(glSrcAlpha, glOneMinusSrcAlpha)
	r.meshCache(resources.StandardMesh(resources.ScreenQuadMesh)).render(gl, renderer.DrawInfo{})
	r.stats.DrawCalls++
	gl.Disable(glBlend)
	gl.Enable(glDepthTest)
}

// backToFront orders translucent items by decreasing distance to the eye.
func backToFront(items []scene.DrawItem, eye math.Vec3) []scene.DrawItem {
	sorted := append([]scene.DrawItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WorldPosition.DistanceSquared(eye) > sorted[j].WorldPosition.DistanceSquared(eye)
	})
	return sorted
}

/**
 * @brief Frees every cache, the scene uniform block and the OIT targets.
 * Resources keep working, caches are rebuilt on the next draw.
 */
func (r *RendererGL) DeleteAllResources() {
	r.DeleteAll(func() {
		r.sceneUniforms.destroy(r.gl)
		r.oit.destroy(r.gl)
	})
	r.sceneUploaded = false
}

func (r *RendererGL) CleanupRenderCache() {
	if n := r.CleanupOrphans(); n > 0 {
		core.LogDebug("renderer %s: cleaned up %d orphaned caches", r.ID(), n)
	}
}

func (r *RendererGL) Resize(width, height int) {
	r.width, r.height = int32(width), int32(height)
}

func (r *RendererGL) Close() error {
	r.DeleteAllResources()
	return r.ReleaseIdentity()
}
