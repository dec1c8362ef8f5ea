package opengl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

func newTestRenderer(t *testing.T, mode renderer.TranslucencyMode) (*RendererGL, *fakeGL, *fakeContext) {
	t.Helper()
	f := newFakeGL()
	thread := &fakeThread{}
	ctx := &fakeContext{thread: thread}
	ctx.MakeCurrent()

	r, err := New(f, renderer.Options{
		Context:                  ctx,
		Provider:                 thread,
		Translucency:             mode,
		Width:                    64,
		Height:                   32,
		DeferredDeletionCapacity: 8,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, f, ctx
}

// newTestScene builds one opaque and one translucent group.
func newTestScene() (*scene.Scene, *scene.Group, *scene.Group) {
	sc := scene.NewScene()
	model := scene.NewModel("model")
	sc.AddChild("entity").SetModel(model)

	mesh := triangle(resources.MeshPosition3D)
	solid := model.AddGroup("a-solid")
	solid.SetMesh(mesh)
	solid.SetMaterial(resources.StandardMaterial(resources.Basic3DMaterial))
	solid.SetMaterialProperties(resources.NewMaterialProperties(sc.ResourceManager()))

	glass := model.AddGroup("b-glass")
	glass.SetMesh(resources.StandardMesh(resources.UnitQuadMesh))
	glass.SetMaterial(resources.StandardMaterial(resources.SampleTranslucentMaterial))
	glass.SetMaterialProperties(resources.NewMaterialProperties(sc.ResourceManager()))
	return sc, solid, glass
}

func TestRendererPassOrder(t *testing.T) {
	r, _, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, _, _ := newTestScene()
	defer sc.Close()
	sc.SetSkybox(cubemap(4))

	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	stats := r.Stats()
	assert.Equal(t, []renderer.Pass{
		renderer.PassSkybox,
		renderer.PassOpaque,
		renderer.PassTranslucent,
		renderer.PassComposite,
	}, stats.Passes)
	assert.Equal(t, 4, stats.DrawCalls)
	assert.False(t, r.InFrame())
}

func TestRendererOITState(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, _, _ := newTestScene()
	defer sc.Close()

	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))

	opaque := f.index("DrawArrays 0x0004 0 3")
	blit := f.index("BlitFramebuffer 64x32 0x100")
	translucent := f.index("DrawElements 0x0004 6")
	require.NotEqual(t, -1, opaque)
	require.NotEqual(t, -1, blit)
	assert.Less(t, opaque, blit, "opaque depth is copied after the opaque pass")
	assert.Less(t, blit, translucent)
	assert.Contains(t, f.calls, "Uniform OITPass 1")
	assert.Contains(t, f.calls, "Uniform AccumTexture 0")
	assert.Contains(t, f.calls, "Uniform RevealTexture 1")
	assert.Contains(t, f.calls, "DrawArrays 0x0005 0 4", "composite quad")
}

func TestRendererBlendMode(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyBlend)
	sc, _, _ := newTestScene()
	defer sc.Close()

	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	assert.Equal(t, []renderer.Pass{renderer.PassOpaque, renderer.PassTranslucent}, r.Stats().Passes)
	assert.Zero(t, f.count("GenFramebuffer"))
	assert.Contains(t, f.calls, "Uniform OITPass 0")
	assert.Contains(t, f.calls, "BlendFunc 0x0302 0x0303")
}

func TestRendererFallsBackWhenOITTargetsFail(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	f.fbStatus = 0
	sc, _, _ := newTestScene()
	defer sc.Close()

	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	assert.Equal(t, renderer.TranslucencyBlend, r.Translucency())
	assert.Equal(t, []renderer.Pass{renderer.PassOpaque, renderer.PassTranslucent}, r.Stats().Passes)
	assert.Zero(t, f.alive("Framebuffer"))
}

func TestRendererBlendsWithoutDrawBuffersBlend(t *testing.T) {
	f := newFakeGL()
	f.unsupported[DrawBuffersBlendExtension] = true
	thread := &fakeThread{}
	ctx := &fakeContext{thread: thread}
	ctx.MakeCurrent()

	r, err := New(f, renderer.Options{
		Context:      ctx,
		Provider:     thread,
		Translucency: renderer.TranslucencyOIT,
		Width:        64,
		Height:       32,
	})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, renderer.TranslucencyBlend, r.Translucency())

	sc, _, _ := newTestScene()
	defer sc.Close()
	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	assert.Zero(t, f.count("BlendFunci"))
	assert.Zero(t, f.alive("Framebuffer"))
	assert.Equal(t, []renderer.Pass{renderer.PassOpaque, renderer.PassTranslucent}, r.Stats().Passes)
}

func TestBackToFront(t *testing.T) {
	items := []scene.DrawItem{
		{WorldPosition: math.NewVec3(0, 0, -1)},
		{WorldPosition: math.NewVec3(0, 0, -5)},
		{WorldPosition: math.NewVec3(0, 0, -3)},
	}
	sorted := backToFront(items, math.NewVec3(0, 0, 0))
	assert.Equal(t, float32(-5), sorted[0].WorldPosition.Z)
	assert.Equal(t, float32(-3), sorted[1].WorldPosition.Z)
	assert.Equal(t, float32(-1), items[0].WorldPosition.Z, "input untouched")
}

func TestRendererCulling(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, solid, glass := newTestScene()
	defer sc.Close()
	glass.SetHidden(true)
	cam := scene.NewCamera()

	require.NoError(t, r.DrawAll(sc, cam))
	assert.Zero(t, f.count("Disable 0x0B44"))

	solid.Mesh().SetRenderOptions(resources.MeshDisableCulling)
	f.reset()
	require.NoError(t, r.DrawAll(sc, cam))
	off := f.index("Disable 0x0B44")
	draw := f.index("DrawArrays 0x0004 0 3")
	require.NotEqual(t, -1, off)
	assert.Less(t, off, draw)
	assert.Equal(t, "Enable 0x0B44", f.calls[draw+2], "culling restored after the draw")
}

func TestRendererSceneUniformDiffing(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, _, glass := newTestScene()
	defer sc.Close()
	glass.SetHidden(true)
	cam := scene.NewCamera()

	l := sc.GetOrCreateLight(1)
	l.Position = math.NewVec3(1, 0, 0)

	require.NoError(t, r.DrawAll(sc, cam))
	assert.Equal(t, 1, r.Stats().SceneUploads)
	assert.Equal(t, 1, f.count("BufferData 0x8A11 272"))

	require.NoError(t, r.DrawAll(sc, cam))
	assert.Zero(t, r.Stats().SceneUploads, "unchanged scene is not uploaded again")

	l.Position = math.NewVec3(2, 0, 0)
	require.NoError(t, r.DrawAll(sc, cam))
	assert.Equal(t, 1, r.Stats().SceneUploads)

	cam.SetPosition(math.NewVec3(0, 0, 3))
	require.NoError(t, r.DrawAll(sc, cam))
	assert.Equal(t, 1, r.Stats().SceneUploads)
}

func TestRendererLinesPass(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc := scene.NewScene()
	defer sc.Close()

	lg := resources.NewLineGroup(sc.ResourceManager())
	lg.SetContents(resources.LinePosition3D)
	lg.SetVertices([]resources.LineVertex{{}, {Position3D: math.NewVec3(1, 1, 0)}})
	model := scene.NewModel("axis")
	model.AddGroup("x").SetLineGroup(lg)
	sc.AddChild("axis").SetModel(model)

	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	assert.Equal(t, 1, r.Stats().DrawCalls)
	assert.Contains(t, f.calls, "Uniform ViewportSize 64 32")
	assert.Contains(t, f.calls, "DrawArrays 0x0001 0 2")
	assert.Contains(t, f.calls, "Disable 0x0B44")
}

func TestRendererSkipsGroupsWithoutProgram(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyBlend)
	f.failLink = true
	sc, _, _ := newTestScene()
	defer sc.Close()

	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	assert.Zero(t, r.Stats().DrawCalls)
	assert.Zero(t, f.count("Draw"))
}

func TestRendererDeleteAllResources(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, solid, _ := newTestScene()
	defer sc.Close()
	sc.SetSkybox(cubemap(4))
	cam := scene.NewCamera()

	require.NoError(t, r.DrawAll(sc, cam))
	assert.NotZero(t, r.TrackedCaches())
	assert.NotZero(t, f.totalAlive())

	r.DeleteAllResources()
	assert.Zero(t, r.TrackedCaches())
	assert.Zero(t, f.totalAlive())

	c, err := resources.GetMeshCacheT[*MeshCache](solid.Mesh(), r.ID())
	require.NoError(t, err)
	assert.Nil(t, c, "released caches are gone from the resource")

	require.NoError(t, r.DrawAll(sc, cam))
	assert.Equal(t, 4, r.Stats().DrawCalls, "caches are rebuilt")
}

func TestRendererDestroyCascade(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, solid, glass := newTestScene()
	defer sc.Close()
	glass.SetHidden(true)

	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	tracked := r.TrackedCaches()
	arrays := f.alive("VertexArray")

	solid.Mesh().Destroy()
	assert.Equal(t, tracked-1, r.TrackedCaches())
	assert.Equal(t, arrays-1, f.alive("VertexArray"))
}

func TestRendererDefersDeletionWithoutContext(t *testing.T) {
	r, f, ctx := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, solid, glass := newTestScene()
	defer sc.Close()
	glass.SetHidden(true)
	cam := scene.NewCamera()

	require.NoError(t, r.DrawAll(sc, cam))
	arrays := f.alive("VertexArray")

	ctx.destroyed = true
	mesh := solid.Mesh()
	mesh.Destroy()
	assert.Equal(t, 1, r.PendingDeletions())
	assert.Equal(t, arrays, f.alive("VertexArray"), "GPU objects wait for the context")

	assert.ErrorIs(t, r.DrawAll(sc, cam), core.ErrContextUnavailable)
	assert.False(t, r.InFrame(), "frame closed without a context")

	ctx.destroyed = false
	require.NoError(t, r.DrawAll(sc, cam))
	assert.Zero(t, r.PendingDeletions())
	assert.Equal(t, arrays-1, f.alive("VertexArray"))
}

func TestRendererFrameBracket(t *testing.T) {
	r, _, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	cam := scene.NewCamera()

	assert.ErrorIs(t, r.EndDrawing(), core.ErrNoFrameInProgress)
	require.NoError(t, r.BeginDrawing(cam, nil))
	assert.ErrorIs(t, r.BeginDrawing(cam, nil), core.ErrFrameInProgress)
	require.NoError(t, r.EndDrawing())
	assert.Error(t, r.BeginDrawing(nil, nil))

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.BeginDrawing(cam, nil), core.ErrRendererNotFound)
}

func TestRendererResize(t *testing.T) {
	r, f, _ := newTestRenderer(t, renderer.TranslucencyOIT)
	sc, _, _ := newTestScene()
	defer sc.Close()

	r.Resize(200, 100)
	require.NoError(t, r.DrawAll(sc, scene.NewCamera()))
	assert.Contains(t, f.calls, "Viewport 0 0 200 100")
	assert.Contains(t, f.calls, "RenderbufferStorage 0x88F0 200x100")
}

func TestFactory(t *testing.T) {
	thread := &fakeThread{}
	ctx := &fakeContext{thread: thread}
	f := newFakeGL()

	var currentDuringLoad bool
	factory := Factory(func() (Functions, error) {
		currentDuringLoad = ctx.IsCurrent()
		return f, nil
	})

	_, err := factory(renderer.Options{})
	assert.ErrorIs(t, err, core.ErrContextUnavailable)

	r, err := factory(renderer.Options{Context: ctx, Provider: thread})
	require.NoError(t, err)
	assert.True(t, currentDuringLoad)
	assert.False(t, ctx.IsCurrent(), "previous (no) context restored")
	require.NoError(t, r.Close())

	loadErr := errors.New("no driver")
	_, err = Factory(func() (Functions, error) { return nil, loadErr })(renderer.Options{Context: ctx, Provider: thread})
	assert.ErrorIs(t, err, loadErr)
}
