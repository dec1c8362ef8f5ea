package resources

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

type fakeMaterialCache struct {
	MaterialCacheBase
}

func TestMaterialShaderFileReload(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "a.vert")
	require.NoError(t, os.WriteFile(vert, []byte("v1"), 0o644))

	m := NewMaterial(nil)
	require.NoError(t, m.SetShaderFile(VertexShader, vert))
	assert.Equal(t, "v1", m.Shader(VertexShader))
	assert.Equal(t, []string{vert}, m.ShaderFiles())

	r := newFakeRenderer(t)
	c, _, err := GetOrEmplaceMaterialCache(m, r.id, func(m *Material) *fakeMaterialCache {
		return &fakeMaterialCache{NewMaterialCacheBase(m)}
	})
	require.NoError(t, err)
	c.MarkClean()

	// unchanged source keeps the cache clean
	require.NoError(t, m.ReloadShaders())
	assert.False(t, c.IsDirty())

	require.NoError(t, os.WriteFile(vert, []byte("v2"), 0o644))
	require.NoError(t, m.ReloadShaders())
	assert.Equal(t, "v2", m.Shader(VertexShader))
	assert.True(t, c.IsDirty())

	assert.Error(t, m.SetShaderFile(FragmentShader, filepath.Join(dir, "missing.frag")))
}

func TestStandardMaterials(t *testing.T) {
	for _, kind := range []StandardMaterialKind{
		Basic2DMaterial, Basic3DMaterial, SampleTranslucentMaterial,
		LinesMaterial, SkyboxMaterial, OITCompositeMaterial,
	} {
		m := StandardMaterial(kind)
		assert.NotEmpty(t, m.Shader(VertexShader), m.Name)
		assert.NotEmpty(t, m.Shader(FragmentShader), m.Name)
		assert.Same(t, m, StandardMaterial(kind))
	}
	assert.True(t, StandardMaterial(SampleTranslucentMaterial).IsTranslucent())
	assert.False(t, StandardMaterial(Basic3DMaterial).IsTranslucent())
	assert.NotEmpty(t, StandardMaterial(LinesMaterial).Shader(GeometryShader))
}

func TestMaterialPropertiesTextures(t *testing.T) {
	mp := NewMaterialProperties(nil)
	tex := NewTexture(Image{}, nil)
	mp.SetTexture(tex, AlbedoTextureSlot)
	assert.Same(t, tex, mp.Texture(AlbedoTextureSlot))
	assert.Nil(t, mp.Texture(NormalTextureSlot))
	assert.Nil(t, mp.Texture(TextureSlot(42)))

	tex.Destroy()
	assert.Nil(t, mp.Texture(AlbedoTextureSlot))

	mp.SetRawValue("Tint", math.NewVec3(1, 0, 0))
	mp.SetRawValue("Alpha", float32(0.5))
	assert.Equal(t, []string{"Alpha", "Tint"}, mp.RawValueNames())
	assert.Equal(t, 3, mp.RawValue("Missing", 3))

	mp.SetPBR(2, -1, 0.5)
	assert.Equal(t, float32(1), mp.Metallic())
	assert.Equal(t, float32(0), mp.Roughness())
}

func TestImageFromConvertsToRGBA(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(1, 0, color.Gray{Y: 128})
	img := ImageFrom(src)
	w, h := img.Size()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, img.At(1, 0))
	assert.False(t, img.HasAlphaChannel())

	rgba := NewImageRGBA(1, 1, []uint8{1, 2, 3, 4})
	assert.True(t, rgba.HasAlphaChannel())

	big := img.Resized(4, 4)
	w, h = big.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
}

func TestImageHDRExpandsComponents(t *testing.T) {
	img := NewImageHDR(1, 1, 3, []float32{0.5, 2, 0})
	require.True(t, img.IsHDR())
	assert.Equal(t, []float32{0.5, 2, 0, 1}, img.HDRPixels())
	assert.Equal(t, color.NRGBA{R: 128, G: 255, B: 0, A: 255}, img.At(0, 0))
	assert.True(t, NewImageHDR(1, 1, 5, []float32{1, 1, 1, 1, 1}).IsNull())
}

func TestStandardTextures(t *testing.T) {
	missing := StandardTexture(MissingTexture)
	w, h := missing.Image().Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
	assert.Equal(t, color.NRGBA{R: 255, B: 255, A: 255}, missing.Image().At(0, 0))
	assert.Equal(t, color.NRGBA{A: 255}, missing.Image().At(1, 0))
	assert.Equal(t, FilterNearest, missing.MinFilter())
	assert.Equal(t, WrapRepeat, missing.WrapMode(WrapDirectionY))

	white := StandardTexture(WhiteTexture)
	assert.Equal(t, WrapClamp, white.WrapMode(WrapDirectionX))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, white.Image().At(0, 0))

	tex := NewTexture(Image{}, nil)
	assert.Equal(t, FilterLinearMipMapLinear, tex.MinFilter())
	assert.Equal(t, float32(-1), tex.LodBias())
	assert.Equal(t, float32(8), tex.MaxAnisotropy())
	assert.Equal(t, TextureGenerateMipMaps, tex.RenderOptions())
}

func TestCubemapValidity(t *testing.T) {
	face := NewImageRGBA(2, 2, make([]uint8, 16))
	cm := NewCubemap(nil)
	assert.False(t, cm.IsValid())
	for f := CubemapNegX; f < CubemapFaceCount; f++ {
		cm.SetFace(f, face)
	}
	assert.True(t, cm.IsValid())

	cm.SetFace(CubemapPosY, NewImageRGBA(4, 4, make([]uint8, 64)))
	assert.False(t, cm.IsValid())

	cm.SetFace(CubemapPosY, NewImageHDR(2, 2, 4, make([]float32, 16)))
	assert.False(t, cm.IsValid(), "mixed formats")

	rect := NewCubemap(nil)
	for f := CubemapNegX; f < CubemapFaceCount; f++ {
		rect.SetFace(f, NewImageRGBA(2, 1, make([]uint8, 8)))
	}
	assert.False(t, rect.IsValid(), "faces must be square")
}

func TestManagerRegistry(t *testing.T) {
	mgr := NewManager()
	mesh := mgr.RegisterMesh("b", NewMesh(nil))
	mgr.RegisterMesh("a", NewMesh(nil))
	mat := mgr.RegisterMaterial("m", NewMaterial(nil))
	mp := mgr.RegisterMaterialProperties("p", NewMaterialProperties(nil))
	tex := mgr.RegisterTexture("t", NewTexture(Image{}, nil))
	cm := mgr.RegisterCubemap("c", NewCubemap(nil))
	lg := mgr.RegisterLineGroup("l", NewLineGroup(nil))

	assert.Equal(t, []string{"a", "b"}, mgr.RegisteredMeshes())
	assert.Same(t, mesh, mgr.GetMesh("b"))
	assert.Same(t, mgr, mesh.ResourceManager())
	assert.Equal(t, "b", mesh.Name)
	assert.Equal(t, []*Material{mat}, mgr.Materials())

	r := newFakeRenderer(t)
	_, _, err := GetOrEmplaceMeshCache(mesh, r.id, newFakeMeshCache)
	require.NoError(t, err)

	mgr.Destroy()
	assert.Len(t, r.deleted, 1)
	for _, res := range []*Resource{&mesh.Resource, &mat.Resource, &mp.Resource, &tex.Resource, &cm.Resource, &lg.Resource} {
		assert.True(t, res.Destroyed())
	}
	assert.Empty(t, mgr.RegisteredMeshes())
	assert.Empty(t, mgr.RegisteredCubemaps())
}

func TestCubemapCacheAccessors(t *testing.T) {
	cm := NewCubemap(nil)
	type cubeCache struct{ CubemapCacheBase }
	id := core.IdentifierAquireNewID(t)
	defer func() { _ = core.IdentifierReleaseID(id) }()

	c, created, err := GetOrEmplaceCubemapCache(cm, id, func(cm *Cubemap) *cubeCache {
		return &cubeCache{NewCubemapCacheBase(cm)}
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Same(t, cm, c.Cubemap())

	got, err := GetCubemapCacheT[*cubeCache](cm, id)
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestHDRImageResizeAverages(t *testing.T) {
	data := []float32{
		0, 0, 0, 1, 2, 2, 2, 1,
		4, 4, 4, 1, 6, 6, 6, 1,
	}
	img := NewImageHDR(2, 2, 4, data)

	small := img.Resized(1, 1)
	require.True(t, small.IsHDR())
	w, h := small.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, []float32{3, 3, 3, 1}, small.HDRPixels())

	assert.Equal(t, img, img.Resized(0, 4))
}
