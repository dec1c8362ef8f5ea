package resources

import (
	"image"
	"image/color"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
)

type TextureWrapDirection int

const (
	WrapDirectionX TextureWrapDirection = iota
	WrapDirectionY
	WrapDirectionZ
)

type TextureWrapMode int

const (
	WrapRepeat TextureWrapMode = iota
	WrapMirroredRepeat
	WrapClamp
)

type TextureFilter int

const (
	FilterNearest TextureFilter = iota
	FilterLinear
	FilterNearestMipMapNearest
	FilterNearestMipMapLinear
	FilterLinearMipMapNearest
	FilterLinearMipMapLinear
)

type TextureRenderOptions uint32

const (
	TextureNoOptions       TextureRenderOptions = 0x0
	TextureGenerateMipMaps TextureRenderOptions = 0x1
)

type StandardTextureKind int

const (
	MissingTexture StandardTextureKind = iota
	WhiteTexture
	BlackTexture
)

type Texture struct {
	Resource
	image         Image
	wrapMode      [3]TextureWrapMode
	minFilter     TextureFilter
	magFilter     TextureFilter
	lodBias       float32
	maxAnisotropy float32
	renderOptions TextureRenderOptions
	caches        CacheMap
}

func NewTexture(img Image, manager *Manager) *Texture {
	core.LogDebug("Constructor: Texture")
	return &Texture{
		Resource:      newResource(ResourceTypeTexture, manager),
		image:         img,
		minFilter:     FilterLinearMipMapLinear,
		magFilter:     FilterLinear,
		lodBias:       -1.0,
		maxAnisotropy: 8.0,
		renderOptions: TextureGenerateMipMaps,
	}
}

func (t *Texture) Clone() *Texture {
	n := NewTexture(t.image, t.manager)
	n.wrapMode = t.wrapMode
	n.minFilter, n.magFilter = t.minFilter, t.magFilter
	n.lodBias, n.maxAnisotropy = t.lodBias, t.maxAnisotropy
	n.renderOptions = t.renderOptions
	return n
}

func (t *Texture) Image() Image { return t.image }

func (t *Texture) SetImage(img Image) {
	t.image = img
	t.caches.Invalidate(core.AllRenderers)
}

// SetImageFrom converts a decoded image to RGBA8 and uses it.
func (t *Texture) SetImageFrom(src image.Image) {
	t.SetImage(ImageFrom(src))
}

func (t *Texture) WrapMode(dir TextureWrapDirection) TextureWrapMode {
	if dir < WrapDirectionX || dir > WrapDirectionZ {
		return WrapRepeat
	}
	return t.wrapMode[dir]
}

func (t *Texture) SetWrapMode(dir TextureWrapDirection, mode TextureWrapMode) {
	if dir < WrapDirectionX || dir > WrapDirectionZ {
		return
	}
	t.wrapMode[dir] = mode
	t.caches.Invalidate(core.AllRenderers)
}

func (t *Texture) MinFilter() TextureFilter { return t.minFilter }
func (t *Texture) MagFilter() TextureFilter { return t.magFilter }

func (t *Texture) SetFilters(minFilter, magFilter TextureFilter) {
	t.minFilter, t.magFilter = minFilter, magFilter
	t.caches.Invalidate(core.AllRenderers)
}

func (t *Texture) LodBias() float32 { return t.lodBias }

func (t *Texture) SetLodBias(bias float32) {
	t.lodBias = bias
	t.caches.Invalidate(core.AllRenderers)
}

func (t *Texture) MaxAnisotropy() float32 { return t.maxAnisotropy }

func (t *Texture) SetMaxAnisotropy(v float32) {
	t.maxAnisotropy = v
	t.caches.Invalidate(core.AllRenderers)
}

func (t *Texture) RenderOptions() TextureRenderOptions { return t.renderOptions }

func (t *Texture) SetRenderOptions(options TextureRenderOptions) {
	t.renderOptions = options
	t.caches.Invalidate(core.AllRenderers)
}

func (t *Texture) InvalidateCache(id core.Identifier) {
	t.caches.Invalidate(id)
}

func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.caches.release(ResourceTypeTexture)
	t.markDestroyed()
	core.LogDebug("Destructor: Texture")
}

func GetOrEmplaceTextureCache[T Cache](t *Texture, id core.Identifier, newCache func(*Texture) T) (T, bool, error) {
	return GetOrEmplace(&t.caches, id, func() T { return newCache(t) })
}

func GetTextureCacheT[T Cache](t *Texture, id core.Identifier) (T, error) {
	return GetCacheT[T](&t.caches, id)
}

var (
	standardTexturesMu sync.Mutex
	standardTextures   = map[StandardTextureKind]*Texture{}
)

func solidImage(c color.NRGBA) Image {
	return NewImageRGBA(1, 1, []uint8{c.R, c.G, c.B, c.A})
}

// checkerImage is the 8x8 magenta/black pattern used for missing textures.
func checkerImage() Image {
	even := color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	odd := color.NRGBA{A: 255}
	pix := make([]uint8, 0, 8*8*4)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := even
			if (x+y)&1 == 1 {
				c = odd
			}
			pix = append(pix, c.R, c.G, c.B, c.A)
		}
	}
	return NewImageRGBA(8, 8, pix)
}

func StandardTexture(kind StandardTextureKind) *Texture {
	standardTexturesMu.Lock()
	defer standardTexturesMu.Unlock()

	if t, ok := standardTextures[kind]; ok {
		return t
	}

	var t *Texture
	switch kind {
	case MissingTexture:
		t = NewTexture(checkerImage(), nil)
		t.Name = "Missing"
		t.wrapMode = [3]TextureWrapMode{WrapRepeat, WrapRepeat, WrapRepeat}
	case WhiteTexture:
		t = NewTexture(solidImage(color.NRGBA{R: 255, G: 255, B: 255, A: 255}), nil)
		t.Name = "White"
		t.wrapMode = [3]TextureWrapMode{WrapClamp, WrapClamp, WrapClamp}
	default:
		t = NewTexture(solidImage(color.NRGBA{A: 255}), nil)
		t.Name = "Black"
		t.wrapMode = [3]TextureWrapMode{WrapClamp, WrapClamp, WrapClamp}
	}
	t.minFilter, t.magFilter = FilterNearest, FilterNearest
	t.renderOptions = TextureNoOptions
	standardTextures[kind] = t
	return t
}
