package opengl

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

func wrapMode(mode resources.TextureWrapMode) int32 {
	switch mode {
	case resources.WrapMirroredRepeat:
		return glMirroredRepeat
	case resources.WrapClamp:
		return glClampToEdge
	default:
		return glRepeat
	}
}

func filterMode(f resources.TextureFilter) int32 {
	switch f {
	case resources.FilterNearest:
		return glNearest
	case resources.FilterNearestMipMapNearest:
		return glNearestMipmapNearest
	case resources.FilterNearestMipMapLinear:
		return glNearestMipmapLinear
	case resources.FilterLinearMipMapNearest:
		return glLinearMipmapNearest
	case resources.FilterLinearMipMapLinear:
		return glLinearMipmapLinear
	default:
		return glLinear
	}
}

// usesMipmaps reports whether the minification filter samples mip levels.
func usesMipmaps(f resources.TextureFilter) bool {
	return f >= resources.FilterNearestMipMapNearest
}

// uploadImage stores img into the bound texture target, RGBA8 or RGBA32F
// depending on the image.
func uploadImage(gl Functions, target uint32, img resources.Image) {
	w, h := img.Size()
	if img.IsHDR() {
		gl.TexImage2DFloat(target, 0, glRGBA32F, int32(w), int32(h), glRGBA, img.HDRPixels())
		return
	}
	gl.TexImage2D(target, 0, glRGBA8, int32(w), int32(h), glRGBA, glUnsignedByte, img.Pixels())
}

type TextureCache struct {
	resources.TextureCacheBase
	texture   uint32
	lastError string
}

func NewTextureCache(t *resources.Texture) *TextureCache {
	core.LogDebug("Constructor: TextureCache")
	return &TextureCache{TextureCacheBase: resources.NewTextureCacheBase(t)}
}

// Handle returns the GL texture name, 0 before the first successful update.
func (c *TextureCache) Handle() uint32 { return c.texture }

func (c *TextureCache) update(gl Functions) {
	defer checkErrors(gl, "TextureCache.update")()

	t := c.Texture()
	if t == nil {
		return
	}
	img := t.Image()
	if img.IsNull() {
		if c.lastError != "empty" {
			core.LogWarn("Texture %q has no image, nothing to upload", t.Name)
			c.lastError = "empty"
		}
		return
	}

	if c.texture == 0 {
		c.texture = gl.GenTexture()
	}
	gl.BindTexture(glTexture2D, c.texture)

	gl.TexParameteri(glTexture2D, glTextureWrapS, wrapMode(t.WrapMode(resources.WrapDirectionX)))
	gl.TexParameteri(glTexture2D, glTextureWrapT, wrapMode(t.WrapMode(resources.WrapDirectionY)))
	gl.TexParameteri(glTexture2D, glTextureWrapR, wrapMode(t.WrapMode(resources.WrapDirectionZ)))

	mipmaps := t.RenderOptions()&resources.TextureGenerateMipMaps != 0
	minFilter := t.MinFilter()
	if !mipmaps && usesMipmaps(minFilter) {
		// without mip levels the texture would be incomplete
		minFilter = resources.FilterLinear
	}
	gl.TexParameteri(glTexture2D, glTextureMinFilter, filterMode(minFilter))
	gl.TexParameteri(glTexture2D, glTextureMagFilter, filterMode(t.MagFilter()))
	gl.TexParameterf(glTexture2D, glTextureLodBias, t.LodBias())
	if t.MaxAnisotropy() > 1 {
		gl.TexParameterf(glTexture2D, glTextureMaxAnisotropy, t.MaxAnisotropy())
	}

	uploadImage(gl, glTexture2D, img)
	if mipmaps {
		gl.GenerateMipmap(glTexture2D)
	}
	gl.BindTexture(glTexture2D, 0)

	c.lastError = ""
	c.MarkClean()
}

// applyToSlot binds the texture to unit slot. It returns false when there is
// nothing to bind.
func (c *TextureCache) applyToSlot(gl Functions, slot uint32) bool {
	if c.texture == 0 {
		return false
	}
	gl.ActiveTexture(glTexture0 + slot)
	gl.BindTexture(glTexture2D, c.texture)
	return true
}

func (c *TextureCache) destroy(gl Functions) {
	if c.texture != 0 {
		gl.DeleteTexture(c.texture)
		c.texture = 0
	}
}
