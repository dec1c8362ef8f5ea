package resources

import (
	"github.com/spaghettifunk/lumen/engine/core"
)

type CubemapFace int

const (
	CubemapNegX CubemapFace = iota
	CubemapNegY
	CubemapNegZ
	CubemapPosX
	CubemapPosY
	CubemapPosZ
	CubemapFaceCount
)

type Cubemap struct {
	Resource
	faces  [CubemapFaceCount]Image
	caches CacheMap
}

func NewCubemap(manager *Manager) *Cubemap {
	core.LogDebug("Constructor: Cubemap")
	return &Cubemap{Resource: newResource(ResourceTypeCubemap, manager)}
}

func (c *Cubemap) Clone() *Cubemap {
	n := NewCubemap(c.manager)
	n.faces = c.faces
	return n
}

func (c *Cubemap) SetFace(face CubemapFace, img Image) {
	if face < 0 || face >= CubemapFaceCount {
		return
	}
	c.faces[face] = img
	c.caches.Invalidate(core.AllRenderers)
}

func (c *Cubemap) Face(face CubemapFace) Image {
	if face < 0 || face >= CubemapFaceCount {
		return Image{}
	}
	return c.faces[face]
}

// IsValid requires six non null, square faces of one size and one pixel format.
func (c *Cubemap) IsValid() bool {
	if c.faces[0].IsNull() {
		return false
	}
	w, h := c.faces[0].Size()
	if w != h {
		return false
	}
	hdr := c.faces[0].IsHDR()
	for i := 1; i < int(CubemapFaceCount); i++ {
		f := c.faces[i]
		if f.IsNull() {
			return false
		}
		if fw, fh := f.Size(); fw != w || fh != h {
			return false
		}
		if f.IsHDR() != hdr {
			return false
		}
	}
	return true
}

func (c *Cubemap) InvalidateCache(id core.Identifier) {
	c.caches.Invalidate(id)
}

func (c *Cubemap) Destroy() {
	if c.destroyed {
		return
	}
	c.caches.release(ResourceTypeCubemap)
	c.markDestroyed()
	core.LogDebug("Destructor: Cubemap")
}

func GetOrEmplaceCubemapCache[T Cache](c *Cubemap, id core.Identifier, newCache func(*Cubemap) T) (T, bool, error) {
	return GetOrEmplace(&c.caches, id, func() T { return newCache(c) })
}

func GetCubemapCacheT[T Cache](c *Cubemap, id core.Identifier) (T, error) {
	return GetCacheT[T](&c.caches, id)
}
