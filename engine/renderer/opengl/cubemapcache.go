package opengl

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// IrradianceSize is the face size of the irradiance map. The map is a
// downscaled copy of the environment, sampled with linear filtering.
const IrradianceSize = 32

var cubemapTargets = [resources.CubemapFaceCount]uint32{
	resources.CubemapNegX: glTextureCubeMapNegativeX,
	resources.CubemapNegY: glTextureCubeMapNegativeY,
	resources.CubemapNegZ: glTextureCubeMapNegativeZ,
	resources.CubemapPosX: glTextureCubeMapPositiveX,
	resources.CubemapPosY: glTextureCubeMapPositiveY,
	resources.CubemapPosZ: glTextureCubeMapPositiveZ,
}

/**
 * @brief GPU side of a cubemap: the environment itself plus the irradiance
 * and prefiltered maps image based lighting samples.
 */
type CubemapCache struct {
	resources.CubemapCacheBase
	environment uint32
	irradiance  uint32
	prefilter   uint32
	lastError   string
}

func NewCubemapCache(cm *resources.Cubemap) *CubemapCache {
	core.LogDebug("Constructor: CubemapCache")
	return &CubemapCache{CubemapCacheBase: resources.NewCubemapCacheBase(cm)}
}

func (c *CubemapCache) Handles() (environment, irradiance, prefilter uint32) {
	return c.environment, c.irradiance, c.prefilter
}

func uploadCubemap(gl Functions, texture uint32, faces [resources.CubemapFaceCount]resources.Image, mipmaps bool) {
	gl.BindTexture(glTextureCubeMap, texture)
	for _, p := range []uint32{glTextureWrapS, glTextureWrapT, glTextureWrapR} {
		gl.TexParameteri(glTextureCubeMap, p, glClampToEdge)
	}
	gl.TexParameteri(glTextureCubeMap, glTextureMagFilter, glLinear)
	if mipmaps {
		gl.TexParameteri(glTextureCubeMap, glTextureMinFilter, glLinearMipmapLinear)
	} else {
		gl.TexParameteri(glTextureCubeMap, glTextureMinFilter, glLinear)
	}
	for face, img := range faces {
		uploadImage(gl, cubemapTargets[face], img)
	}
	if mipmaps {
		gl.GenerateMipmap(glTextureCubeMap)
	}
	gl.BindTexture(glTextureCubeMap, 0)
}

func (c *CubemapCache) update(gl Functions) {
	defer checkErrors(gl, "CubemapCache.update")()

	cm := c.Cubemap()
	if cm == nil {
		return
	}
	if !cm.IsValid() {
		if c.lastError != "invalid" {
			core.LogWarn("Cubemap %q faces are missing or differ in size", cm.Name)
			c.lastError = "invalid"
		}
		return
	}

	var faces, small [resources.CubemapFaceCount]resources.Image
	for i := range faces {
		faces[i] = cm.Face(resources.CubemapFace(i))
		small[i] = faces[i].Resized(IrradianceSize, IrradianceSize)
	}

	if c.environment == 0 {
		c.environment = gl.GenTexture()
		c.irradiance = gl.GenTexture()
		c.prefilter = gl.GenTexture()
	}
	uploadCubemap(gl, c.environment, faces, false)
	uploadCubemap(gl, c.irradiance, small, false)
	uploadCubemap(gl, c.prefilter, faces, true)

	c.lastError = ""
	c.MarkClean()
}

// applyToSlots binds the three maps to their units. It returns false when
// there is nothing to bind.
func (c *CubemapCache) applyToSlots(gl Functions, environment, irradiance, prefilter uint32) bool {
	if c.environment == 0 {
		return false
	}
	for _, b := range []struct{ unit, texture uint32 }{
		{environment, c.environment},
		{irradiance, c.irradiance},
		{prefilter, c.prefilter},
	} {
		gl.ActiveTexture(glTexture0 + b.unit)
		gl.BindTexture(glTextureCubeMap, b.texture)
	}
	return true
}

func (c *CubemapCache) destroy(gl Functions) {
	for _, t := range []*uint32{&c.environment, &c.irradiance, &c.prefilter} {
		if *t != 0 {
			gl.DeleteTexture(*t)
			*t = 0
		}
	}
}
