package opengl

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// MaterialPropertiesCache owns the material uniform block of a material properties instance.
type MaterialPropertiesCache struct {
	resources.MaterialPropertiesCacheBase
	uniforms uniformBuffer
}

func NewMaterialPropertiesCache(mp *resources.MaterialProperties) *MaterialPropertiesCache {
	core.LogDebug("Constructor: MaterialPropertiesCache")
	return &MaterialPropertiesCache{MaterialPropertiesCacheBase: resources.NewMaterialPropertiesCacheBase(mp)}
}

func (c *MaterialPropertiesCache) update(gl Functions) {
	defer checkErrors(gl, "MaterialPropertiesCache.update")()

	mp := c.MaterialProperties()
	if mp == nil {
		return
	}
	c.uniforms.upload(gl, renderer.MaterialUniformsFrom(mp).Bytes())
	c.MarkClean()
}

// defaultsToWhite reports whether an empty slot samples the white texture.
// The cubemap slots are left alone, they belong to the environment.
func defaultsToWhite(slot resources.TextureSlot) bool {
	return slot != resources.EnvironmentTextureSlot && slot != resources.PrefilterTextureSlot
}

// install binds the uniform block, the textures and the environment, then
// applies the raw values through the installed material.
func (c *MaterialPropertiesCache) install(gl Functions, r *RendererGL, mc *MaterialCache) {
	mp := c.MaterialProperties()
	if mp == nil {
		return
	}
	c.uniforms.bind(gl, renderer.MaterialUniformBinding)

	for slot := resources.TextureSlot(0); slot < resources.MaxTextures; slot++ {
		t := mp.Texture(slot)
		if t == nil {
			if !defaultsToWhite(slot) {
				continue
			}
			t = resources.StandardTexture(resources.WhiteTexture)
		}
		if !r.textureCache(t).applyToSlot(gl, uint32(slot)) {
			r.textureCache(resources.StandardTexture(resources.MissingTexture)).applyToSlot(gl, uint32(slot))
		}
	}

	if cm := mp.EnvironmentCubemap(); cm != nil {
		r.cubemapCache(cm).applyToSlots(gl,
			uint32(resources.EnvironmentTextureSlot), IrradianceUnit, uint32(resources.PrefilterTextureSlot))
	}

	for _, name := range mp.RawValueNames() {
		mc.applyUniform(gl, name, mp.RawValue(name, nil))
	}
}

func (c *MaterialPropertiesCache) destroy(gl Functions) {
	c.uniforms.destroy(gl)
}
