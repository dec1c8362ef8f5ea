package resources

import (
	"sort"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

type TextureSlot int

const (
	AlbedoTextureSlot TextureSlot = iota
	NormalTextureSlot
	MetallicTextureSlot
	RoughnessTextureSlot
	AOTextureSlot

	EnvironmentTextureSlot
	PrefilterTextureSlot
	BrdfTextureSlot

	MaxTextures = 8
)

/**
 * @brief Per-instance material inputs: textures bound to fixed slots, scalar
 * parameters uploaded as the material uniform block, and raw uniform values
 * applied by name.
 */
type MaterialProperties struct {
	Resource
	alwaysTranslucent bool
	albedo            math.Vec4
	metallic          float32
	roughness         float32
	ao                float32
	opacity           float32
	rawValues         map[string]any
	textures          [MaxTextures]*Texture
	environment       *Cubemap
	caches            CacheMap
}

func NewMaterialProperties(manager *Manager) *MaterialProperties {
	core.LogDebug("Constructor: MaterialProperties")
	return &MaterialProperties{
		Resource:  newResource(ResourceTypeMaterialProperties, manager),
		albedo:    math.NewVec4One(),
		roughness: 0.5,
		ao:        1.0,
		opacity:   1.0,
		rawValues: make(map[string]any),
	}
}

func (mp *MaterialProperties) Clone() *MaterialProperties {
	n := NewMaterialProperties(mp.manager)
	n.alwaysTranslucent = mp.alwaysTranslucent
	n.albedo, n.metallic, n.roughness, n.ao, n.opacity = mp.albedo, mp.metallic, mp.roughness, mp.ao, mp.opacity
	for k, v := range mp.rawValues {
		n.rawValues[k] = v
	}
	n.textures = mp.textures
	n.environment = mp.environment
	return n
}

// Texture returns the texture bound to slot, nil when unset or destroyed.
func (mp *MaterialProperties) Texture(slot TextureSlot) *Texture {
	if slot < 0 || slot >= MaxTextures {
		return nil
	}
	t := mp.textures[slot]
	if t == nil || t.Destroyed() {
		return nil
	}
	return t
}

func (mp *MaterialProperties) SetTexture(t *Texture, slot TextureSlot) {
	if slot < 0 || slot >= MaxTextures || mp.textures[slot] == t {
		return
	}
	mp.textures[slot] = t
	mp.caches.Invalidate(core.AllRenderers)
}

// EnvironmentCubemap is bound to the environment, prefilter and irradiance samplers.
func (mp *MaterialProperties) EnvironmentCubemap() *Cubemap {
	if mp.environment == nil || mp.environment.Destroyed() {
		return nil
	}
	return mp.environment
}

func (mp *MaterialProperties) SetEnvironmentCubemap(cm *Cubemap) {
	if mp.environment == cm {
		return
	}
	mp.environment = cm
	mp.caches.Invalidate(core.AllRenderers)
}

func (mp *MaterialProperties) Albedo() math.Vec4 { return mp.albedo }

func (mp *MaterialProperties) SetAlbedo(c math.Vec4) {
	mp.albedo = c
	mp.caches.Invalidate(core.AllRenderers)
}

func (mp *MaterialProperties) Metallic() float32  { return mp.metallic }
func (mp *MaterialProperties) Roughness() float32 { return mp.roughness }
func (mp *MaterialProperties) AO() float32        { return mp.ao }
func (mp *MaterialProperties) Opacity() float32   { return mp.opacity }

func (mp *MaterialProperties) SetPBR(metallic, roughness, ao float32) {
	mp.metallic = math.Clamp(metallic, 0, 1)
	mp.roughness = math.Clamp(roughness, 0, 1)
	mp.ao = math.Clamp(ao, 0, 1)
	mp.caches.Invalidate(core.AllRenderers)
}

func (mp *MaterialProperties) SetOpacity(opacity float32) {
	mp.opacity = math.Clamp(opacity, 0, 1)
	mp.caches.Invalidate(core.AllRenderers)
}

func (mp *MaterialProperties) RawValue(name string, fallback any) any {
	if v, ok := mp.rawValues[name]; ok {
		return v
	}
	return fallback
}

// SetRawValue stores a uniform applied by name on every draw. Only changed
// values reach the GPU.
func (mp *MaterialProperties) SetRawValue(name string, value any) {
	mp.rawValues[name] = value
}

// RawValueNames returns the names of all raw values, sorted.
func (mp *MaterialProperties) RawValueNames() []string {
	names := make([]string, 0, len(mp.rawValues))
	for k := range mp.rawValues {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (mp *MaterialProperties) SetAlwaysTranslucent(always bool) {
	mp.alwaysTranslucent = always
}

func (mp *MaterialProperties) IsTranslucent() bool {
	return mp.alwaysTranslucent
}

func (mp *MaterialProperties) InvalidateCache(id core.Identifier) {
	mp.caches.Invalidate(id)
}

func (mp *MaterialProperties) Destroy() {
	if mp.destroyed {
		return
	}
	mp.caches.release(ResourceTypeMaterialProperties)
	mp.markDestroyed()
	core.LogDebug("Destructor: MaterialProperties")
}

func GetOrEmplaceMaterialPropertiesCache[T Cache](mp *MaterialProperties, id core.Identifier, newCache func(*MaterialProperties) T) (T, bool, error) {
	return GetOrEmplace(&mp.caches, id, func() T { return newCache(mp) })
}

func GetMaterialPropertiesCacheT[T Cache](mp *MaterialProperties, id core.Identifier) (T, error) {
	return GetCacheT[T](&mp.caches, id)
}
