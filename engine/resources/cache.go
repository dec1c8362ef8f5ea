package resources

/**
 * @brief A renderer specific, GPU resident projection of a Resource.
 * A Cache starts dirty and only becomes clean through its own update.
 */
type Cache interface {
	IsDirty() bool
	MarkDirty()
	MarkClean()
	// Release is called by the owning renderer once the GPU objects are gone.
	// Cache map entries holding a released cache are treated as expired.
	Release()
	Released() bool
	// Orphaned reports whether the owning resource has been destroyed.
	Orphaned() bool
}

// CacheDeleter is implemented by renderers. Resources use it on destruction to
// ask the renderer that built a cache to free it.
type CacheDeleter interface {
	DeleteCache(c Cache)
}

type CacheBase struct {
	owner    *Resource
	clean    bool
	released bool
}

func NewCacheBase(owner *Resource) CacheBase {
	return CacheBase{owner: owner}
}

func (c *CacheBase) IsDirty() bool  { return !c.clean }
func (c *CacheBase) MarkDirty()     { c.clean = false }
func (c *CacheBase) MarkClean()     { c.clean = true }
func (c *CacheBase) Release()       { c.released = true }
func (c *CacheBase) Released() bool { return c.released }

func (c *CacheBase) Orphaned() bool {
	return c.owner.Destroyed()
}

type MeshCacheBase struct {
	CacheBase
	mesh *Mesh
}

func NewMeshCacheBase(m *Mesh) MeshCacheBase {
	return MeshCacheBase{CacheBase: NewCacheBase(&m.Resource), mesh: m}
}

// Mesh returns the owning mesh, nil once it has been destroyed.
func (c *MeshCacheBase) Mesh() *Mesh {
	if c.mesh == nil || c.mesh.Destroyed() {
		return nil
	}
	return c.mesh
}

type LineGroupCacheBase struct {
	CacheBase
	lineGroup *LineGroup
}

func NewLineGroupCacheBase(lg *LineGroup) LineGroupCacheBase {
	return LineGroupCacheBase{CacheBase: NewCacheBase(&lg.Resource), lineGroup: lg}
}

func (c *LineGroupCacheBase) LineGroup() *LineGroup {
	if c.lineGroup == nil || c.lineGroup.Destroyed() {
		return nil
	}
	return c.lineGroup
}

type MaterialCacheBase struct {
	CacheBase
	material *Material
}

func NewMaterialCacheBase(m *Material) MaterialCacheBase {
	return MaterialCacheBase{CacheBase: NewCacheBase(&m.Resource), material: m}
}

func (c *MaterialCacheBase) Material() *Material {
	if c.material == nil || c.material.Destroyed() {
		return nil
	}
	return c.material
}

type MaterialPropertiesCacheBase struct {
	CacheBase
	properties *MaterialProperties
}

func NewMaterialPropertiesCacheBase(mp *MaterialProperties) MaterialPropertiesCacheBase {
	return MaterialPropertiesCacheBase{CacheBase: NewCacheBase(&mp.Resource), properties: mp}
}

func (c *MaterialPropertiesCacheBase) MaterialProperties() *MaterialProperties {
	if c.properties == nil || c.properties.Destroyed() {
		return nil
	}
	return c.properties
}

type TextureCacheBase struct {
	CacheBase
	texture *Texture
}

func NewTextureCacheBase(t *Texture) TextureCacheBase {
	return TextureCacheBase{CacheBase: NewCacheBase(&t.Resource), texture: t}
}

func (c *TextureCacheBase) Texture() *Texture {
	if c.texture == nil || c.texture.Destroyed() {
		return nil
	}
	return c.texture
}

type CubemapCacheBase struct {
	CacheBase
	cubemap *Cubemap
}

func NewCubemapCacheBase(cm *Cubemap) CubemapCacheBase {
	return CubemapCacheBase{CacheBase: NewCacheBase(&cm.Resource), cubemap: cm}
}

func (c *CubemapCacheBase) Cubemap() *Cubemap {
	if c.cubemap == nil || c.cubemap.Destroyed() {
		return nil
	}
	return c.cubemap
}
