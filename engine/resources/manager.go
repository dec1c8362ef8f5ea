package resources

import (
	"sort"

	"github.com/spaghettifunk/lumen/engine/core"
)

type destroyer interface {
	Destroy()
}

/**
 * @brief Name indexed registry of resources. Registering under a taken name
 * replaces the previous entry. Destroy tears every registered resource down.
 */
type Manager struct {
	meshes             map[string]*Mesh
	lineGroups         map[string]*LineGroup
	materials          map[string]*Material
	materialProperties map[string]*MaterialProperties
	textures           map[string]*Texture
	cubemaps           map[string]*Cubemap
}

func NewManager() *Manager {
	return &Manager{
		meshes:             make(map[string]*Mesh),
		lineGroups:         make(map[string]*LineGroup),
		materials:          make(map[string]*Material),
		materialProperties: make(map[string]*MaterialProperties),
		textures:           make(map[string]*Texture),
		cubemaps:           make(map[string]*Cubemap),
	}
}

func register[T any](m map[string]*T, name string, r *T, res *Resource, mgr *Manager) *T {
	if prev, ok := m[name]; ok && prev != r {
		core.LogDebug("resource %q replaced in manager", name)
	}
	res.Name = name
	res.manager = mgr
	m[name] = r
	return r
}

func (m *Manager) RegisterMesh(name string, r *Mesh) *Mesh {
	return register(m.meshes, name, r, &r.Resource, m)
}

func (m *Manager) RegisterLineGroup(name string, r *LineGroup) *LineGroup {
	return register(m.lineGroups, name, r, &r.Resource, m)
}

func (m *Manager) RegisterMaterial(name string, r *Material) *Material {
	return register(m.materials, name, r, &r.Resource, m)
}

func (m *Manager) RegisterMaterialProperties(name string, r *MaterialProperties) *MaterialProperties {
	return register(m.materialProperties, name, r, &r.Resource, m)
}

func (m *Manager) RegisterTexture(name string, r *Texture) *Texture {
	return register(m.textures, name, r, &r.Resource, m)
}

func (m *Manager) RegisterCubemap(name string, r *Cubemap) *Cubemap {
	return register(m.cubemaps, name, r, &r.Resource, m)
}

func (m *Manager) GetMesh(name string) *Mesh           { return m.meshes[name] }
func (m *Manager) GetLineGroup(name string) *LineGroup { return m.lineGroups[name] }
func (m *Manager) GetMaterial(name string) *Material   { return m.materials[name] }
func (m *Manager) GetTexture(name string) *Texture     { return m.textures[name] }
func (m *Manager) GetCubemap(name string) *Cubemap     { return m.cubemaps[name] }

func (m *Manager) GetMaterialProperties(name string) *MaterialProperties {
	return m.materialProperties[name]
}

func sortedKeys[T any](m map[string]*T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) RegisteredMeshes() []string     { return sortedKeys(m.meshes) }
func (m *Manager) RegisteredLineGroups() []string { return sortedKeys(m.lineGroups) }
func (m *Manager) RegisteredMaterials() []string  { return sortedKeys(m.materials) }
func (m *Manager) RegisteredTextures() []string   { return sortedKeys(m.textures) }
func (m *Manager) RegisteredCubemaps() []string   { return sortedKeys(m.cubemaps) }

func (m *Manager) RegisteredMaterialProperties() []string {
	return sortedKeys(m.materialProperties)
}

// Materials returns every registered material, ordered by name.
func (m *Manager) Materials() []*Material {
	out := make([]*Material, 0, len(m.materials))
	for _, name := range m.RegisteredMaterials() {
		out = append(out, m.materials[name])
	}
	return out
}

// forget drops r from the registry if it is registered under its name.
func (m *Manager) forget(r *Resource) {
	switch r.Type {
	case ResourceTypeMesh:
		if v, ok := m.meshes[r.Name]; ok && &v.Resource == r {
			delete(m.meshes, r.Name)
		}
	case ResourceTypeLineGroup:
		if v, ok := m.lineGroups[r.Name]; ok && &v.Resource == r {
			delete(m.lineGroups, r.Name)
		}
	case ResourceTypeMaterial:
		if v, ok := m.materials[r.Name]; ok && &v.Resource == r {
			delete(m.materials, r.Name)
		}
	case ResourceTypeMaterialProperties:
		if v, ok := m.materialProperties[r.Name]; ok && &v.Resource == r {
			delete(m.materialProperties, r.Name)
		}
	case ResourceTypeTexture:
		if v, ok := m.textures[r.Name]; ok && &v.Resource == r {
			delete(m.textures, r.Name)
		}
	case ResourceTypeCubemap:
		if v, ok := m.cubemaps[r.Name]; ok && &v.Resource == r {
			delete(m.cubemaps, r.Name)
		}
	}
}

// Destroy destroys every registered resource. Properties go first since they
// reference textures and cubemaps.
func (m *Manager) Destroy() {
	var all []destroyer
	for _, name := range sortedKeys(m.materialProperties) {
		all = append(all, m.materialProperties[name])
	}
	for _, name := range sortedKeys(m.meshes) {
		all = append(all, m.meshes[name])
	}
	for _, name := range sortedKeys(m.lineGroups) {
		all = append(all, m.lineGroups[name])
	}
	for _, name := range sortedKeys(m.materials) {
		all = append(all, m.materials[name])
	}
	for _, name := range sortedKeys(m.textures) {
		all = append(all, m.textures[name])
	}
	for _, name := range sortedKeys(m.cubemaps) {
		all = append(all, m.cubemaps[name])
	}
	for _, r := range all {
		r.Destroy()
	}
	core.LogDebug("resource manager destroyed %d resources", len(all))
}
