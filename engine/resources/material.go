package resources

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
)

//go:embed shaders/*
var shaderFS embed.FS

type MaterialRenderOptions uint32

const (
	MaterialNoOptions MaterialRenderOptions = 0x0
	// Renders the group in the translucent pass.
	MaterialTranslucent MaterialRenderOptions = 0x1
)

type ShaderType int

const (
	VertexShader ShaderType = iota
	FragmentShader
	GeometryShader
)

func (st ShaderType) String() string {
	switch st {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	case GeometryShader:
		return "geometry"
	}
	return "unknown"
}

type StandardMaterialKind int

const (
	Basic2DMaterial StandardMaterialKind = iota
	Basic3DMaterial
	SampleTranslucentMaterial
	LinesMaterial
	SkyboxMaterial
	OITCompositeMaterial
)

// Material holds GLSL sources. Programs are compiled per renderer by its MaterialCache.
type Material struct {
	Resource
	renderOptions MaterialRenderOptions
	shaders       map[ShaderType]string
	shaderFiles   map[ShaderType]string
	caches        CacheMap
}

func NewMaterial(manager *Manager) *Material {
	core.LogDebug("Constructor: Material")
	return &Material{
		Resource:    newResource(ResourceTypeMaterial, manager),
		shaders:     make(map[ShaderType]string),
		shaderFiles: make(map[ShaderType]string),
	}
}

func (m *Material) Clone() *Material {
	n := NewMaterial(m.manager)
	n.renderOptions = m.renderOptions
	for k, v := range m.shaders {
		n.shaders[k] = v
	}
	for k, v := range m.shaderFiles {
		n.shaderFiles[k] = v
	}
	return n
}

func (m *Material) RenderOptions() MaterialRenderOptions { return m.renderOptions }

func (m *Material) SetRenderOptions(options MaterialRenderOptions) {
	m.renderOptions = options
}

func (m *Material) IsTranslucent() bool {
	return m.renderOptions&MaterialTranslucent != 0
}

func (m *Material) SetShader(st ShaderType, source string) {
	if m.shaders[st] == source {
		return
	}
	m.shaders[st] = source
	m.caches.Invalidate(core.AllRenderers)
}

// SetShaderFile loads the source from path and remembers the path for ReloadShaders.
func (m *Material) SetShaderFile(st ShaderType, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s shader %q: %w", st, path, err)
	}
	m.shaderFiles[st] = path
	m.SetShader(st, string(data))
	return nil
}

func (m *Material) Shader(st ShaderType) string {
	return m.shaders[st]
}

// ShaderFiles returns the file paths the sources were loaded from, sorted.
func (m *Material) ShaderFiles() []string {
	out := make([]string, 0, len(m.shaderFiles))
	for _, p := range m.shaderFiles {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ReloadShaders re-reads every file-backed source. Caches are invalidated only
// when a source actually changed.
func (m *Material) ReloadShaders() error {
	for st, path := range m.shaderFiles {
		if err := m.SetShaderFile(st, path); err != nil {
			return err
		}
	}
	return nil
}

func (m *Material) InvalidateCache(id core.Identifier) {
	m.caches.Invalidate(id)
}

func (m *Material) Destroy() {
	if m.destroyed {
		return
	}
	m.caches.release(ResourceTypeMaterial)
	m.markDestroyed()
	core.LogDebug("Destructor: Material")
}

func GetOrEmplaceMaterialCache[T Cache](m *Material, id core.Identifier, newCache func(*Material) T) (T, bool, error) {
	return GetOrEmplace(&m.caches, id, func() T { return newCache(m) })
}

func GetMaterialCacheT[T Cache](m *Material, id core.Identifier) (T, error) {
	return GetCacheT[T](&m.caches, id)
}

var (
	standardMaterialsMu sync.Mutex
	standardMaterials   = map[StandardMaterialKind]*Material{}
)

func mustEmbeddedShader(name string) string {
	data, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		panic(fmt.Errorf("missing embedded shader %s: %w", name, err))
	}
	return string(data)
}

// StandardMaterial returns a process wide material built on first request.
func StandardMaterial(kind StandardMaterialKind) *Material {
	standardMaterialsMu.Lock()
	defer standardMaterialsMu.Unlock()

	if m, ok := standardMaterials[kind]; ok {
		return m
	}

	m := NewMaterial(nil)
	switch kind {
	case Basic2DMaterial:
		m.Name = "Basic2D"
		m.SetShader(VertexShader, mustEmbeddedShader("Basic2DMaterial.vert"))
		m.SetShader(FragmentShader, mustEmbeddedShader("Basic2DMaterial.frag"))
	case Basic3DMaterial:
		m.Name = "Basic3D"
		m.SetShader(VertexShader, mustEmbeddedShader("Basic3DMaterial.vert"))
		m.SetShader(FragmentShader, mustEmbeddedShader("Basic3DMaterial.frag"))
	case SampleTranslucentMaterial:
		m.Name = "SampleTranslucent"
		m.SetShader(VertexShader, mustEmbeddedShader("Basic3DMaterial.vert"))
		m.SetShader(FragmentShader, mustEmbeddedShader("SampleTranslucentMaterial.frag"))
		m.SetRenderOptions(MaterialTranslucent)
	case LinesMaterial:
		m.Name = "Lines"
		m.SetShader(VertexShader, mustEmbeddedShader("LinesMaterial.vert"))
		m.SetShader(GeometryShader, mustEmbeddedShader("LinesMaterial.geom"))
		m.SetShader(FragmentShader, mustEmbeddedShader("LinesMaterial.frag"))
	case SkyboxMaterial:
		m.Name = "Skybox"
		m.SetShader(VertexShader, mustEmbeddedShader("SkyboxMaterial.vert"))
		m.SetShader(FragmentShader, mustEmbeddedShader("SkyboxMaterial.frag"))
	case OITCompositeMaterial:
		m.Name = "OITComposite"
		m.SetShader(VertexShader, mustEmbeddedShader("OITComposite.vert"))
		m.SetShader(FragmentShader, mustEmbeddedShader("OITComposite.frag"))
	}
	standardMaterials[kind] = m
	return m
}
