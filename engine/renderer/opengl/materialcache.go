package opengl

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// IrradianceUnit is the texture unit of the irradiance map, past the material slots.
const IrradianceUnit = uint32(resources.MaxTextures)

// samplerUnits maps the sampler names the shaders may declare to texture units.
var samplerUnits = func() []struct {
	name string
	unit uint32
} {
	type entry = struct {
		name string
		unit uint32
	}
	var out []entry
	for i := 0; i < resources.MaxTextures; i++ {
		out = append(out, entry{fmt.Sprintf("TextureSlot%d", i), uint32(i)})
	}
	return append(out,
		entry{"AlbedoTexture", uint32(resources.AlbedoTextureSlot)},
		entry{"DiffuseTexture", uint32(resources.AlbedoTextureSlot)},
		entry{"NormalTexture", uint32(resources.NormalTextureSlot)},
		entry{"BumpMapTexture", uint32(resources.NormalTextureSlot)},
		entry{"MetallicTexture", uint32(resources.MetallicTextureSlot)},
		entry{"EmissiveTexture", uint32(resources.MetallicTextureSlot)},
		entry{"RoughnessTexture", uint32(resources.RoughnessTextureSlot)},
		entry{"AOTexture", uint32(resources.AOTextureSlot)},
		entry{"EnvironmentMapTexture", uint32(resources.EnvironmentTextureSlot)},
		entry{"CubeMapTexture", uint32(resources.EnvironmentTextureSlot)},
		entry{"PrefilterTexture", uint32(resources.PrefilterTextureSlot)},
		entry{"BrdfTexture", uint32(resources.BrdfTextureSlot)},
		entry{"IrradianceTexture", IrradianceUnit},
	)
}()

var uniformBlocks = []struct {
	name    string
	binding uint32
}{
	{renderer.MeshUniformBlock, renderer.MeshUniformBinding},
	{renderer.MaterialUniformBlock, renderer.MaterialUniformBinding},
	{renderer.SceneUniformBlock, renderer.SceneUniformBinding},
	{renderer.LineUniformBlock, renderer.LineUniformBinding},
}

type uniformState struct {
	location int32
	value    any
	set      bool
}

/**
 * @brief Linked program of a material. Uniform locations are looked up once
 * per name and values are only sent when they change.
 */
type MaterialCache struct {
	resources.MaterialCacheBase
	program   uint32
	uniforms  map[string]*uniformState
	lastError string
}

func NewMaterialCache(m *resources.Material) *MaterialCache {
	core.LogDebug("Constructor: MaterialCache")
	return &MaterialCache{MaterialCacheBase: resources.NewMaterialCacheBase(m)}
}

// Program returns the linked program, 0 when linking failed.
func (c *MaterialCache) Program() uint32 { return c.program }

func (c *MaterialCache) update(gl Functions) {
	defer checkErrors(gl, "MaterialCache.update")()

	m := c.Material()
	if m == nil {
		return
	}

	prog, err := makeProgram(gl,
		m.Shader(resources.VertexShader),
		m.Shader(resources.GeometryShader),
		m.Shader(resources.FragmentShader))

	c.destroy(gl)
	if err != nil {
		if msg := err.Error(); msg != c.lastError {
			core.LogWarn("Couldn't build material %q: %s", m.Name, msg)
			c.lastError = msg
		}
		return
	}
	c.program = prog
	c.uniforms = make(map[string]*uniformState)

	gl.UseProgram(prog)
	for _, s := range samplerUnits {
		c.applyUniform(gl, s.name, int32(s.unit))
	}
	for _, b := range uniformBlocks {
		if idx := gl.GetUniformBlockIndex(prog, b.name); idx != glInvalidIndex {
			gl.UniformBlockBinding(prog, idx, b.binding)
		}
	}
	gl.UseProgram(0)

	c.lastError = ""
	c.MarkClean()
}

// install makes the program current. It returns false when there is none.
func (c *MaterialCache) install(gl Functions) bool {
	if c.program == 0 {
		return false
	}
	gl.UseProgram(c.program)
	return true
}

func (c *MaterialCache) location(gl Functions, name string) *uniformState {
	u, ok := c.uniforms[name]
	if !ok {
		u = &uniformState{location: gl.GetUniformLocation(c.program, name)}
		c.uniforms[name] = u
	}
	return u
}

// applyUniform sets a uniform of the installed program. Names the program
// does not declare and unsupported value types are ignored.
func (c *MaterialCache) applyUniform(gl Functions, name string, value any) {
	if c.program == 0 {
		return
	}
	switch v := value.(type) {
	case int:
		value = int32(v)
	case float64:
		value = float32(v)
	case bool, int32, uint32, float32, math.Vec2, math.Vec3, math.Vec4, math.Mat4:
	default:
		core.LogDebug("Uniform %s has unsupported type %T", name, value)
		return
	}

	u := c.location(gl, name)
	if u.location < 0 || (u.set && u.value == value) {
		return
	}
	u.value, u.set = value, true

	switch v := value.(type) {
	case bool:
		b := int32(glFalse)
		if v {
			b = glTrue
		}
		gl.Uniform1i(u.location, b)
	case int32:
		gl.Uniform1i(u.location, v)
	case uint32:
		gl.Uniform1ui(u.location, v)
	case float32:
		gl.Uniform1f(u.location, v)
	case math.Vec2:
		gl.Uniform2f(u.location, v.X, v.Y)
	case math.Vec3:
		gl.Uniform3f(u.location, v.X, v.Y, v.Z)
	case math.Vec4:
		gl.Uniform4f(u.location, v.X, v.Y, v.Z, v.W)
	case math.Mat4:
		gl.UniformMatrix4fv(u.location, v.Data)
	}
}

func (c *MaterialCache) destroy(gl Functions) {
	if c.program != 0 {
		gl.DeleteProgram(c.program)
		c.program = 0
	}
	c.uniforms = nil
}
