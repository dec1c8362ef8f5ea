package opengl

import (
	"encoding/binary"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// Vertex attribute locations shared by every mesh shader.
const (
	Position3DAttribute     uint32 = 0
	Position2DAttribute     uint32 = 1
	TextureCoordAttribute   uint32 = 2
	NormalAttribute         uint32 = 3
	Color3DAttribute        uint32 = 4
	Color4DAttribute        uint32 = 5
	BoneIDsAttribute        uint32 = 6
	BoneWeightsAttribute    uint32 = 7
	SmoothingGroupAttribute uint32 = 8
)

type vertexAttribute struct {
	location   uint32
	components int32
	xtype      uint32
	size       int
	integer    bool
}

type meshAttribute struct {
	flag resources.MeshContents
	vertexAttribute
}

// meshAttributes is in packing order.
var meshAttributes = []meshAttribute{
	{resources.MeshPosition2D, vertexAttribute{Position2DAttribute, 2, glFloat, 8, false}},
	{resources.MeshPosition3D, vertexAttribute{Position3DAttribute, 3, glFloat, 12, false}},
	{resources.MeshTextureCoord2D, vertexAttribute{TextureCoordAttribute, 2, glFloat, 8, false}},
	{resources.MeshNormal3D, vertexAttribute{NormalAttribute, 3, glFloat, 12, false}},
	{resources.MeshColor3D, vertexAttribute{Color3DAttribute, 3, glFloat, 12, false}},
	{resources.MeshColor4D, vertexAttribute{Color4DAttribute, 4, glFloat, 16, false}},
	{resources.MeshBoneIDs, vertexAttribute{BoneIDsAttribute, 4, glUnsignedByte, 4, true}},
	{resources.MeshBoneWeights, vertexAttribute{BoneWeightsAttribute, 4, glFloat, 16, false}},
	{resources.MeshSmoothingGroup, vertexAttribute{SmoothingGroupAttribute, 1, glUnsignedByte, 1, true}},
}

// setupAttributes enables the attributes in use on the bound VAO and
// disables the rest of the known locations.
func setupAttributes(gl Functions, attrs []vertexAttribute, enabled func(i int) bool, stride int32) {
	offset := 0
	for i, a := range attrs {
		if !enabled(i) {
			gl.DisableVertexAttribArray(a.location)
			continue
		}
		gl.EnableVertexAttribArray(a.location)
		if a.integer {
			gl.VertexAttribIPointer(a.location, a.components, a.xtype, stride, offset)
		} else {
			gl.VertexAttribPointer(a.location, a.components, a.xtype, false, stride, offset)
		}
		offset += a.size
	}
}

func indexBytes(indices []uint32) []byte {
	buf := make([]byte, 0, 4*len(indices))
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint32(buf, i)
	}
	return buf
}

// vertexArray is the VAO with its vertex and index buffers.
type vertexArray struct {
	vao, vbo, ibo uint32
	mode          uint32
	count         int32
	indexed       bool
}

func (va *vertexArray) upload(gl Functions, data []byte, indices []uint32, indexed bool) {
	if va.vao == 0 {
		va.vao = gl.GenVertexArray()
		va.vbo = gl.GenBuffer()
	}
	gl.BindVertexArray(va.vao)
	gl.BindBuffer(glArrayBuffer, va.vbo)
	gl.BufferData(glArrayBuffer, data, glStaticDraw)

	va.indexed = indexed
	if indexed {
		if va.ibo == 0 {
			va.ibo = gl.GenBuffer()
		}
		gl.BindBuffer(glElementArrayBuffer, va.ibo)
		gl.BufferData(glElementArrayBuffer, indexBytes(indices), glStaticDraw)
	}
}

func (va *vertexArray) draw(gl Functions) {
	if va.vao == 0 || va.count == 0 {
		return
	}
	gl.BindVertexArray(va.vao)
	if va.indexed {
		gl.DrawElements(va.mode, va.count, glUnsignedInt, 0)
	} else {
		gl.DrawArrays(va.mode, 0, va.count)
	}
	gl.BindVertexArray(0)
}

func (va *vertexArray) destroy(gl Functions) {
	if va.vao != 0 {
		gl.DeleteVertexArray(va.vao)
	}
	for _, b := range []uint32{va.vbo, va.ibo} {
		if b != 0 {
			gl.DeleteBuffer(b)
		}
	}
	*va = vertexArray{}
}

// uniformBuffer is a UBO re-specified on every upload.
type uniformBuffer struct {
	handle uint32
}

func (u *uniformBuffer) upload(gl Functions, data []byte) {
	if u.handle == 0 {
		u.handle = gl.GenBuffer()
	}
	gl.BindBuffer(glUniformBuffer, u.handle)
	gl.BufferData(glUniformBuffer, data, glDynamicDraw)
	gl.BindBuffer(glUniformBuffer, 0)
}

func (u *uniformBuffer) bind(gl Functions, binding uint32) {
	if u.handle != 0 {
		gl.BindBufferBase(glUniformBuffer, binding, u.handle)
	}
}

func (u *uniformBuffer) destroy(gl Functions) {
	if u.handle != 0 {
		gl.DeleteBuffer(u.handle)
		u.handle = 0
	}
}

/**
 * @brief GPU side of a mesh: vertex array, buffers and the mesh uniform
 * block carrying the transforms of the current draw.
 */
type MeshCache struct {
	resources.MeshCacheBase
	vertexArray
	uniforms uniformBuffer
}

func NewMeshCache(m *resources.Mesh) *MeshCache {
	core.LogDebug("Constructor: MeshCache")
	return &MeshCache{MeshCacheBase: resources.NewMeshCacheBase(m)}
}

func meshPrimitive(mode resources.MeshDrawMode) uint32 {
	switch mode {
	case resources.TriangleStrips, resources.IndexedTriangleStrips:
		return glTriangleStrip
	default:
		return glTriangles
	}
}

func (c *MeshCache) update(gl Functions) {
	defer checkErrors(gl, "MeshCache.update")()

	m := c.Mesh()
	if m == nil {
		return
	}
	contents := m.Contents()
	indexed := m.DrawMode().Indexed()

	c.vertexArray.upload(gl, m.PackedData(), m.Indices(), indexed)
	attrs := make([]vertexAttribute, len(meshAttributes))
	for i, a := range meshAttributes {
		attrs[i] = a.vertexAttribute
	}
	setupAttributes(gl, attrs, func(i int) bool {
		return contents.Has(meshAttributes[i].flag)
	}, int32(resources.MeshPackedVertexSize(contents)))
	gl.BindVertexArray(0)

	c.mode = meshPrimitive(m.DrawMode())
	if indexed {
		c.count = int32(len(m.Indices()))
	} else {
		c.count = int32(len(m.Vertices()))
	}
	c.MarkClean()
}

// render uploads the transforms of info and issues the draw call.
func (c *MeshCache) render(gl Functions, info renderer.DrawInfo) {
	defer checkErrors(gl, "MeshCache.render")()

	if c.vao == 0 || c.count == 0 {
		return
	}
	c.uniforms.upload(gl, info.Bytes())
	c.uniforms.bind(gl, renderer.MeshUniformBinding)
	c.draw(gl)
}

func (c *MeshCache) destroy(gl Functions) {
	c.vertexArray.destroy(gl)
	c.uniforms.destroy(gl)
}
