package opengl

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// Vertex attribute locations of the line shaders.
const (
	LinePosition3DAttribute uint32 = 0
	LinePosition2DAttribute uint32 = 1
	LineColor3DAttribute    uint32 = 2
	LineColor4DAttribute    uint32 = 3
)

// LineFeatherSize is the antialiased border added to each side of a line, in pixels.
const LineFeatherSize = 1.0

type lineAttribute struct {
	flag resources.LineGroupContents
	vertexAttribute
}

// lineAttributes is in packing order.
var lineAttributes = []lineAttribute{
	{resources.LinePosition2D, vertexAttribute{LinePosition2DAttribute, 2, glFloat, 8, false}},
	{resources.LinePosition3D, vertexAttribute{LinePosition3DAttribute, 3, glFloat, 12, false}},
	{resources.LineColor3D, vertexAttribute{LineColor3DAttribute, 3, glFloat, 12, false}},
	{resources.LineColor4D, vertexAttribute{LineColor4DAttribute, 4, glFloat, 16, false}},
}

// LineGroupCache holds the vertex array of a line group with its mesh and line uniform blocks.
type LineGroupCache struct {
	resources.LineGroupCacheBase
	vertexArray
	meshUniforms uniformBuffer
	lineUniforms uniformBuffer
}

func NewLineGroupCache(lg *resources.LineGroup) *LineGroupCache {
	core.LogDebug("Constructor: LineGroupCache")
	return &LineGroupCache{LineGroupCacheBase: resources.NewLineGroupCacheBase(lg)}
}

func linePrimitive(mode resources.LineGroupDrawMode) uint32 {
	switch mode {
	case resources.LineStrips, resources.IndexedLineStrips:
		return glLineStrip
	default:
		return glLines
	}
}

func (c *LineGroupCache) update(gl Functions) {
	defer checkErrors(gl, "LineGroupCache.update")()

	lg := c.LineGroup()
	if lg == nil {
		return
	}
	contents := lg.Contents()
	indexed := lg.DrawMode().Indexed()

	c.vertexArray.upload(gl, lg.PackedData(), lg.Indices(), indexed)
	attrs := make([]vertexAttribute, len(lineAttributes))
	for i, a := range lineAttributes {
		attrs[i] = a.vertexAttribute
	}
	setupAttributes(gl, attrs, func(i int) bool {
		return contents.Has(lineAttributes[i].flag)
	}, int32(resources.LinePackedVertexSize(contents)))
	gl.BindVertexArray(0)

	c.mode = linePrimitive(lg.DrawMode())
	if indexed {
		c.count = int32(len(lg.Indices()))
	} else {
		c.count = int32(len(lg.Vertices()))
	}

	c.lineUniforms.upload(gl, renderer.LineUniforms{
		Thickness: lg.Thickness(),
		Feather:   LineFeatherSize,
	}.Bytes())
	c.MarkClean()
}

func (c *LineGroupCache) render(gl Functions, info renderer.DrawInfo) {
	defer checkErrors(gl, "LineGroupCache.render")()

	if c.vao == 0 || c.count == 0 {
		return
	}
	c.meshUniforms.upload(gl, info.Bytes())
	c.meshUniforms.bind(gl, renderer.MeshUniformBinding)
	c.lineUniforms.bind(gl, renderer.LineUniformBinding)
	c.draw(gl)
}

func (c *LineGroupCache) destroy(gl Functions) {
	c.vertexArray.destroy(gl)
	c.meshUniforms.destroy(gl)
	c.lineUniforms.destroy(gl)
}
