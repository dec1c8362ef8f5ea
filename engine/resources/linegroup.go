package resources

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

type LineGroupContents uint32

const (
	LinePosition2D LineGroupContents = 0x0001
	LinePosition3D LineGroupContents = 0x0002
	LineColor3D    LineGroupContents = 0x0004
	LineColor4D    LineGroupContents = 0x0008
)

func (c LineGroupContents) Has(flag LineGroupContents) bool {
	return c&flag != 0
}

type LineGroupDrawMode int

const (
	Lines LineGroupDrawMode = iota
	IndexedLines
	LineStrips
	IndexedLineStrips
)

func (m LineGroupDrawMode) Indexed() bool {
	return m == IndexedLines || m == IndexedLineStrips
}

type LineVertex struct {
	Position2D math.Vec2
	Position3D math.Vec3
	Color3D    math.Vec3
	Color4D    math.Vec4
}

func (v LineVertex) Equals(o LineVertex, contents LineGroupContents) bool {
	if contents.Has(LinePosition2D) && v.Position2D != o.Position2D {
		return false
	}
	if contents.Has(LinePosition3D) && v.Position3D != o.Position3D {
		return false
	}
	if contents.Has(LineColor3D) && v.Color3D != o.Color3D {
		return false
	}
	if contents.Has(LineColor4D) && v.Color4D != o.Color4D {
		return false
	}
	return true
}

// LineGroup is a set of polylines rendered with a screen space thickness.
type LineGroup struct {
	Resource
	drawMode   LineGroupDrawMode
	vertices   []LineVertex
	indices    []uint32
	thickness  float32
	contents   LineGroupContents
	packedData []byte
	caches     CacheMap
}

func NewLineGroup(manager *Manager) *LineGroup {
	core.LogDebug("Constructor: LineGroup")
	return &LineGroup{
		Resource:  newResource(ResourceTypeLineGroup, manager),
		drawMode:  Lines,
		thickness: 1.0,
	}
}

func (lg *LineGroup) Clone() *LineGroup {
	n := NewLineGroup(lg.manager)
	n.drawMode = lg.drawMode
	n.vertices = append([]LineVertex(nil), lg.vertices...)
	n.indices = append([]uint32(nil), lg.indices...)
	n.thickness = lg.thickness
	n.contents = lg.contents
	return n
}

func (lg *LineGroup) Thickness() float32 { return lg.thickness }

func (lg *LineGroup) SetThickness(value float32) {
	if lg.thickness == value {
		return
	}
	lg.thickness = value
	lg.caches.Invalidate(core.AllRenderers)
}

func (lg *LineGroup) Contents() LineGroupContents { return lg.contents }

func (lg *LineGroup) SetContents(contents LineGroupContents) {
	if lg.contents == contents {
		return
	}
	lg.contents = contents
	lg.packedData = nil
	lg.caches.Invalidate(core.AllRenderers)
}

func (lg *LineGroup) DrawMode() LineGroupDrawMode { return lg.drawMode }

func (lg *LineGroup) SetDrawMode(mode LineGroupDrawMode) {
	if lg.drawMode == mode {
		return
	}
	lg.drawMode = mode
	lg.caches.Invalidate(core.AllRenderers)
}

func (lg *LineGroup) Vertices() []LineVertex { return lg.vertices }

func (lg *LineGroup) SetVertices(vertices []LineVertex) {
	lg.vertices = vertices
	lg.packedData = nil
	lg.caches.Invalidate(core.AllRenderers)
}

func (lg *LineGroup) Indices() []uint32 { return lg.indices }

func (lg *LineGroup) SetIndices(indices []uint32) {
	lg.indices = indices
	lg.caches.Invalidate(core.AllRenderers)
}

func LinePackedVertexSize(contents LineGroupContents) int {
	size := 0
	if contents.Has(LinePosition2D) {
		size += 2 * 4
	}
	if contents.Has(LinePosition3D) {
		size += 3 * 4
	}
	if contents.Has(LineColor3D) {
		size += 3 * 4
	}
	if contents.Has(LineColor4D) {
		size += 4 * 4
	}
	return size
}

func appendLineVertex(buf []byte, v *LineVertex, contents LineGroupContents) []byte {
	if contents.Has(LinePosition2D) {
		buf = appendFloats(buf, v.Position2D.X, v.Position2D.Y)
	}
	if contents.Has(LinePosition3D) {
		buf = appendFloats(buf, v.Position3D.X, v.Position3D.Y, v.Position3D.Z)
	}
	if contents.Has(LineColor3D) {
		buf = appendFloats(buf, v.Color3D.X, v.Color3D.Y, v.Color3D.Z)
	}
	if contents.Has(LineColor4D) {
		buf = appendFloats(buf, v.Color4D.X, v.Color4D.Y, v.Color4D.Z, v.Color4D.W)
	}
	return buf
}

func (lg *LineGroup) PackedData() []byte {
	if lg.packedData == nil && len(lg.vertices) > 0 {
		buf := make([]byte, 0, LinePackedVertexSize(lg.contents)*len(lg.vertices))
		for i := range lg.vertices {
			buf = appendLineVertex(buf, &lg.vertices[i], lg.contents)
		}
		lg.packedData = buf
	}
	return lg.packedData
}

// OptimizeIndices merges equal vertices. Segment order and direction are kept.
// Segments referencing a vertex past the end are dropped, turning a strip
// into a segment list.
func (lg *LineGroup) OptimizeIndices() {
	if len(lg.vertices) == 0 {
		return
	}
	indices := lg.indices
	if !lg.drawMode.Indexed() {
		indices = sequentialIndices(len(lg.vertices))
	}
	mode := IndexedLines
	switch lg.drawMode {
	case Lines, IndexedLines:
		indices = flattenSegments(segmentIndices(lg.drawMode, indices, len(lg.vertices)))
	case LineStrips, IndexedLineStrips:
		if inRange(indices, len(lg.vertices)) {
			mode = IndexedLineStrips
		} else {
			indices = flattenSegments(segmentIndices(lg.drawMode, indices, len(lg.vertices)))
		}
	}
	lg.vertices, lg.indices = deduplicate(lg.vertices, indices, func(buf []byte, v *LineVertex) []byte {
		return appendLineVertex(buf, v, lg.contents)
	})
	lg.drawMode = mode
	lg.packedData = nil
	lg.caches.Invalidate(core.AllRenderers)
}

// Segments returns the vertex index pairs the line group draws.
func (lg *LineGroup) Segments() [][2]uint32 {
	idx := lg.indices
	if !lg.drawMode.Indexed() {
		idx = sequentialIndices(len(lg.vertices))
	}
	return segmentIndices(lg.drawMode, idx, len(lg.vertices))
}

// segmentIndices lists the index pairs drawn from idx, skipping any segment
// with an index of count or more.
func segmentIndices(mode LineGroupDrawMode, idx []uint32, count int) [][2]uint32 {
	valid := func(i uint32) bool { return int(i) < count }

	var out [][2]uint32
	step := 2
	if mode == LineStrips || mode == IndexedLineStrips {
		step = 1
	}
	for i := 0; i+1 < len(idx); i += step {
		if valid(idx[i]) && valid(idx[i+1]) {
			out = append(out, [2]uint32{idx[i], idx[i+1]})
		}
	}
	return out
}

func flattenSegments(segs [][2]uint32) []uint32 {
	out := make([]uint32, 0, 2*len(segs))
	for _, s := range segs {
		out = append(out, s[0], s[1])
	}
	return out
}

func (lg *LineGroup) InvalidateCache(id core.Identifier) {
	lg.packedData = nil
	lg.caches.Invalidate(id)
}

func (lg *LineGroup) Destroy() {
	if lg.destroyed {
		return
	}
	lg.caches.release(ResourceTypeLineGroup)
	lg.markDestroyed()
	core.LogDebug("Destructor: LineGroup")
}

func GetOrEmplaceLineGroupCache[T Cache](lg *LineGroup, id core.Identifier, newCache func(*LineGroup) T) (T, bool, error) {
	return GetOrEmplace(&lg.caches, id, func() T { return newCache(lg) })
}

func GetLineGroupCacheT[T Cache](lg *LineGroup, id core.Identifier) (T, error) {
	return GetCacheT[T](&lg.caches, id)
}
