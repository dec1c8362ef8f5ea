package resources

import (
	"encoding/binary"
	"sync"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

type MeshRenderOptions uint32

const (
	MeshNoOptions MeshRenderOptions = 0x0
	// Disable back-face culling for this mesh.
	MeshDisableCulling MeshRenderOptions = 0x1
)

// MeshContents selects which vertex attributes are packed and uploaded.
type MeshContents uint32

const (
	MeshPosition2D     MeshContents = 0x0001
	MeshPosition3D     MeshContents = 0x0002
	MeshTextureCoord2D MeshContents = 0x0004
	MeshNormal3D       MeshContents = 0x0008
	MeshColor3D        MeshContents = 0x0010
	MeshColor4D        MeshContents = 0x0020
	MeshBoneIDs        MeshContents = 0x0040
	MeshBoneWeights    MeshContents = 0x0080
	MeshSmoothingGroup MeshContents = 0x0100
)

func (c MeshContents) Has(flag MeshContents) bool {
	return c&flag != 0
}

type MeshDrawMode int

const (
	Triangles MeshDrawMode = iota
	IndexedTriangles
	TriangleStrips
	IndexedTriangleStrips
)

func (m MeshDrawMode) Indexed() bool {
	return m == IndexedTriangles || m == IndexedTriangleStrips
}

type StandardMeshKind int

const (
	Triangle2DMesh StandardMeshKind = iota
	ScreenQuadMesh
	UnitQuadMesh
	CubeIndexedMesh
)

type MeshVertex struct {
	Position2D     math.Vec2
	Position3D     math.Vec3
	TextureCoord2D math.Vec2
	Normal3D       math.Vec3
	Color3D        math.Vec3
	Color4D        math.Vec4
	BoneIDs        [4]uint8
	BoneWeights    math.Vec4
	SmoothingGroup uint8
}

// Equals compares only the attributes enabled in contents.
func (v MeshVertex) Equals(o MeshVertex, contents MeshContents) bool {
	if contents.Has(MeshPosition2D) && v.Position2D != o.Position2D {
		return false
	}
	if contents.Has(MeshPosition3D) && v.Position3D != o.Position3D {
		return false
	}
	if contents.Has(MeshTextureCoord2D) && v.TextureCoord2D != o.TextureCoord2D {
		return false
	}
	if contents.Has(MeshNormal3D) && v.Normal3D != o.Normal3D {
		return false
	}
	if contents.Has(MeshColor3D) && v.Color3D != o.Color3D {
		return false
	}
	if contents.Has(MeshColor4D) && v.Color4D != o.Color4D {
		return false
	}
	if contents.Has(MeshBoneIDs) && v.BoneIDs != o.BoneIDs {
		return false
	}
	if contents.Has(MeshBoneWeights) && v.BoneWeights != o.BoneWeights {
		return false
	}
	if contents.Has(MeshSmoothingGroup) && v.SmoothingGroup != o.SmoothingGroup {
		return false
	}
	return true
}

/**
 * @brief A triangle mesh. Vertices are stored unpacked; PackedData exposes the
 * tightly packed little-endian buffer holding only the enabled attributes.
 */
type Mesh struct {
	Resource
	drawMode      MeshDrawMode
	vertices      []MeshVertex
	indices       []uint32
	renderOptions MeshRenderOptions
	contents      MeshContents
	packedData    []byte
	caches        CacheMap
}

func NewMesh(manager *Manager) *Mesh {
	m := &Mesh{
		Resource: newResource(ResourceTypeMesh, manager),
		drawMode: Triangles,
	}
	core.LogDebug("Constructor: Mesh")
	return m
}

// Clone copies the geometry into a new, unregistered mesh sharing the manager.
func (m *Mesh) Clone() *Mesh {
	n := NewMesh(m.manager)
	n.drawMode = m.drawMode
	n.vertices = append([]MeshVertex(nil), m.vertices...)
	n.indices = append([]uint32(nil), m.indices...)
	n.renderOptions = m.renderOptions
	n.contents = m.contents
	return n
}

func (m *Mesh) RenderOptions() MeshRenderOptions { return m.renderOptions }

func (m *Mesh) SetRenderOptions(options MeshRenderOptions) {
	m.renderOptions = options
}

func (m *Mesh) Contents() MeshContents { return m.contents }

func (m *Mesh) SetContents(contents MeshContents) {
	if m.contents == contents {
		return
	}
	m.contents = contents
	m.packedData = nil
	m.caches.Invalidate(core.AllRenderers)
}

func (m *Mesh) DrawMode() MeshDrawMode { return m.drawMode }

func (m *Mesh) SetDrawMode(mode MeshDrawMode) {
	if m.drawMode == mode {
		return
	}
	m.drawMode = mode
	m.caches.Invalidate(core.AllRenderers)
}

// Vertices returns the live vertex slice. Call InvalidateCache after editing it in place.
func (m *Mesh) Vertices() []MeshVertex { return m.vertices }

func (m *Mesh) SetVertices(vertices []MeshVertex) {
	m.vertices = vertices
	m.packedData = nil
	m.caches.Invalidate(core.AllRenderers)
}

// Indices returns the live index slice. Call InvalidateCache after editing it in place.
func (m *Mesh) Indices() []uint32 { return m.indices }

func (m *Mesh) SetIndices(indices []uint32) {
	m.indices = indices
	m.caches.Invalidate(core.AllRenderers)
}

// PackedData returns the packed vertex buffer, building it on first use.
func (m *Mesh) PackedData() []byte {
	if m.packedData == nil && len(m.vertices) > 0 {
		stride := MeshPackedVertexSize(m.contents)
		buf := make([]byte, 0, stride*len(m.vertices))
		for i := range m.vertices {
			buf = appendMeshVertex(buf, &m.vertices[i], m.contents)
		}
		m.packedData = buf
	}
	return m.packedData
}

// MeshPackedVertexSize returns the stride in bytes of one packed vertex.
func MeshPackedVertexSize(contents MeshContents) int {
	size := 0
	if contents.Has(MeshPosition2D) {
		size += 2 * 4
	}
	if contents.Has(MeshPosition3D) {
		size += 3 * 4
	}
	if contents.Has(MeshTextureCoord2D) {
		size += 2 * 4
	}
	if contents.Has(MeshNormal3D) {
		size += 3 * 4
	}
	if contents.Has(MeshColor3D) {
		size += 3 * 4
	}
	if contents.Has(MeshColor4D) {
		size += 4 * 4
	}
	if contents.Has(MeshBoneIDs) {
		size += 4
	}
	if contents.Has(MeshBoneWeights) {
		size += 4 * 4
	}
	if contents.Has(MeshSmoothingGroup) {
		size += 1
	}
	return size
}

func appendFloats(buf []byte, values ...float32) []byte {
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(v))
	}
	return buf
}

func appendMeshVertex(buf []byte, v *MeshVertex, contents MeshContents) []byte {
	if contents.Has(MeshPosition2D) {
		buf = appendFloats(buf, v.Position2D.X, v.Position2D.Y)
	}
	if contents.Has(MeshPosition3D) {
		buf = appendFloats(buf, v.Position3D.X, v.Position3D.Y, v.Position3D.Z)
	}
	if contents.Has(MeshTextureCoord2D) {
		buf = appendFloats(buf, v.TextureCoord2D.X, v.TextureCoord2D.Y)
	}
	if contents.Has(MeshNormal3D) {
		buf = appendFloats(buf, v.Normal3D.X, v.Normal3D.Y, v.Normal3D.Z)
	}
	if contents.Has(MeshColor3D) {
		buf = appendFloats(buf, v.Color3D.X, v.Color3D.Y, v.Color3D.Z)
	}
	if contents.Has(MeshColor4D) {
		buf = appendFloats(buf, v.Color4D.X, v.Color4D.Y, v.Color4D.Z, v.Color4D.W)
	}
	if contents.Has(MeshBoneIDs) {
		buf = append(buf, v.BoneIDs[:]...)
	}
	if contents.Has(MeshBoneWeights) {
		buf = appendFloats(buf, v.BoneWeights.X, v.BoneWeights.Y, v.BoneWeights.Z, v.BoneWeights.W)
	}
	if contents.Has(MeshSmoothingGroup) {
		buf = append(buf, v.SmoothingGroup)
	}
	return buf
}

/**
 * @brief Deduplicates vertices that are equal under the current contents and
 * reorders the survivors by first use, so consecutive triangles touch nearby
 * vertices. The index order is kept, which preserves every triangle and its
 * winding. Non-indexed meshes are converted to their indexed draw mode.
 * Triangles referencing a vertex past the end are dropped whole; a strip
 * holding such an index becomes a triangle list so the rest keep their winding.
 */
func (m *Mesh) OptimizeIndices() {
	if len(m.vertices) == 0 {
		return
	}

	indices := m.indices
	if !m.drawMode.Indexed() {
		indices = sequentialIndices(len(m.vertices))
	}
	mode := IndexedTriangles
	switch m.drawMode {
	case Triangles, IndexedTriangles:
		indices = flattenTriangles(triangleIndices(m.drawMode, indices, len(m.vertices)))
	case TriangleStrips, IndexedTriangleStrips:
		if inRange(indices, len(m.vertices)) {
			mode = IndexedTriangleStrips
		} else {
			indices = flattenTriangles(triangleIndices(m.drawMode, indices, len(m.vertices)))
		}
	}

	vertices, remapped := deduplicate(m.vertices, indices, func(buf []byte, v *MeshVertex) []byte {
		return appendMeshVertex(buf, v, m.contents)
	})
	m.vertices = vertices
	m.indices = remapped
	m.drawMode = mode
	m.packedData = nil
	m.caches.Invalidate(core.AllRenderers)
}

func sequentialIndices(n int) []uint32 {
	indices := make([]uint32, n)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return indices
}

func inRange(indices []uint32, n int) bool {
	for _, i := range indices {
		if int(i) >= n {
			return false
		}
	}
	return true
}

func flattenTriangles(tris [][3]uint32) []uint32 {
	out := make([]uint32, 0, 3*len(tris))
	for _, t := range tris {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

// triangleIndices lists the vertex triples drawn from idx, skipping any
// triangle with an index of count or more. Odd strip triangles are flipped
// to keep the winding.
func triangleIndices(mode MeshDrawMode, idx []uint32, count int) [][3]uint32 {
	valid := func(i uint32) bool { return int(i) < count }

	var out [][3]uint32
	switch mode {
	case Triangles, IndexedTriangles:
		for i := 0; i+2 < len(idx); i += 3 {
			if valid(idx[i]) && valid(idx[i+1]) && valid(idx[i+2]) {
				out = append(out, [3]uint32{idx[i], idx[i+1], idx[i+2]})
			}
		}
	case TriangleStrips, IndexedTriangleStrips:
		for i := 0; i+2 < len(idx); i++ {
			a, b, c := idx[i], idx[i+1], idx[i+2]
			if !valid(a) || !valid(b) || !valid(c) {
				continue
			}
			if i%2 == 1 {
				a, b = b, a
			}
			out = append(out, [3]uint32{a, b, c})
		}
	}
	return out
}

// deduplicate merges vertices with identical packed keys and emits them in
// order of first reference by indices. Every index must be in range.
func deduplicate[V any](vertices []V, indices []uint32, key func([]byte, *V) []byte) ([]V, []uint32) {
	// first pass: canonical vertex per distinct key
	canonical := make([]uint32, len(vertices))
	seen := make(map[string]uint32, len(vertices))
	var scratch []byte
	for i := range vertices {
		scratch = key(scratch[:0], &vertices[i])
		if c, ok := seen[string(scratch)]; ok {
			canonical[i] = c
			continue
		}
		seen[string(scratch)] = uint32(i)
		canonical[i] = uint32(i)
	}

	// second pass: order by first use
	newIndex := make(map[uint32]uint32, len(seen))
	outVertices := make([]V, 0, len(seen))
	outIndices := make([]uint32, 0, len(indices))
	for _, idx := range indices {
		c := canonical[idx]
		n, ok := newIndex[c]
		if !ok {
			n = uint32(len(outVertices))
			newIndex[c] = n
			outVertices = append(outVertices, vertices[c])
		}
		outIndices = append(outIndices, n)
	}
	return outVertices, outIndices
}

// Triangles returns the positions of each triangle the mesh draws, in draw order.
func (m *Mesh) Triangles() [][3]math.Vec3 {
	pos := func(i uint32) math.Vec3 {
		v := m.vertices[i]
		if m.contents.Has(MeshPosition3D) {
			return v.Position3D
		}
		return math.NewVec3(v.Position2D.X, v.Position2D.Y, 0)
	}

	idx := m.indices
	if !m.drawMode.Indexed() {
		idx = sequentialIndices(len(m.vertices))
	}
	tris := triangleIndices(m.drawMode, idx, len(m.vertices))
	out := make([][3]math.Vec3, 0, len(tris))
	for _, t := range tris {
		out = append(out, [3]math.Vec3{pos(t[0]), pos(t[1]), pos(t[2])})
	}
	return out
}

// Intersect returns the closest point where the ray hits the mesh, in mesh space.
func (m *Mesh) Intersect(origin, dir math.Vec3) (math.Vec3, bool) {
	var (
		best     math.Vec3
		bestDist = math.K_INFINITY
		found    bool
	)
	for _, tri := range m.Triangles() {
		p, ok := math.IntersectTriangle(origin, dir, tri[0], tri[1], tri[2], math.K_FLOAT_EPSILON)
		if !ok {
			continue
		}
		if d := p.DistanceSquared(origin); d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}

// InvalidateCache marks the caches of renderer id (or of all renderers) dirty.
func (m *Mesh) InvalidateCache(id core.Identifier) {
	m.packedData = nil
	m.caches.Invalidate(id)
}

// Destroy asks every renderer holding a cache of this mesh to delete it.
func (m *Mesh) Destroy() {
	if m.destroyed {
		return
	}
	core.LogDebug("Destructor: Mesh (start)")
	m.caches.release(ResourceTypeMesh)
	m.markDestroyed()
	core.LogDebug("Destructor: Mesh (end)")
}

func GetOrEmplaceMeshCache[T Cache](m *Mesh, id core.Identifier, newCache func(*Mesh) T) (T, bool, error) {
	return GetOrEmplace(&m.caches, id, func() T { return newCache(m) })
}

func GetMeshCacheT[T Cache](m *Mesh, id core.Identifier) (T, error) {
	return GetCacheT[T](&m.caches, id)
}

var (
	standardMeshesMu sync.Mutex
	standardMeshes   = map[StandardMeshKind]*Mesh{}
)

// StandardMesh returns a process wide mesh built on first request.
func StandardMesh(kind StandardMeshKind) *Mesh {
	standardMeshesMu.Lock()
	defer standardMeshesMu.Unlock()

	if m, ok := standardMeshes[kind]; ok {
		return m
	}

	m := NewMesh(nil)
	switch kind {
	case Triangle2DMesh:
		m.Name = "Triangle2D"
		m.SetContents(MeshPosition2D | MeshColor3D)
		m.SetVertices([]MeshVertex{
			{Position2D: math.NewVec2(-0.5, -0.5), Color3D: math.NewVec3(1, 0, 0)},
			{Position2D: math.NewVec2(0.5, -0.5), Color3D: math.NewVec3(0, 1, 0)},
			{Position2D: math.NewVec2(0.0, 0.5), Color3D: math.NewVec3(0, 0, 1)},
		})
	case ScreenQuadMesh:
		m.Name = "ScreenQuad"
		m.SetContents(MeshPosition2D | MeshTextureCoord2D)
		m.SetDrawMode(TriangleStrips)
		m.SetVertices([]MeshVertex{
			{Position2D: math.NewVec2(-1, -1), TextureCoord2D: math.NewVec2(0, 0)},
			{Position2D: math.NewVec2(1, -1), TextureCoord2D: math.NewVec2(1, 0)},
			{Position2D: math.NewVec2(-1, 1), TextureCoord2D: math.NewVec2(0, 1)},
			{Position2D: math.NewVec2(1, 1), TextureCoord2D: math.NewVec2(1, 1)},
		})
	case UnitQuadMesh:
		m.Name = "UnitQuad"
		m.SetContents(MeshPosition3D | MeshTextureCoord2D | MeshNormal3D)
		m.SetDrawMode(IndexedTriangles)
		n := math.NewVec3(0, 0, 1)
		m.SetVertices([]MeshVertex{
			{Position3D: math.NewVec3(-0.5, -0.5, 0), TextureCoord2D: math.NewVec2(0, 0), Normal3D: n},
			{Position3D: math.NewVec3(0.5, -0.5, 0), TextureCoord2D: math.NewVec2(1, 0), Normal3D: n},
			{Position3D: math.NewVec3(0.5, 0.5, 0), TextureCoord2D: math.NewVec2(1, 1), Normal3D: n},
			{Position3D: math.NewVec3(-0.5, 0.5, 0), TextureCoord2D: math.NewVec2(0, 1), Normal3D: n},
		})
		m.SetIndices([]uint32{0, 1, 2, 0, 2, 3})
	case CubeIndexedMesh:
		m.Name = "CubeIndexed"
		m.SetContents(MeshPosition3D | MeshTextureCoord2D | MeshNormal3D)
		m.SetDrawMode(IndexedTriangles)
		m.SetVertices(cubeVertices())
		m.SetIndices(cubeIndices())
	}
	standardMeshes[kind] = m
	return m
}

// cubeVertices builds a unit cube with four vertices per face so every face
// gets its own normal.
func cubeVertices() []MeshVertex {
	type face struct {
		normal, u, v math.Vec3
	}
	faces := []face{
		{math.NewVec3(0, 0, 1), math.NewVec3(1, 0, 0), math.NewVec3(0, 1, 0)},
		{math.NewVec3(0, 0, -1), math.NewVec3(-1, 0, 0), math.NewVec3(0, 1, 0)},
		{math.NewVec3(1, 0, 0), math.NewVec3(0, 0, -1), math.NewVec3(0, 1, 0)},
		{math.NewVec3(-1, 0, 0), math.NewVec3(0, 0, 1), math.NewVec3(0, 1, 0)},
		{math.NewVec3(0, 1, 0), math.NewVec3(1, 0, 0), math.NewVec3(0, 0, -1)},
		{math.NewVec3(0, -1, 0), math.NewVec3(1, 0, 0), math.NewVec3(0, 0, 1)},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	out := make([]MeshVertex, 0, 24)
	for _, f := range faces {
		center := f.normal.MulScalar(0.5)
		for _, c := range corners {
			p := center.Add(f.u.MulScalar(c[0] * 0.5)).Add(f.v.MulScalar(c[1] * 0.5))
			out = append(out, MeshVertex{
				Position3D:     p,
				Normal3D:       f.normal,
				TextureCoord2D: math.NewVec2((c[0]+1)*0.5, (c[1]+1)*0.5),
			})
		}
	}
	return out
}

func cubeIndices() []uint32 {
	out := make([]uint32, 0, 36)
	for f := uint32(0); f < 6; f++ {
		b := f * 4
		out = append(out, b, b+1, b+2, b, b+2, b+3)
	}
	return out
}
