package scene

import (
	"sort"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// DrawItem is what traversal hands to a renderer for one visible group.
// Any of the resources can be nil.
type DrawItem struct {
	Group              *Group
	Mesh               *resources.Mesh
	Material           *resources.Material
	MaterialProperties *resources.MaterialProperties
	LineGroup          *resources.LineGroup
	Model              math.Mat4
	WorldPosition      math.Vec3
}

// Walk visits the visible groups of the scene depth first. Children follow
// their parent entity, groups follow their model in name order. Hidden
// entities, models and groups are skipped with their descendants.
func Walk(s *Scene, fn func(DrawItem)) {
	if s == nil || s.Entity == nil {
		return
	}
	walkEntity(s.Entity, math.NewMat4Identity(), fn)
}

func walkEntity(e *Entity, parent math.Mat4, fn func(DrawItem)) {
	if e.hidden {
		return
	}
	world := parent.Mul(e.Matrix())
	if m := e.model; m != nil && !m.hidden {
		modelWorld := world.Mul(m.Matrix())
		for _, name := range m.GroupNames() {
			g := m.groups[name]
			if g.hidden || !g.drawable() {
				continue
			}
			gm := modelWorld.Mul(g.Matrix())
			fn(DrawItem{
				Group:              g,
				Mesh:               g.Mesh(),
				Material:           g.Material(),
				MaterialProperties: g.MaterialProperties(),
				LineGroup:          g.LineGroup(),
				Model:              gm,
				WorldPosition:      gm.Translation(),
			})
		}
	}
	for _, c := range e.children {
		walkEntity(c, world, fn)
	}
}

// IntersectionResult is the closest hit of a ray against the scene.
type IntersectionResult struct {
	Group    *Group
	Position math.Vec3
	Distance float32
}

// Intersect casts a world space ray against every visible mesh.
func (s *Scene) Intersect(origin, dir math.Vec3) (IntersectionResult, bool) {
	var (
		best  IntersectionResult
		found bool
	)
	Walk(s, func(item DrawItem) {
		if item.Mesh == nil {
			return
		}
		inv := item.Model.Inverse()
		localOrigin := origin.Transform(inv)
		localDir := inv.MulVec4(dir.ToVec4(0)).ToVec3()
		p, ok := item.Mesh.Intersect(localOrigin, localDir)
		if !ok {
			return
		}
		world := p.Transform(item.Model)
		d := world.Distance(origin)
		if !found || d < best.Distance {
			best = IntersectionResult{Group: item.Group, Position: world, Distance: d}
			found = true
		}
	})
	return best, found
}

func sortedLightIDs(m map[int]*PointLight) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
