package scene

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/resources"
)

/**
 * @brief The drawable leaf of a Model: geometry plus the material used to
 * shade it, with its own local transform.
 */
type Group struct {
	Name      string
	model     *Model
	hidden    bool
	transform *math.Transform

	lineGroup          *resources.LineGroup
	mesh               *resources.Mesh
	material           *resources.Material
	materialProperties *resources.MaterialProperties
}

func newGroup(name string, model *Model) *Group {
	return &Group{
		Name:      name,
		model:     model,
		transform: math.TransformCreate(),
	}
}

// Clone copies the group into model. A deep clone also clones the resources.
func (g *Group) Clone(model *Model, deep bool) *Group {
	n := newGroup(g.Name, model)
	n.hidden = g.hidden
	n.transform.SetPositionRotationScale(g.transform.Position, g.transform.Rotation, g.transform.Scale)
	n.lineGroup, n.mesh, n.material, n.materialProperties = g.lineGroup, g.mesh, g.material, g.materialProperties
	if deep {
		if g.lineGroup != nil {
			n.lineGroup = g.lineGroup.Clone()
		}
		if g.mesh != nil {
			n.mesh = g.mesh.Clone()
		}
		if g.material != nil {
			n.material = g.material.Clone()
		}
		if g.materialProperties != nil {
			n.materialProperties = g.materialProperties.Clone()
		}
	}
	return n
}

func (g *Group) Model() *Model { return g.model }

func (g *Group) Hidden() bool            { return g.hidden }
func (g *Group) SetHidden(hidden bool)   { g.hidden = hidden }
func (g *Group) Position() math.Vec3     { return g.transform.Position }
func (g *Group) SetPosition(p math.Vec3) { g.transform.SetPosition(p) }

func (g *Group) Rotation() math.Quaternion       { return g.transform.Rotation }
func (g *Group) SetRotation(r math.Quaternion)   { g.transform.SetRotation(r) }
func (g *Group) Scale() math.Vec3                { return g.transform.Scale }
func (g *Group) SetScale(s math.Vec3)            { g.transform.SetScale(s) }
func (g *Group) Matrix() math.Mat4               { return g.transform.GetLocal() }
func (g *Group) LineGroup() *resources.LineGroup { return alive(g.lineGroup) }
func (g *Group) Mesh() *resources.Mesh           { return alive(g.mesh) }
func (g *Group) Material() *resources.Material   { return alive(g.material) }

func (g *Group) MaterialProperties() *resources.MaterialProperties {
	return alive(g.materialProperties)
}

func (g *Group) SetLineGroup(lg *resources.LineGroup) { g.lineGroup = lg }
func (g *Group) SetMesh(m *resources.Mesh)            { g.mesh = m }
func (g *Group) SetMaterial(m *resources.Material)    { g.material = m }

func (g *Group) SetMaterialProperties(mp *resources.MaterialProperties) {
	g.materialProperties = mp
}

// drawable reports whether the group has anything a renderer could use.
func (g *Group) drawable() bool {
	return g.LineGroup() != nil || g.Mesh() != nil || g.Material() != nil || g.MaterialProperties() != nil
}

// destroyable is satisfied by every resource kind.
type destroyable interface {
	comparable
	Destroyed() bool
}

// alive returns nil for a destroyed resource, so groups never hand out dangling references.
func alive[T destroyable](r T) T {
	var zero T
	if r == zero || r.Destroyed() {
		return zero
	}
	return r
}
