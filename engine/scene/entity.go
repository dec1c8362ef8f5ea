package scene

import (
	"time"

	"github.com/spaghettifunk/lumen/engine/math"
)

// EntityController animates an entity. Update returns true when it changed something.
type EntityController interface {
	Update(e *Entity, dt time.Duration) bool
}

/**
 * @brief A node of the scene tree. An entity positions an optional Model
 * and its children relative to its parent.
 */
type Entity struct {
	Name        string
	parent      *Entity
	children    []*Entity
	controllers []EntityController
	hidden      bool
	transform   *math.Transform
	model       *Model
}

func newEntity(name string, parent *Entity) *Entity {
	return &Entity{
		Name:      name,
		parent:    parent,
		transform: math.TransformCreate(),
	}
}

// AddChild creates a new child entity.
func (e *Entity) AddChild(name string) *Entity {
	c := newEntity(name, e)
	e.children = append(e.children, c)
	return c
}

// RemoveChild detaches child and its subtree.
func (e *Entity) RemoveChild(child *Entity) bool {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

func (e *Entity) Parent() *Entity     { return e.parent }
func (e *Entity) Children() []*Entity { return e.children }

func (e *Entity) SetModel(m *Model) { e.model = m }
func (e *Entity) Model() *Model     { return e.model }

func (e *Entity) Hidden() bool                  { return e.hidden }
func (e *Entity) SetHidden(hidden bool)         { e.hidden = hidden }
func (e *Entity) Position() math.Vec3           { return e.transform.Position }
func (e *Entity) SetPosition(p math.Vec3)       { e.transform.SetPosition(p) }
func (e *Entity) Rotation() math.Quaternion     { return e.transform.Rotation }
func (e *Entity) SetRotation(r math.Quaternion) { e.transform.SetRotation(r) }
func (e *Entity) Scale() math.Vec3              { return e.transform.Scale }
func (e *Entity) SetScale(s math.Vec3)          { e.transform.SetScale(s) }

// Matrix is the entity transform relative to its parent.
func (e *Entity) Matrix() math.Mat4 { return e.transform.GetLocal() }

// WorldMatrix chains the matrices of every ancestor.
func (e *Entity) WorldMatrix() math.Mat4 {
	if e.parent == nil {
		return e.Matrix()
	}
	return e.parent.WorldMatrix().Mul(e.Matrix())
}

func (e *Entity) AddController(c EntityController) {
	e.controllers = append(e.controllers, c)
}

func (e *Entity) RemoveController(c EntityController) {
	for i, ec := range e.controllers {
		if ec == c {
			e.controllers = append(e.controllers[:i], e.controllers[i+1:]...)
			return
		}
	}
}

// update runs the controllers of the whole subtree. Returns true if anything changed.
func (e *Entity) update(dt time.Duration) bool {
	changed := false
	for _, c := range e.controllers {
		if c.Update(e, dt) {
			changed = true
		}
	}
	for _, child := range e.children {
		if child.update(dt) {
			changed = true
		}
	}
	return changed
}

// SpinController rotates its entity around Axis at Speed radians per second.
type SpinController struct {
	Axis  math.Vec3
	Speed float32
}

func (s *SpinController) Update(e *Entity, dt time.Duration) bool {
	if s.Speed == 0 || dt <= 0 {
		return false
	}
	angle := s.Speed * float32(dt.Seconds())
	q := math.NewQuatFromAxisAngle(s.Axis.Normalize(), angle, true)
	e.SetRotation(e.Rotation().Mul(q).Normalize())
	return true
}
