package scene

import (
	"sort"

	"github.com/spaghettifunk/lumen/engine/math"
)

// Model is a named collection of groups sharing one transform.
type Model struct {
	Name      string
	hidden    bool
	transform *math.Transform
	groups    map[string]*Group
}

func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		transform: math.TransformCreate(),
		groups:    make(map[string]*Group),
	}
}

func (m *Model) Clone(deep bool) *Model {
	n := NewModel(m.Name)
	n.hidden = m.hidden
	n.transform.SetPositionRotationScale(m.transform.Position, m.transform.Rotation, m.transform.Scale)
	for name, g := range m.groups {
		n.groups[name] = g.Clone(n, deep)
	}
	return n
}

// AddGroup creates a group, replacing any group with the same name.
func (m *Model) AddGroup(name string) *Group {
	g := newGroup(name, m)
	m.groups[name] = g
	return g
}

func (m *Model) GetOrAddGroup(name string) *Group {
	if g, ok := m.groups[name]; ok {
		return g
	}
	return m.AddGroup(name)
}

func (m *Model) Group(name string) *Group {
	return m.groups[name]
}

func (m *Model) RemoveGroup(name string) {
	delete(m.groups, name)
}

// GroupNames returns the group names sorted, which is also the draw order.
func (m *Model) GroupNames() []string {
	names := make([]string, 0, len(m.groups))
	for k := range m.groups {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (m *Model) Hidden() bool                  { return m.hidden }
func (m *Model) SetHidden(hidden bool)         { m.hidden = hidden }
func (m *Model) Position() math.Vec3           { return m.transform.Position }
func (m *Model) SetPosition(p math.Vec3)       { m.transform.SetPosition(p) }
func (m *Model) Rotation() math.Quaternion     { return m.transform.Rotation }
func (m *Model) SetRotation(r math.Quaternion) { m.transform.SetRotation(r) }
func (m *Model) Scale() math.Vec3              { return m.transform.Scale }
func (m *Model) SetScale(s math.Vec3)          { m.transform.SetScale(s) }
func (m *Model) Matrix() math.Mat4             { return m.transform.GetLocal() }
