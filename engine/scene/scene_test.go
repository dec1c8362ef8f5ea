package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/resources"
)

const eps = 1e-4

func cubeModel(name string) *Model {
	m := NewModel(name)
	g := m.AddGroup("body")
	g.SetMesh(resources.StandardMesh(resources.CubeIndexedMesh))
	g.SetMaterial(resources.StandardMaterial(resources.Basic3DMaterial))
	g.SetMaterialProperties(resources.NewMaterialProperties(nil))
	return m
}

func collect(s *Scene) []DrawItem {
	var items []DrawItem
	Walk(s, func(it DrawItem) { items = append(items, it) })
	return items
}

func TestWalkChainsTransforms(t *testing.T) {
	s := NewScene()
	parent := s.AddChild("parent")
	parent.SetPosition(math.NewVec3(10, 0, 0))
	child := parent.AddChild("child")
	child.SetPosition(math.NewVec3(0, 2, 0))
	m := cubeModel("cube")
	m.SetPosition(math.NewVec3(0, 0, 3))
	m.Group("body").SetPosition(math.NewVec3(1, 0, 0))
	child.SetModel(m)

	items := collect(s)
	require.Len(t, items, 1)
	assert.True(t, items[0].WorldPosition.Compare(math.NewVec3(11, 2, 3), eps), "got %v", items[0].WorldPosition)
	assert.NotNil(t, items[0].Mesh)
	assert.NotNil(t, items[0].Material)
	assert.NotNil(t, items[0].MaterialProperties)
	assert.Nil(t, items[0].LineGroup)
}

func TestWalkSkipsHiddenAndEmpty(t *testing.T) {
	s := NewScene()
	a := s.AddChild("a")
	a.SetModel(cubeModel("a"))
	b := s.AddChild("b")
	b.SetModel(cubeModel("b"))
	b.AddChild("under-b").SetModel(cubeModel("c"))

	empty := NewModel("empty")
	empty.AddGroup("nothing")
	s.AddChild("empty").SetModel(empty)

	assert.Len(t, collect(s), 3)

	b.SetHidden(true)
	assert.Len(t, collect(s), 1)

	a.Model().Group("body").SetHidden(true)
	assert.Empty(t, collect(s))

	b.SetHidden(false)
	b.Model().SetHidden(true)
	assert.Len(t, collect(s), 1, "hiding a model keeps child entities visible")
}

func TestWalkGroupOrder(t *testing.T) {
	s := NewScene()
	m := NewModel("m")
	for _, n := range []string{"c", "a", "b"} {
		m.AddGroup(n).SetLineGroup(resources.NewLineGroup(nil))
	}
	s.AddChild("e").SetModel(m)

	var names []string
	Walk(s, func(it DrawItem) { names = append(names, it.Group.Name) })
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestDestroyedResourceIsNotHandedOut(t *testing.T) {
	s := NewScene()
	m := cubeModel("m")
	mesh := resources.NewMesh(nil)
	m.Group("body").SetMesh(mesh)
	s.AddChild("e").SetModel(m)

	mesh.Destroy()
	items := collect(s)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Mesh)
}

func TestUpdateSceneNotifiesListeners(t *testing.T) {
	require.True(t, core.EventInitialize())
	s := NewScene()
	e := s.AddChild("spinner")
	e.AddController(&SpinController{Axis: math.NewVec3Up(), Speed: 1})

	fired := 0
	listener := new(int)
	require.True(t, core.EventRegister(core.EventCodeSceneUpdated, listener, func(code core.SystemEventCode, sender, _ interface{}, _ core.EventContext) bool {
		if sender == s {
			fired++
		}
		return false
	}))
	defer core.EventUnregister(core.EventCodeSceneUpdated, listener)

	// not running: controllers do not tick
	assert.False(t, s.UpdateScene(16*time.Millisecond))
	assert.Equal(t, 0, fired)

	s.Run()
	assert.True(t, s.UpdateScene(16*time.Millisecond))
	assert.Equal(t, 1, fired)
	assert.True(t, s.Changed())
	assert.False(t, s.Changed())

	s.SetRunTimeMultiplier(0)
	assert.False(t, s.UpdateScene(16*time.Millisecond))

	// light edits count as changes even while stopped
	s.Stop()
	s.GetOrCreateLight(1).Position = math.NewVec3(1, 2, 3)
	assert.True(t, s.UpdateScene(0))
	assert.Equal(t, 2, fired)
}

func TestSceneLights(t *testing.T) {
	s := NewScene()
	s.GetOrCreateLight(2).Position = math.NewVec3(2, 0, 0)
	s.GetOrCreateLight(1).Position = math.NewVec3(1, 0, 0)
	lights := s.Lights()
	require.Len(t, lights, 2)
	assert.Equal(t, float32(1), lights[0].Position.X)
	assert.Equal(t, math.NewVec4One(), lights[0].Color)

	s.RemoveLight(1)
	_, ok := s.Light(1)
	assert.False(t, ok)
}

func TestCameraBasis(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.Forward().Compare(math.NewVec3(0, 0, -1), eps))
	assert.True(t, c.Right().Compare(math.NewVec3(1, 0, 0), eps))
	assert.True(t, c.Up().Compare(math.NewVec3(0, 1, 0), eps))

	c.SetAngle(math.NewVec3(20, 75, 10))
	assert.InDelta(t, 0, c.Forward().Dot(c.Right()), eps)
	assert.True(t, c.Right().Cross(c.Up()).Compare(c.Forward().MulScalar(-1), eps))
}

func TestCameraTargetAndForward(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(1, 2, 3))
	target := math.NewVec3(4, -1, -2)
	c.SetOrientationTarget(target)

	want := target.Sub(c.Position()).Normalize()
	assert.True(t, c.Forward().Compare(want, eps), "forward %v want %v", c.Forward(), want)

	// the target lands on the negative z axis in view space
	p := target.Transform(c.View())
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 0, p.Y, eps)
	assert.Less(t, p.Z, float32(0))
}

func TestCameraRotationView(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(5, 5, 5))
	c.SetAngle(math.NewVec3(20, 45, 0))
	rv := c.RotationView()
	assert.Equal(t, math.NewVec3Zero(), rv.Translation())

	// moving the camera does not change the rotation view
	c.OffsetPosition(math.NewVec3(100, 0, 0))
	assert.True(t, rv.Compare(c.RotationView(), eps))
}

func TestCameraUnproject(t *testing.T) {
	c := NewCamera()
	c.SetPerspective(60, 1)
	c.SetPlanes(1, 100)
	p := c.UnprojectPoint(0.5, 0.5, 0)
	assert.True(t, p.Compare(math.NewVec3(0, 0, -1), 1e-3), "got %v", p)
}

func TestSceneIntersect(t *testing.T) {
	s := NewScene()
	near := s.AddChild("near")
	near.SetModel(cubeModel("near"))
	near.SetPosition(math.NewVec3(0, 0, -5))
	far := s.AddChild("far")
	far.SetModel(cubeModel("far"))
	far.SetPosition(math.NewVec3(0, 0, -10))

	hit, ok := s.Intersect(math.NewVec3(0.1, 0.1, 0), math.NewVec3(0, 0, -1))
	require.True(t, ok)
	assert.Same(t, near.Model().Group("body"), hit.Group)
	assert.InDelta(t, 4.5, hit.Distance, 1e-4)

	_, ok = s.Intersect(math.NewVec3(0, 10, 0), math.NewVec3(0, 0, -1))
	assert.False(t, ok)
}

func TestModelClone(t *testing.T) {
	m := cubeModel("m")
	m.SetPosition(math.NewVec3(1, 2, 3))
	m.Group("body").SetScale(math.NewVec3(2, 2, 2))
	shallow := m.Clone(false)
	deep := m.Clone(true)
	assert.Same(t, m.Group("body").Mesh(), shallow.Group("body").Mesh())
	assert.NotSame(t, m.Group("body").Mesh(), deep.Group("body").Mesh())
	assert.Same(t, deep, deep.Group("body").Model())
	assert.Equal(t, m.Matrix(), deep.Matrix())
	assert.Equal(t, m.Group("body").Matrix(), shallow.Group("body").Matrix())
	assert.Equal(t, math.NewVec3(2, 2, 2), deep.Group("body").Scale())
}
