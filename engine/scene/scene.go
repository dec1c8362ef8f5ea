package scene

import (
	"time"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// PointLight is a light source. Color.W scales the intensity.
type PointLight struct {
	Color    math.Vec4
	Position math.Vec3
}

// SceneController drives scene wide behavior. Update returns true when it changed something.
type SceneController interface {
	Update(s *Scene, dt time.Duration) bool
}

/**
 * @brief Root of the scene tree. Owns the resource manager used by its
 * content, the light set and the optional skybox.
 *
 * When an update changes anything, EventCodeSceneUpdated is fired with the
 * scene as sender and Changed reports true until it is consumed.
 */
type Scene struct {
	*Entity
	manager           *resources.Manager
	lights            map[int]*PointLight
	skybox            *resources.Cubemap
	controllers       []SceneController
	runTimeMultiplier float32
	running           bool
	changed           bool
}

func NewScene() *Scene {
	return &Scene{
		Entity:            newEntity("root", nil),
		manager:           resources.NewManager(),
		lights:            make(map[int]*PointLight),
		runTimeMultiplier: 1.0,
	}
}

func (s *Scene) ResourceManager() *resources.Manager { return s.manager }

// GetOrCreateLight returns the light with id, creating a white one at the origin.
func (s *Scene) GetOrCreateLight(id int) *PointLight {
	if l, ok := s.lights[id]; ok {
		return l
	}
	l := &PointLight{Color: math.NewVec4One()}
	s.lights[id] = l
	s.changed = true
	return l
}

func (s *Scene) Light(id int) (*PointLight, bool) {
	l, ok := s.lights[id]
	return l, ok
}

func (s *Scene) RemoveLight(id int) {
	if _, ok := s.lights[id]; ok {
		delete(s.lights, id)
		s.changed = true
	}
}

// Lights returns a copy of the current light set.
func (s *Scene) Lights() []PointLight {
	out := make([]PointLight, 0, len(s.lights))
	for _, id := range sortedLightIDs(s.lights) {
		out = append(out, *s.lights[id])
	}
	return out
}

func (s *Scene) Skybox() *resources.Cubemap {
	if s.skybox == nil || s.skybox.Destroyed() {
		return nil
	}
	return s.skybox
}

func (s *Scene) SetSkybox(cm *resources.Cubemap) {
	s.skybox = cm
	s.changed = true
}

func (s *Scene) AddController(c SceneController) {
	s.controllers = append(s.controllers, c)
}

func (s *Scene) RemoveController(c SceneController) {
	for i, sc := range s.controllers {
		if sc == c {
			s.controllers = append(s.controllers[:i], s.controllers[i+1:]...)
			return
		}
	}
}

func (s *Scene) RunTimeMultiplier() float32 { return s.runTimeMultiplier }

func (s *Scene) SetRunTimeMultiplier(m float32) {
	s.runTimeMultiplier = math.Max(m, 0)
}

func (s *Scene) IsRunning() bool         { return s.running }
func (s *Scene) SetRunning(running bool) { s.running = running }
func (s *Scene) Run()                    { s.SetRunning(true) }
func (s *Scene) Stop()                   { s.SetRunning(false) }
func (s *Scene) MarkChanged()            { s.changed = true }

// Changed reports and clears the pending change flag.
func (s *Scene) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

// UpdateScene advances controllers by dt scaled by the run time multiplier.
// It returns true and notifies listeners when anything changed.
func (s *Scene) UpdateScene(dt time.Duration) bool {
	changed := s.changed
	if s.running {
		scaled := time.Duration(float64(dt) * float64(s.runTimeMultiplier))
		for _, c := range s.controllers {
			if c.Update(s, scaled) {
				changed = true
			}
		}
		if s.Entity.update(scaled) {
			changed = true
		}
	}
	if !changed {
		return false
	}
	s.changed = true
	core.EventFire(core.EventCodeSceneUpdated, s, core.EventContext{})
	return true
}

// Close destroys every resource registered with the scene.
func (s *Scene) Close() {
	s.manager.Destroy()
}
