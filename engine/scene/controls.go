package scene

import (
	"time"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// CameraController moves a camera once per frame. Update reports whether the camera changed.
type CameraController interface {
	Update(c *Camera, dt time.Duration) bool
}

type CameraAction int

const (
	CameraMoveForward CameraAction = iota
	CameraMoveBackward
	CameraMoveLeft
	CameraMoveRight
	CameraMoveUp
	CameraMoveDown
	CameraPrecise
	CameraQuick
	CameraLookLeft
	CameraLookRight
	CameraLookUp
	CameraLookDown
	CameraTiltLeft
	CameraTiltRight
	CameraHome
)

// KeyState reports whether a key is held.
type KeyState func(core.KeyCode) bool

/**
 * @brief Flies a camera with the keyboard. Movement is in camera space, in
 * units per second; rotation is in degrees per second. The precise and quick
 * modifiers scale both.
 */
type KeyboardCameraController struct {
	Bindings      map[core.KeyCode]CameraAction
	MoveSpeed     float32
	RotationSpeed float32
	PreciseFactor float32
	QuickFactor   float32
	HomePosition  math.Vec3
	HomeTarget    math.Vec3
	isDown        KeyState
}

func DefaultCameraBindings() map[core.KeyCode]CameraAction {
	return map[core.KeyCode]CameraAction{
		core.KeyW:           CameraMoveForward,
		core.KeyS:           CameraMoveBackward,
		core.KeyA:           CameraMoveLeft,
		core.KeyD:           CameraMoveRight,
		core.KeyE:           CameraMoveUp,
		core.KeyQ:           CameraMoveDown,
		core.KeyLeftControl: CameraPrecise,
		core.KeyLeftShift:   CameraQuick,
		core.KeyLeft:        CameraLookLeft,
		core.KeyRight:       CameraLookRight,
		core.KeyUp:          CameraLookUp,
		core.KeyDown:        CameraLookDown,
		core.KeyZ:           CameraTiltLeft,
		core.KeyR:           CameraTiltRight,
		core.KeyH:           CameraHome,
	}
}

// NewKeyboardCameraController reads keys through isDown, core.InputIsKeyDown when nil.
func NewKeyboardCameraController(isDown KeyState) *KeyboardCameraController {
	if isDown == nil {
		isDown = core.InputIsKeyDown
	}
	return &KeyboardCameraController{
		Bindings:      DefaultCameraBindings(),
		MoveSpeed:     1,
		RotationSpeed: 60,
		PreciseFactor: 0.2,
		QuickFactor:   5,
		isDown:        isDown,
	}
}

func (k *KeyboardCameraController) active() map[CameraAction]bool {
	actions := make(map[CameraAction]bool)
	for key, action := range k.Bindings {
		if k.isDown(key) {
			actions[action] = true
		}
	}
	return actions
}

func (k *KeyboardCameraController) Update(c *Camera, dt time.Duration) bool {
	actions := k.active()
	if len(actions) == 0 {
		return false
	}
	if actions[CameraHome] {
		c.SetPosition(k.HomePosition)
		c.SetOrientationTarget(k.HomeTarget)
		return true
	}

	axis := func(pos, neg CameraAction) float32 {
		var v float32
		if actions[pos] {
			v++
		}
		if actions[neg] {
			v--
		}
		return v
	}

	factor := float32(1)
	if actions[CameraPrecise] {
		factor *= k.PreciseFactor
	}
	if actions[CameraQuick] {
		factor *= k.QuickFactor
	}
	seconds := float32(dt.Seconds())

	// Pitch, yaw and roll in the camera's Euler order.
	rotation := math.NewVec3(
		axis(CameraLookDown, CameraLookUp),
		axis(CameraLookRight, CameraLookLeft),
		axis(CameraTiltRight, CameraTiltLeft),
	).MulScalar(k.RotationSpeed * factor * seconds)

	x := axis(CameraMoveRight, CameraMoveLeft)
	y := axis(CameraMoveUp, CameraMoveDown)
	z := axis(CameraMoveForward, CameraMoveBackward)
	speed := k.MoveSpeed * factor * seconds
	offset := c.Forward().MulScalar(z * speed).
		Add(c.Right().MulScalar(x * speed)).
		Add(c.Up().MulScalar(y * speed))

	if rotation.LengthSquared() == 0 && offset.LengthSquared() == 0 {
		return false
	}
	c.OffsetOrientation(rotation)
	c.OffsetPosition(offset)
	return true
}
