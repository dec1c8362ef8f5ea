package scene

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumen/engine/math"
)

type ProjectionMode int

const (
	PerspectiveProjection ProjectionMode = iota
	OrthographicProjection
)

// OrthoRect is the visible area of an orthographic camera.
type OrthoRect struct {
	Left, Right, Bottom, Top float32
}

/**
 * @brief A first person style camera. Angles are Euler degrees: X is pitch,
 * Y is yaw and Z is roll. View and projection matrices are rebuilt lazily.
 */
type Camera struct {
	position math.Vec3
	angle    math.Vec3

	viewDirty bool
	view      math.Mat4

	projDirty   bool
	projection  math.Mat4
	mode        ProjectionMode
	nearPlane   float32
	farPlane    float32
	ortho       OrthoRect
	verticalFOV float32
	aspectRatio float32
}

func NewCamera() *Camera {
	return &Camera{
		viewDirty:   true,
		projDirty:   true,
		mode:        PerspectiveProjection,
		nearPlane:   0.1,
		farPlane:    1000.0,
		ortho:       OrthoRect{Left: -1, Right: 1, Bottom: -1, Top: 1},
		verticalFOV: 45.0,
		aspectRatio: 16.0 / 9.0,
	}
}

func (c *Camera) Position() math.Vec3 { return c.position }

func (c *Camera) SetPosition(p math.Vec3) {
	if c.position == p {
		return
	}
	c.position = p
	c.viewDirty = true
}

func (c *Camera) OffsetPosition(offset math.Vec3) {
	c.SetPosition(c.position.Add(offset))
}

func (c *Camera) Angle() math.Vec3 { return c.angle }

// SetAngle wraps yaw and roll into [0, 360) and clamps pitch to avoid gimbal flip.
func (c *Camera) SetAngle(angle math.Vec3) {
	angle.X = math.Clamp(angle.X, -89.0, 89.0)
	angle.Y = math32.Mod(angle.Y, 360.0)
	if angle.Y < 0 {
		angle.Y += 360.0
	}
	angle.Z = math32.Mod(angle.Z, 360.0)
	if angle.Z < 0 {
		angle.Z += 360.0
	}
	if c.angle == angle {
		return
	}
	c.angle = angle
	c.viewDirty = true
}

func (c *Camera) OffsetOrientation(offset math.Vec3) {
	c.SetAngle(c.angle.Add(offset))
}

// SetOrientationTarget points the camera at target. Roll is kept.
func (c *Camera) SetOrientationTarget(target math.Vec3) {
	d := target.Sub(c.position).Normalize()
	if d.LengthSquared() == 0 {
		return
	}
	pitch := -math32.Asin(math.Clamp(d.Y, -1, 1))
	yaw := math32.Atan2(d.X, -d.Z)
	c.SetAngle(math.NewVec3(math.RadToDeg(pitch), math.RadToDeg(yaw), c.angle.Z))
}

// Orientation is the rotation part of the view matrix.
func (c *Camera) Orientation() math.Mat4 {
	rz := math.NewMat4EulerZ(math.DegToRad(c.angle.Z))
	rx := math.NewMat4EulerX(math.DegToRad(c.angle.X))
	ry := math.NewMat4EulerY(math.DegToRad(c.angle.Y))
	return rz.Mul(rx).Mul(ry)
}

func (c *Camera) direction(v math.Vec3) math.Vec3 {
	return c.Orientation().Transposed().MulVec4(v.ToVec4(0)).ToVec3()
}

func (c *Camera) Forward() math.Vec3 { return c.direction(math.NewVec3Forward()) }
func (c *Camera) Right() math.Vec3   { return c.direction(math.NewVec3Right()) }
func (c *Camera) Up() math.Vec3      { return c.direction(math.NewVec3Up()) }

func (c *Camera) View() math.Mat4 {
	if c.viewDirty {
		c.view = c.Orientation().Mul(math.NewMat4Translation(c.position.MulScalar(-1)))
		c.viewDirty = false
	}
	return c.view
}

// RotationView is the view matrix without translation, used for the skybox.
func (c *Camera) RotationView() math.Mat4 {
	return c.View().RotationOnly()
}

func (c *Camera) ProjectionMode() ProjectionMode { return c.mode }
func (c *Camera) NearPlane() float32             { return c.nearPlane }
func (c *Camera) FarPlane() float32              { return c.farPlane }

func (c *Camera) SetPlanes(nearPlane, farPlane float32) {
	c.nearPlane, c.farPlane = nearPlane, farPlane
	c.projDirty = true
}

func (c *Camera) SetOrthographic(rect OrthoRect) {
	c.mode = OrthographicProjection
	c.ortho = rect
	c.projDirty = true
}

// SetPerspective takes the vertical field of view in degrees.
func (c *Camera) SetPerspective(verticalFOV, aspectRatio float32) {
	c.mode = PerspectiveProjection
	c.verticalFOV = verticalFOV
	c.aspectRatio = aspectRatio
	c.projDirty = true
}

func (c *Camera) Projection() math.Mat4 {
	if c.projDirty {
		switch c.mode {
		case OrthographicProjection:
			c.projection = math.NewMat4Orthographic(c.ortho.Left, c.ortho.Right, c.ortho.Bottom, c.ortho.Top, c.nearPlane, c.farPlane)
		default:
			c.projection = math.NewMat4Perspective(math.DegToRad(c.verticalFOV), c.aspectRatio, c.nearPlane, c.farPlane)
		}
		c.projDirty = false
	}
	return c.projection
}

// UnprojectPoint maps a normalized view point (0..1, y down) at depth z (0 near, 1 far) to world space.
func (c *Camera) UnprojectPoint(x, y, z float32) math.Vec3 {
	ndc := math.NewVec4(x*2-1, 1-y*2, z*2-1, 1)
	inv := c.Projection().Mul(c.View()).Inverse()
	p := inv.MulVec4(ndc)
	if p.W == 0 {
		return p.ToVec3()
	}
	return p.ToVec3().MulScalar(1 / p.W)
}
