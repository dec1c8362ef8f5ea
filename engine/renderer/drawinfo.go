package renderer

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief The matrices and position a group is drawn with.
 */
type DrawInfo struct {
	Model         math.Mat4
	View          math.Mat4
	Projection    math.Mat4
	WorldPosition math.Vec3
}

func NewDrawInfo(item scene.DrawItem, camera *scene.Camera) DrawInfo {
	return DrawInfo{
		Model:         item.Model,
		View:          camera.View(),
		Projection:    camera.Projection(),
		WorldPosition: item.WorldPosition,
	}
}

// SkyboxDrawInfo uses the rotation part of the camera view only, so the box
// stays centered on the viewer.
func SkyboxDrawInfo(camera *scene.Camera) DrawInfo {
	return DrawInfo{
		Model:      math.NewMat4Identity(),
		View:       camera.RotationView(),
		Projection: camera.Projection(),
	}
}

func (d DrawInfo) ModelView() math.Mat4 {
	return d.View.Mul(d.Model)
}

func (d DrawInfo) ModelViewProjection() math.Mat4 {
	return d.Projection.Mul(d.ModelView())
}

// Bytes returns the std140 layout of MeshUBO_Data: projection, view, model,
// model-view, model-view-projection and the three normal matrices.
func (d DrawInfo) Bytes() []byte {
	mv := d.ModelView()
	mvp := d.ModelViewProjection()

	buf := make([]byte, 0, MeshUniformsSize)
	buf = appendMat4(buf, d.Projection)
	buf = appendMat4(buf, d.View)
	buf = appendMat4(buf, d.Model)
	buf = appendMat4(buf, mv)
	buf = appendMat4(buf, mvp)
	buf = appendMat4(buf, d.Model.NormalMatrix())
	buf = appendMat4(buf, mv.NormalMatrix())
	buf = appendMat4(buf, mvp.NormalMatrix())
	return buf
}
