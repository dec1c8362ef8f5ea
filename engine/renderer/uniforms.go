package renderer

import (
	"bytes"
	"encoding/binary"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// Uniform block names and the binding points every program maps them to.
const (
	MeshUniformBlock     = "MeshUBO_Data"
	MaterialUniformBlock = "MaterialUBO_Data"
	SceneUniformBlock    = "SceneUBO_Data"
	LineUniformBlock     = "LineUBO_Data"

	MeshUniformBinding     uint32 = 0
	MaterialUniformBinding uint32 = 1
	SceneUniformBinding    uint32 = 2
	LineUniformBinding     uint32 = 3
)

// std140 sizes in bytes.
const (
	MeshUniformsSize     = 8 * 64
	MaterialUniformsSize = 32
	SceneUniformsSize    = 16 + 2*core.MaxLightSlots*16
	LineUniformsSize     = 16
)

// UniformBlockBindings lists every block with its binding point.
var UniformBlockBindings = map[string]uint32{
	MeshUniformBlock:     MeshUniformBinding,
	MaterialUniformBlock: MaterialUniformBinding,
	SceneUniformBlock:    SceneUniformBinding,
	LineUniformBlock:     LineUniformBinding,
}

func appendFloats(buf []byte, values ...float32) []byte {
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(v))
	}
	return buf
}

func appendVec4(buf []byte, v math.Vec4) []byte {
	return appendFloats(buf, v.X, v.Y, v.Z, v.W)
}

func appendMat4(buf []byte, m math.Mat4) []byte {
	return appendFloats(buf, m.Data[:]...)
}

/**
 * @brief Snapshot of the scene uniform block: camera position and the light
 * slots. The renderer only uploads it when it differs from the last upload.
 */
type SceneUniforms struct {
	CameraPosition math.Vec3
	Lights         [core.MaxLightSlots]LightSlot
}

// NewSceneUniforms fills the light slots from slots; missing slots are empty.
func NewSceneUniforms(cameraPosition math.Vec3, slots []LightSlot) SceneUniforms {
	u := SceneUniforms{CameraPosition: cameraPosition}
	for i := range u.Lights {
		if i < len(slots) {
			u.Lights[i] = slots[i]
		} else {
			u.Lights[i] = EmptyLightSlot()
		}
	}
	return u
}

// Equal compares the uploaded bytes, so NaN matches itself and -0 differs from +0.
func (u SceneUniforms) Equal(o SceneUniforms) bool {
	return bytes.Equal(u.Bytes(), o.Bytes())
}

// Bytes returns the std140 layout of SceneUBO_Data.
func (u SceneUniforms) Bytes() []byte {
	buf := make([]byte, 0, SceneUniformsSize)
	buf = appendVec4(buf, u.CameraPosition.ToVec4(1))
	for _, l := range u.Lights {
		buf = appendVec4(buf, l.Position)
	}
	for _, l := range u.Lights {
		buf = appendVec4(buf, l.Color)
	}
	return buf
}

/** @brief The material uniform block of a MaterialProperties. */
type MaterialUniforms struct {
	Albedo    math.Vec4
	Metallic  float32
	Roughness float32
	AO        float32
	Opacity   float32
}

func MaterialUniformsFrom(mp *resources.MaterialProperties) MaterialUniforms {
	return MaterialUniforms{
		Albedo:    mp.Albedo(),
		Metallic:  mp.Metallic(),
		Roughness: mp.Roughness(),
		AO:        mp.AO(),
		Opacity:   mp.Opacity(),
	}
}

// Bytes returns the std140 layout of MaterialUBO_Data.
func (u MaterialUniforms) Bytes() []byte {
	buf := make([]byte, 0, MaterialUniformsSize)
	buf = appendVec4(buf, u.Albedo)
	return appendFloats(buf, u.Metallic, u.Roughness, u.AO, u.Opacity)
}

type LineUniforms struct {
	Thickness float32
	Feather   float32
}

// Bytes returns LineUBO_Data padded to a full vec4.
func (u LineUniforms) Bytes() []byte {
	buf := make([]byte, 0, LineUniformsSize)
	return appendFloats(buf, u.Thickness, u.Feather, 0, 0)
}
