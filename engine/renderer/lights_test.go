package renderer

import (
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

func light(x, y, z float32) scene.PointLight {
	return scene.PointLight{Color: math.NewVec4(1, 1, 1, 1), Position: math.NewVec3(x, y, z)}
}

func TestSelectClosestLights(t *testing.T) {
	lights := []scene.PointLight{light(0, 0, 0), light(10, 0, 0), light(5, 0, 0)}

	slots := SelectClosestLights(lights, math.NewVec3(0, 0, 0), 2)
	require.Len(t, slots, 2)
	assert.Equal(t, math.NewVec4(0, 0, 0, 1), slots[0].Position)
	assert.Equal(t, math.NewVec4(5, 0, 0, 1), slots[1].Position)
	assert.False(t, slots[0].Empty())
	assert.False(t, slots[1].Empty())
}

func TestSelectClosestLightsFillsEmptySlots(t *testing.T) {
	lights := []scene.PointLight{light(0, 0, 0), light(10, 0, 0), light(5, 0, 0)}

	slots := SelectClosestLights(lights, math.NewVec3(0, 0, 0), 5)
	require.Len(t, slots, 5)
	assert.Equal(t, float32(0), slots[0].Position.X)
	assert.Equal(t, float32(5), slots[1].Position.X)
	assert.Equal(t, float32(10), slots[2].Position.X)
	assert.True(t, slots[3].Empty())
	assert.True(t, slots[4].Empty())
	assert.Equal(t, EmptyLightSlot(), slots[4])
}

func TestSelectClosestLightsDependsOnPosition(t *testing.T) {
	lights := []scene.PointLight{light(0, 0, 0), light(10, 0, 0), light(5, 0, 0)}

	slots := SelectClosestLights(lights, math.NewVec3(9, 0, 0), 1)
	require.Len(t, slots, 1)
	assert.Equal(t, float32(10), slots[0].Position.X)

	assert.Nil(t, SelectClosestLights(lights, math.NewVec3(0, 0, 0), 0))
	empty := SelectClosestLights(nil, math.NewVec3(0, 0, 0), 2)
	assert.True(t, empty[0].Empty())
	assert.True(t, empty[1].Empty())
}

func TestSelectClosestLightsKeepsOrderOnTies(t *testing.T) {
	a := light(1, 0, 0)
	b := light(-1, 0, 0)
	b.Color = math.NewVec4(1, 0, 0, 1)

	slots := SelectClosestLights([]scene.PointLight{a, b}, math.NewVec3(0, 0, 0), 2)
	assert.Equal(t, a.Color, slots[0].Color)
	assert.Equal(t, b.Color, slots[1].Color)
}

func readFloat(buf []byte, index int) float32 {
	return math32.Float32frombits(binary.LittleEndian.Uint32(buf[index*4:]))
}

func TestSceneUniformsLayout(t *testing.T) {
	slots := SelectClosestLights([]scene.PointLight{light(1, 2, 3)}, math.NewVec3(0, 0, 0), 2)
	u := NewSceneUniforms(math.NewVec3(4, 5, 6), slots)

	buf := u.Bytes()
	require.Len(t, buf, SceneUniformsSize)

	// cameraPos
	assert.Equal(t, []float32{4, 5, 6, 1}, []float32{readFloat(buf, 0), readFloat(buf, 1), readFloat(buf, 2), readFloat(buf, 3)})
	// lightPos[0]
	assert.Equal(t, float32(1), readFloat(buf, 4))
	assert.Equal(t, float32(3), readFloat(buf, 6))
	// lightColor[0] follows the position array.
	colors := 4 + 4*core.MaxLightSlots
	assert.Equal(t, float32(1), readFloat(buf, colors+3))
	// Every other slot is empty, including the ones past the requested count.
	for i := 1; i < core.MaxLightSlots; i++ {
		assert.Equal(t, NoLightAlpha, readFloat(buf, colors+i*4+3), "slot %d", i)
	}
}

func TestSceneUniformsEqual(t *testing.T) {
	slots := SelectClosestLights([]scene.PointLight{light(1, 2, 3)}, math.NewVec3(0, 0, 0), 1)
	a := NewSceneUniforms(math.NewVec3(0, 0, 0), slots)
	b := NewSceneUniforms(math.NewVec3(0, 0, 0), slots)
	assert.True(t, a.Equal(b))

	b.CameraPosition.Z = 1
	assert.False(t, a.Equal(b))

	c := NewSceneUniforms(math.NewVec3(0, 0, 0), nil)
	assert.False(t, a.Equal(c))
}

func TestSceneUniformsEqualComparesBytes(t *testing.T) {
	nan := math32.NaN()
	a := NewSceneUniforms(math.NewVec3(nan, 0, 0), nil)
	b := NewSceneUniforms(math.NewVec3(nan, 0, 0), nil)
	assert.True(t, a.Equal(b), "the same NaN uploads the same bytes")

	pos := NewSceneUniforms(math.NewVec3(0, 0, 0), nil)
	neg := NewSceneUniforms(math.NewVec3(math32.Copysign(0, -1), 0, 0), nil)
	assert.False(t, pos.Equal(neg))
}
