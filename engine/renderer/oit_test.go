package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/math"
)

const oitTolerance = 1e-5

func TestOITWeightIsClamped(t *testing.T) {
	assert.Equal(t, float32(3e3), OITWeight(0, 1))
	assert.InDelta(t, 1e-2, OITWeight(1e4, 1), 1e-6)
	assert.Zero(t, OITWeight(5, 0))
	assert.InDelta(t, 0.5*OITWeight(5, 1), OITWeight(5, 0.5), 1e-3)
}

func TestOITWeightFallsOffWithDepth(t *testing.T) {
	// Nearer fragments weigh more, at any coverage.
	for _, a := range []float32{0.05, 0.5, 1} {
		prev := OITWeight(1, a)
		assert.Less(t, prev, 3e3*a, "no saturation in front of the camera")
		for _, depth := range []float32{5, 20, 60, 150} {
			w := OITWeight(depth, a)
			assert.Less(t, w, prev, "depth %g alpha %g", depth, a)
			prev = w
		}
	}
}

func TestOITEmptyPixelShowsBackground(t *testing.T) {
	bg := math.NewVec3(0.2, 0.3, 0.4)
	acc := NewOITAccumulator()
	assert.Equal(t, bg, acc.Composite(bg))
}

func TestOITSingleLayerMatchesOver(t *testing.T) {
	bg := math.NewVec3(0, 0, 1)
	color := math.NewVec3(1, 0.5, 0)

	acc := NewOITAccumulator()
	acc.Add(color, 0.4, 3)

	assert.True(t, acc.Composite(bg).Compare(BlendOver(bg, color, 0.4), oitTolerance))
}

func TestOITIsOrderIndependent(t *testing.T) {
	bg := math.NewVec3(0.1, 0.1, 0.1)
	front := math.NewVec3(1, 0, 0)
	back := math.NewVec3(0, 1, 0)

	frontFirst := NewOITAccumulator()
	frontFirst.Add(front, 0.5, 2)
	frontFirst.Add(back, 0.5, 30)

	backFirst := NewOITAccumulator()
	backFirst.Add(back, 0.5, 30)
	backFirst.Add(front, 0.5, 2)

	assert.True(t, frontFirst.Composite(bg).Compare(backFirst.Composite(bg), oitTolerance))
}

func TestOITCoverageMatchesOver(t *testing.T) {
	bg := math.NewVec3(0.3, 0.6, 0.9)
	a := float32(0.35)

	// Two quads of the same color: the weighted average equals that color,
	// so compositing must give exactly the over formula in depth order.
	color := math.NewVec3(0.8, 0.2, 0.4)
	acc := NewOITAccumulator()
	acc.Add(color, a, 40)
	acc.Add(color, a, 4)

	want := BlendOver(BlendOver(bg, color, a), color, a)
	assert.True(t, acc.Composite(bg).Compare(want, oitTolerance))

	// For different colors the background keeps the same share as with
	// over blending.
	black := math.NewVec3(0, 0, 0)
	front := math.NewVec3(1, 0, 0)
	back := math.NewVec3(0, 0, 1)
	acc = NewOITAccumulator()
	acc.Add(front, a, 4)
	acc.Add(back, a, 40)
	withBg := acc.Composite(bg)
	withoutBg := acc.Composite(black)
	share := (1 - a) * (1 - a)
	assert.True(t, withBg.Sub(withoutBg).Compare(bg.MulScalar(share), oitTolerance))
}

func TestOITFrontLayerDominates(t *testing.T) {
	black := math.NewVec3(0, 0, 0)
	front := math.NewVec3(1, 0, 0)
	back := math.NewVec3(0, 0, 1)

	acc := NewOITAccumulator()
	acc.Add(back, 0.5, 40)
	acc.Add(front, 0.5, 2)

	out := acc.Composite(black)
	assert.Greater(t, out.X, out.Z)

	// Over blending in depth order gives 0.5 red and 0.25 blue.
	assert.Greater(t, out.X, float32(0.5))
	assert.InDelta(t, 0.75, out.X+out.Z, oitTolerance)
}
