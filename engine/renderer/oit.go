package renderer

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumen/engine/math"
)

// CPU side model of the weighted blended transparency passes. It mirrors
// what the translucent and composite shaders compute for one pixel and is
// used to check the blend setup.

/**
 * @brief Depth weight of a translucent fragment. The weight falls off with
 * the fourth power of the distance and reaches the 3e3 ceiling only at the
 * eye, so fragments in front keep outweighing the ones behind them.
 * @param depth Distance of the fragment from the camera, in world units.
 * @param alpha Fragment coverage.
 */
func OITWeight(depth, alpha float32) float32 {
	d := depth / 200
	return alpha * math.Clamp(0.03/(1e-5+d*d*d*d), 1e-2, 3e3)
}

/**
 * @brief One pixel of the two accumulation targets. Accum is blended with
 * ONE, ONE. Reveal starts at 1 and is blended with ZERO, ONE_MINUS_SRC_COLOR.
 */
type OITAccumulator struct {
	Accum  math.Vec4
	Reveal float32
}

func NewOITAccumulator() OITAccumulator {
	return OITAccumulator{Reveal: 1}
}

// Add blends one fragment in, as the translucent shader outputs it.
func (o *OITAccumulator) Add(color math.Vec3, alpha, depth float32) {
	w := OITWeight(depth, alpha)
	o.Accum = o.Accum.Add(color.MulScalar(alpha).ToVec4(alpha).MulScalar(w))
	o.Reveal *= 1 - alpha
}

/**
 * @brief Resolves the pixel over background the way the composite pass does:
 * the weighted average color covers 1 - Reveal of the background.
 */
func (o OITAccumulator) Composite(background math.Vec3) math.Vec3 {
	if o.Reveal >= 1 {
		return background
	}
	avg := o.Accum.ToVec3().MulScalar(1 / math32.Max(o.Accum.W, 1e-5))
	coverage := 1 - o.Reveal
	return avg.MulScalar(coverage).Add(background.MulScalar(o.Reveal))
}

// BlendOver is plain "over" alpha blending of color onto dst.
func BlendOver(dst, color math.Vec3, alpha float32) math.Vec3 {
	return color.MulScalar(alpha).Add(dst.MulScalar(1 - alpha))
}
