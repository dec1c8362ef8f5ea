package renderer

import (
	"sort"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// NoLightAlpha marks an empty light slot in the color alpha channel.
// Valid lights never carry a negative intensity.
const NoLightAlpha float32 = -1

/** @brief One light slot of the scene uniform block. */
type LightSlot struct {
	/** @brief World position, w is 1. */
	Position math.Vec4
	/** @brief Light color, alpha is the intensity or NoLightAlpha when empty. */
	Color math.Vec4
}

// EmptyLightSlot returns the "no light" sentinel slot.
func EmptyLightSlot() LightSlot {
	return LightSlot{Color: math.NewVec4(0, 0, 0, NoLightAlpha)}
}

func (s LightSlot) Empty() bool {
	return s.Color.W < 0
}

/**
 * @brief Picks the n lights closest to pos, nearest first. Slots past the
 * number of available lights hold EmptyLightSlot. Lights at the same
 * distance keep their input order.
 * @param lights The scene lights.
 * @param pos The query position, usually a group's world position.
 * @param n The number of slots to fill.
 * @return n light slots.
 */
func SelectClosestLights(lights []scene.PointLight, pos math.Vec3, n int) []LightSlot {
	if n <= 0 {
		return nil
	}

	type candidate struct {
		light    scene.PointLight
		distance float32
	}
	candidates := make([]candidate, len(lights))
	for i, l := range lights {
		candidates[i] = candidate{light: l, distance: l.Position.DistanceSquared(pos)}
	}
	// Light counts stay in the tens, a full sort is cheap enough.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	slots := make([]LightSlot, n)
	for i := range slots {
		if i >= len(candidates) {
			slots[i] = EmptyLightSlot()
			continue
		}
		l := candidates[i].light
		slots[i] = LightSlot{
			Position: l.Position.ToVec4(1),
			Color:    l.Color,
		}
	}
	return slots
}
