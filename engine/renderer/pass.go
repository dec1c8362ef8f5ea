package renderer

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

type TranslucencyMode uint8

const (
	// Weighted blended order independent transparency.
	TranslucencyOIT TranslucencyMode = iota
	// Plain alpha blending in submission order.
	TranslucencyBlend
)

func (m TranslucencyMode) String() string {
	switch m {
	case TranslucencyOIT:
		return "oit"
	case TranslucencyBlend:
		return "blend"
	}
	return fmt.Sprintf("TranslucencyMode(%d)", uint8(m))
}

func ParseTranslucencyMode(s string) (TranslucencyMode, error) {
	switch s {
	case "", "oit":
		return TranslucencyOIT, nil
	case "blend":
		return TranslucencyBlend, nil
	}
	return 0, fmt.Errorf("%w: translucency mode %q", core.ErrUnknown, s)
}

// Pass is one stage of a frame. Passes run in declaration order and differ
// only in GPU state.
type Pass uint8

const (
	PassSkybox Pass = iota
	PassOpaque
	PassTranslucent
	PassComposite
)

func (p Pass) String() string {
	switch p {
	case PassSkybox:
		return "skybox"
	case PassOpaque:
		return "opaque"
	case PassTranslucent:
		return "translucent"
	case PassComposite:
		return "composite"
	}
	return fmt.Sprintf("Pass(%d)", uint8(p))
}

// IsTranslucent reports whether item belongs to the translucent pass.
func IsTranslucent(item scene.DrawItem) bool {
	if item.Material != nil && item.Material.IsTranslucent() {
		return true
	}
	return item.MaterialProperties != nil && item.MaterialProperties.IsTranslucent()
}

// CullingDisabled reports whether back faces of the item's mesh must be drawn.
func CullingDisabled(item scene.DrawItem) bool {
	if item.Mesh != nil && item.Mesh.RenderOptions()&resources.MeshDisableCulling != 0 {
		return true
	}
	return IsTranslucent(item)
}

// HasMesh reports whether item carries a complete mesh, material and properties triple.
func HasMesh(item scene.DrawItem) bool {
	return item.Mesh != nil && item.Material != nil && item.MaterialProperties != nil
}

// DrawList is a frame's visible groups sorted into passes, each kept in
// submission order.
type DrawList struct {
	Opaque      []scene.DrawItem
	Translucent []scene.DrawItem
	Lines       []scene.DrawItem
}

// Add files item under the passes it takes part in. A group can carry both
// a mesh and a line group. Incomplete items are dropped.
func (dl *DrawList) Add(item scene.DrawItem) {
	if HasMesh(item) {
		if IsTranslucent(item) {
			dl.Translucent = append(dl.Translucent, item)
		} else {
			dl.Opaque = append(dl.Opaque, item)
		}
	}
	if item.LineGroup != nil {
		dl.Lines = append(dl.Lines, item)
	}
}

func (dl *DrawList) Len() int {
	return len(dl.Opaque) + len(dl.Translucent) + len(dl.Lines)
}

func (dl *DrawList) Reset() {
	dl.Opaque = dl.Opaque[:0]
	dl.Translucent = dl.Translucent[:0]
	dl.Lines = dl.Lines[:0]
}
