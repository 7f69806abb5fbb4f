package component

import "image/color"

// PointLight emits in all directions from the entity's translation.
type PointLight struct {
	Color     color.NRGBA
	Intensity float64
	Range     float64
	// ShadowsEnabled is carried for scene parity; the renderer does not cast shadows.
	ShadowsEnabled bool
}

var PointLightComponent = NewComponent[PointLight]()

// AmbientLight lights every surface uniformly. The first one found is used.
type AmbientLight struct {
	Color      color.NRGBA
	Brightness float64
}

var AmbientLightComponent = NewComponent[AmbientLight]()
