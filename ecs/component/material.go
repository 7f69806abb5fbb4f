package component

import "image/color"

// Material is the base colour of a mesh, in sRGB.
type Material struct {
	Color color.NRGBA
	// Unlit materials ignore scene lights.
	Unlit bool
}

var MaterialComponent = NewComponent[Material]()
