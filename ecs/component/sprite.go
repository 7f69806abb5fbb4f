package component

import "github.com/hajimehoshi/ebiten/v2"

// Sprite is a textured quad for the flat variant. Image is resolved from
// Texture by the flat renderer.
type Sprite struct {
	Image   *ebiten.Image
	OriginX float64
	OriginY float64
	// Texture names a procedural texture resolved when Image is nil.
	Texture string
	// CenterOrigin places the origin at the image centre once it is loaded.
	CenterOrigin bool
}

var SpriteComponent = NewComponent[Sprite]()
