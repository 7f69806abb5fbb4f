package assets

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

var (
	faceOnce sync.Once
	face     text.Face
)

// UIFace is the bitmap face shared by the menus and the debug overlay.
func UIFace() text.Face {
	faceOnce.Do(func() {
		face = text.NewGoXFace(basicfont.Face7x13)
	})
	return face
}
