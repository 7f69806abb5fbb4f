package render

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/redroom/assets"
)

// LoadTexture returns the ebiten image for a procedural texture, creating and
// caching it on first use. It must run on the game thread.
func LoadTexture(key string) (*ebiten.Image, error) {
	if key == "" {
		return nil, fmt.Errorf("empty texture key")
	}
	if img := GetImage(key); img != nil {
		return img, nil
	}
	src, err := assets.Texture(key)
	if err != nil {
		return nil, err
	}
	img := ebiten.NewImageFromImage(src)
	RegisterImage(key, img)
	return img, nil
}
