package assets

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
)

const playerTextureSize = 128

type textureFn func() *image.NRGBA

var textures = map[string]textureFn{
	"player":  playerTexture,
	"checker": checkerTexture,
}

// Texture generates a named procedural texture. Generation is pure CPU
// work, so callers wrap the result in an ebiten.Image themselves.
func Texture(name string) (*image.NRGBA, error) {
	fn, ok := textures[name]
	if !ok {
		return nil, fmt.Errorf("assets: unknown texture %q", name)
	}
	return fn(), nil
}

// TextureNames lists the procedural textures in sorted order.
func TextureNames() []string {
	names := make([]string, 0, len(textures))
	for name := range textures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// playerTexture is a shaded disc with a darker rim and two eyes.
func playerTexture() *image.NRGBA {
	const n = playerTextureSize
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	c := float64(n-1) / 2
	r := c - 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			d := math.Hypot(dx, dy)
			if d > r {
				continue
			}
			shade := 1 - 0.35*(d/r)
			col := color.NRGBA{R: uint8(204 * shade), G: uint8(178 * shade), B: uint8(153 * shade), A: 255}
			if d > r-4 {
				col = color.NRGBA{R: 90, G: 70, B: 60, A: 255}
			}
			img.SetNRGBA(x, y, col)
		}
	}
	for _, ex := range []float64{c - 20, c + 20} {
		for y := int(c - 26); y <= int(c-10); y++ {
			for x := int(ex - 6); x <= int(ex+6); x++ {
				if math.Hypot(float64(x)-ex, (float64(y)-(c-18))/1.4) <= 6 {
					img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 30, B: 40, A: 255})
				}
			}
		}
	}
	return img
}

func checkerTexture() *image.NRGBA {
	const n, cell = 64, 8
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := uint8(80)
			if (x/cell+y/cell)%2 == 0 {
				v = 200
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}
