package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/common"
)

// Light is a point light in linear colour space, already scaled by intensity.
type Light struct {
	Pos   mgl64.Vec3
	Color mgl64.Vec3
	Range float64
}

// Lighting is everything that lights a frame.
type Lighting struct {
	Ambient mgl64.Vec3
	Lights  []Light
}

// NewLight converts an sRGB light colour.
func NewLight(pos mgl64.Vec3, c color.NRGBA, intensity, rng float64) Light {
	r, g, b := common.ToLinear(c)
	return Light{Pos: pos, Color: mgl64.Vec3{r, g, b}.Mul(intensity), Range: rng}
}

// NewAmbient converts an sRGB ambient colour.
func NewAmbient(c color.NRGBA, brightness float64) mgl64.Vec3 {
	r, g, b := common.ToLinear(c)
	return mgl64.Vec3{r, g, b}.Mul(brightness)
}

// Falloff is one at the light and reaches zero at its range.
func Falloff(dist, rng float64) float64 {
	if rng <= 0 || dist >= rng {
		return 0
	}
	f := 1 - (dist*dist)/(rng*rng)
	return f * f
}

// Shade lights a surface point with ambient plus Lambert diffuse terms and
// returns the colour as premultiplied linear-to-sRGB floats for ebiten.
func (l Lighting) Shade(base color.NRGBA, pos, normal mgl64.Vec3) (r, g, b, a float32) {
	br, bg, bb := common.ToLinear(base)
	light := l.Ambient
	for _, pl := range l.Lights {
		toLight := pl.Pos.Sub(pos)
		dist := toLight.Len()
		if dist < 1e-9 {
			light = light.Add(pl.Color)
			continue
		}
		lambert := normal.Dot(toLight.Mul(1 / dist))
		if lambert <= 0 {
			continue
		}
		light = light.Add(pl.Color.Mul(lambert * Falloff(dist, pl.Range)))
	}
	return encode(br*light[0], bg*light[1], bb*light[2], base.A)
}

// Unlit returns the material colour unchanged.
func Unlit(base color.NRGBA) (r, g, b, a float32) {
	alpha := float32(base.A) / 255
	return float32(base.R) / 255 * alpha, float32(base.G) / 255 * alpha, float32(base.B) / 255 * alpha, alpha
}

func encode(lr, lg, lb float64, a8 uint8) (r, g, b, a float32) {
	alpha := float32(a8) / 255
	r = float32(common.LinearToSRGB(lr)) * alpha
	g = float32(common.LinearToSRGB(lg)) * alpha
	b = float32(common.LinearToSRGB(lb)) * alpha
	return r, g, b, alpha
}
