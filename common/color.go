package common

import (
	"image/color"
	"math"
)

// SRGB builds an opaque colour from sRGB channels in [0, 1].
func SRGB(r, g, b float64) color.NRGBA {
	return color.NRGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: 255}
}

// SRGB8 builds an opaque colour from 8-bit sRGB channels.
func SRGB8(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// LinearRGB converts linear channels in [0, 1] to an sRGB colour.
func LinearRGB(r, g, b float64) color.NRGBA {
	return SRGB(LinearToSRGB(r), LinearToSRGB(g), LinearToSRGB(b))
}

// ToLinear returns the linear channels of an sRGB colour.
func ToLinear(c color.NRGBA) (r, g, b float64) {
	return SRGBToLinear(float64(c.R) / 255), SRGBToLinear(float64(c.G) / 255), SRGBToLinear(float64(c.B) / 255)
}

func SRGBToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func LinearToSRGB(c float64) float64 {
	c = Clamp(c, 0, 1)
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

func toByte(c float64) uint8 {
	return uint8(math.Round(Clamp(c, 0, 1) * 255))
}
