package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampLength scales (x, y) down to length max when it is longer.
func ClampLength(x, y, max float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l <= max || l == 0 {
		return x, y
	}
	return x / l * max, y / l * max
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}
