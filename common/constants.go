package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// Gravity is the downward acceleration in m/s².
	Gravity = 9.81
)
