package component

import "github.com/go-gl/mathgl/mgl64"

// Camera3D projects the scene from the entity's Transform toward Focus.
type Camera3D struct {
	FOV   float64
	Near  float64
	Far   float64
	Focus mgl64.Vec3
	Up    mgl64.Vec3
}

var Camera3DComponent = NewComponent[Camera3D]()

// CameraFollow eases the camera focus toward the target entity.
type CameraFollow struct {
	TargetName string
	// Speed is the fraction of the remaining distance closed per second.
	Speed float64
	// Deadzone is the distance under which the focus does not move.
	Deadzone float64
}

var CameraFollowComponent = NewComponent[CameraFollow]()

// Camera2D centres the flat view on the entity's translation.
type Camera2D struct {
	Zoom float64
}

var Camera2DComponent = NewComponent[Camera2D]()
