package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs/component"
)

// Camera projects world points to screen pixels.
type Camera struct {
	Eye      mgl64.Vec3
	viewProj mgl64.Mat4
	near     float64
	width    float64
	height   float64
}

// NewCamera builds a perspective camera looking along the transform's
// forward axis, for a target of width x height pixels.
func NewCamera(t component.Transform, cam component.Camera3D, width, height float64) Camera {
	up := cam.Up
	if up.Len() < 1e-9 {
		up = mgl64.Vec3{0, 1, 0}
	}
	near := cam.Near
	if near <= 0 {
		near = 0.1
	}
	far := cam.Far
	if far <= near {
		far = near + 1000
	}
	aspect := 1.0
	if height > 0 {
		aspect = width / height
	}
	eye := t.Translation
	view := mgl64.LookAtV(eye, eye.Add(t.Forward()), up)
	proj := mgl64.Perspective(cam.FOV, aspect, near, far)
	return Camera{
		Eye:      eye,
		viewProj: proj.Mul4(view),
		near:     near,
		width:    width,
		height:   height,
	}
}

// Project returns the screen position of p and its view depth. ok is false
// when p lies behind the near plane.
func (c Camera) Project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w < c.near {
		return 0, 0, w, false
	}
	ndcX, ndcY := clip[0]/w, clip[1]/w
	x = (ndcX + 1) / 2 * c.width
	y = (1 - ndcY) / 2 * c.height
	return x, y, w, true
}

// Facing reports whether a triangle with outward normal n at point p faces
// the camera.
func (c Camera) Facing(p, n mgl64.Vec3) bool {
	return n.Dot(c.Eye.Sub(p)) > 0
}
