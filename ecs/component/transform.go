package component

import "github.com/go-gl/mathgl/mgl64"

// Transform places an entity in world space. The flat variant uses X and Y
// of Translation for screen-plane position and Z for draw order.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// NewTransform returns an unrotated, unit-scale transform at (x, y, z).
func NewTransform(x, y, z float64) Transform {
	return Transform{
		Translation: mgl64.Vec3{x, y, z},
		Rotation:    mgl64.QuatIdent(),
		Scale:       mgl64.Vec3{1, 1, 1},
	}
}

// LookAt rotates the transform so its forward axis (-Z) points at target.
func (t *Transform) LookAt(target, up mgl64.Vec3) {
	f := target.Sub(t.Translation)
	if f.Len() < 1e-9 {
		return
	}
	f = f.Normalize()
	r := f.Cross(up)
	if r.Len() < 1e-9 {
		// looking straight along up
		r = f.Cross(mgl64.Vec3{0, 0, -1})
	}
	r = r.Normalize()
	u := r.Cross(f)
	t.Rotation = mgl64.Mat4ToQuat(mgl64.Mat3FromCols(r, u, f.Mul(-1)).Mat4()).Normalize()
}

// Forward returns the direction of the transform's -Z axis.
func (t Transform) Forward() mgl64.Vec3 {
	return t.rotation().Rotate(mgl64.Vec3{0, 0, -1})
}

// Matrix returns the model matrix translate * rotate * scale.
func (t Transform) Matrix() mgl64.Mat4 {
	s := t.Scale
	if s == (mgl64.Vec3{}) {
		s = mgl64.Vec3{1, 1, 1}
	}
	return mgl64.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.rotation().Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

var TransformComponent = NewComponent[Transform]()
