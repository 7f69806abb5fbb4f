package component

import "github.com/go-gl/mathgl/mgl64"

type MeshShape int

const (
	MeshPlane MeshShape = iota + 1
	MeshCuboid
	MeshSphere
	MeshCapsule
)

func (s MeshShape) String() string {
	switch s {
	case MeshPlane:
		return "plane"
	case MeshCuboid:
		return "cuboid"
	case MeshSphere:
		return "sphere"
	case MeshCapsule:
		return "capsule"
	default:
		return "unknown"
	}
}

// Mesh describes renderable geometry in local space.
// Plane: Size X by Size Z in the XZ plane, normal +Y.
// Cuboid: full extents Size. Sphere: Radius. Capsule: Radius and the
// Length of the cylindrical section along Y.
type Mesh struct {
	Shape  MeshShape
	Size   mgl64.Vec3
	Radius float64
	Length float64
}

// HalfHeight is the vertical half extent of the unrotated mesh.
func (m Mesh) HalfHeight() float64 {
	switch m.Shape {
	case MeshCuboid:
		return m.Size[1] / 2
	case MeshSphere:
		return m.Radius
	case MeshCapsule:
		return m.Length/2 + m.Radius
	default:
		return 0
	}
}

var MeshComponent = NewComponent[Mesh]()
