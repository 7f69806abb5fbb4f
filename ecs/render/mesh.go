package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs/component"
)

const (
	planeDivisions = 8
	sphereRings    = 12
	sphereSegments = 18
)

// Vertex is a mesh vertex in local space.
type Vertex struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
}

// MeshData is an indexed triangle list. Triangles are wound counter-clockwise
// seen from the side their normals point to.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint16
}

// TriangleCount returns the number of triangles.
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

type meshKey struct {
	shape          component.MeshShape
	size           mgl64.Vec3
	radius, length float64
}

var (
	meshCacheMu sync.Mutex
	meshCache   = map[meshKey]*MeshData{}
)

// Tessellate returns the triangles of a mesh. Results are cached per shape
// and dimensions, so callers must not modify them.
func Tessellate(m component.Mesh) (*MeshData, error) {
	key := meshKey{shape: m.Shape, size: m.Size, radius: m.Radius, length: m.Length}
	meshCacheMu.Lock()
	defer meshCacheMu.Unlock()
	if data, ok := meshCache[key]; ok {
		return data, nil
	}

	var data *MeshData
	switch m.Shape {
	case component.MeshPlane:
		if m.Size[0] <= 0 || m.Size[2] <= 0 {
			return nil, fmt.Errorf("render: plane size %v must be positive", m.Size)
		}
		data = planeMesh(m.Size[0], m.Size[2], planeDivisions)
	case component.MeshCuboid:
		if m.Size[0] <= 0 || m.Size[1] <= 0 || m.Size[2] <= 0 {
			return nil, fmt.Errorf("render: cuboid size %v must be positive", m.Size)
		}
		data = cuboidMesh(m.Size)
	case component.MeshSphere:
		if m.Radius <= 0 {
			return nil, fmt.Errorf("render: sphere radius %v must be positive", m.Radius)
		}
		data = capsuleMesh(m.Radius, 0)
	case component.MeshCapsule:
		if m.Radius <= 0 || m.Length < 0 {
			return nil, fmt.Errorf("render: capsule r=%v l=%v is invalid", m.Radius, m.Length)
		}
		data = capsuleMesh(m.Radius, m.Length)
	default:
		return nil, fmt.Errorf("render: unknown mesh shape %s", m.Shape)
	}
	meshCache[key] = data
	return data, nil
}

type meshBuilder struct {
	data MeshData
}

func (b *meshBuilder) vertex(pos, normal mgl64.Vec3) uint16 {
	b.data.Vertices = append(b.data.Vertices, Vertex{Pos: pos, Normal: normal})
	return uint16(len(b.data.Vertices) - 1)
}

// tri appends a triangle, flipping it when its winding disagrees with the
// vertex normals. Degenerate triangles (sphere poles) are dropped.
func (b *meshBuilder) tri(i0, i1, i2 uint16) {
	v := b.data.Vertices
	face := v[i1].Pos.Sub(v[i0].Pos).Cross(v[i2].Pos.Sub(v[i0].Pos))
	if face.Len() < 1e-12 {
		return
	}
	n := v[i0].Normal.Add(v[i1].Normal).Add(v[i2].Normal)
	if face.Dot(n) < 0 {
		i1, i2 = i2, i1
	}
	b.data.Indices = append(b.data.Indices, i0, i1, i2)
}

func (b *meshBuilder) quad(i00, i01, i11, i10 uint16) {
	b.tri(i00, i01, i11)
	b.tri(i00, i11, i10)
}

// planeMesh lies in the XZ plane facing +Y, centred on the origin.
func planeMesh(sx, sz float64, div int) *MeshData {
	b := &meshBuilder{}
	up := mgl64.Vec3{0, 1, 0}
	for j := 0; j <= div; j++ {
		for i := 0; i <= div; i++ {
			x := -sx/2 + sx*float64(i)/float64(div)
			z := -sz/2 + sz*float64(j)/float64(div)
			b.vertex(mgl64.Vec3{x, 0, z}, up)
		}
	}
	row := div + 1
	for j := 0; j < div; j++ {
		for i := 0; i < div; i++ {
			i00 := uint16(j*row + i)
			b.quad(i00, i00+uint16(row), i00+uint16(row)+1, i00+1)
		}
	}
	return &b.data
}

func cuboidMesh(size mgl64.Vec3) *MeshData {
	b := &meshBuilder{}
	h := size.Mul(0.5)
	faces := []struct {
		n, u, v mgl64.Vec3
	}{
		{mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}},
		{mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}},
		{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}},
		{mgl64.Vec3{0, -1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}},
		{mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
		{mgl64.Vec3{0, 0, -1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
	}
	scale := func(v mgl64.Vec3) mgl64.Vec3 {
		return mgl64.Vec3{v[0] * h[0], v[1] * h[1], v[2] * h[2]}
	}
	for _, f := range faces {
		c := scale(f.n)
		u, v := scale(f.u), scale(f.v)
		i00 := b.vertex(c.Sub(u).Sub(v), f.n)
		i01 := b.vertex(c.Sub(u).Add(v), f.n)
		i11 := b.vertex(c.Add(u).Add(v), f.n)
		i10 := b.vertex(c.Add(u).Sub(v), f.n)
		b.quad(i00, i01, i11, i10)
	}
	return &b.data
}

// capsuleMesh builds a UV sphere split at the equator, with the halves
// pushed length/2 apart along Y. A zero length gives a sphere.
func capsuleMesh(radius, length float64) *MeshData {
	b := &meshBuilder{}
	type ring struct {
		theta, offset float64
	}
	var rings []ring
	for i := 0; i <= sphereRings; i++ {
		theta := math.Pi * float64(i) / float64(sphereRings)
		switch {
		case i < sphereRings/2:
			rings = append(rings, ring{theta, length / 2})
		case i == sphereRings/2:
			rings = append(rings, ring{theta, length / 2})
			if length > 0 {
				rings = append(rings, ring{theta, -length / 2})
			}
		default:
			rings = append(rings, ring{theta, -length / 2})
		}
	}
	row := sphereSegments + 1
	for _, r := range rings {
		for s := 0; s <= sphereSegments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(sphereSegments)
			n := mgl64.Vec3{
				math.Sin(r.theta) * math.Cos(phi),
				math.Cos(r.theta),
				math.Sin(r.theta) * math.Sin(phi),
			}
			b.vertex(n.Mul(radius).Add(mgl64.Vec3{0, r.offset, 0}), n)
		}
	}
	for j := 0; j < len(rings)-1; j++ {
		for s := 0; s < sphereSegments; s++ {
			i00 := uint16(j*row + s)
			b.quad(i00, i00+uint16(row), i00+uint16(row)+1, i00+1)
		}
	}
	return &b.data
}
