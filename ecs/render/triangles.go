package render

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/redroom/ecs/component"
)

// maxBatchVertices keeps indices within uint16.
const maxBatchVertices = 65535

// ScreenVertex is a projected, shaded vertex.
type ScreenVertex struct {
	X, Y       float32
	R, G, B, A float32
}

// Triangle is a projected triangle ready to draw.
type Triangle struct {
	V     [3]ScreenVertex
	Depth float64
	Layer int
}

// Surface is one mesh instance to project.
type Surface struct {
	Mesh      *MeshData
	Transform component.Transform
	Material  component.Material
	Layer     int
}

// AppendSurface transforms, culls, shades and projects a mesh instance.
// Triangles facing away from the camera or crossing the near plane are dropped.
func AppendSurface(dst []Triangle, cam Camera, lighting Lighting, s Surface) []Triangle {
	if s.Mesh == nil {
		return dst
	}
	model := s.Transform.Matrix()
	rot := s.Transform.Rotation
	if rot.Len() < 1e-9 {
		rot = mgl64.QuatIdent()
	}

	n := len(s.Mesh.Vertices)
	world := make([]mgl64.Vec3, n)
	normals := make([]mgl64.Vec3, n)
	for i, v := range s.Mesh.Vertices {
		world[i] = model.Mul4x1(v.Pos.Vec4(1)).Vec3()
		normals[i] = rot.Rotate(v.Normal)
	}

	for i := 0; i+2 < len(s.Mesh.Indices); i += 3 {
		idx := [3]uint16{s.Mesh.Indices[i], s.Mesh.Indices[i+1], s.Mesh.Indices[i+2]}
		p0, p1, p2 := world[idx[0]], world[idx[1]], world[idx[2]]
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		if !cam.Facing(p0, face) {
			continue
		}
		var tri Triangle
		tri.Layer = s.Layer
		visible := true
		for k, vi := range idx {
			x, y, depth, ok := cam.Project(world[vi])
			if !ok {
				visible = false
				break
			}
			var r, g, b, a float32
			if s.Material.Unlit {
				r, g, b, a = Unlit(s.Material.Color)
			} else {
				r, g, b, a = lighting.Shade(s.Material.Color, world[vi], normals[vi])
			}
			tri.V[k] = ScreenVertex{X: float32(x), Y: float32(y), R: r, G: g, B: b, A: a}
			tri.Depth += depth / 3
		}
		if visible {
			dst = append(dst, tri)
		}
	}
	return dst
}

// SortTriangles orders triangles for the painter's algorithm: lower layers
// first, then farthest first within a layer.
func SortTriangles(tris []Triangle) {
	sort.SliceStable(tris, func(i, j int) bool {
		if tris[i].Layer != tris[j].Layer {
			return tris[i].Layer < tris[j].Layer
		}
		return tris[i].Depth > tris[j].Depth
	})
}

// Batch converts triangles into ebiten vertex and index slices, calling fn
// once per batch. srcX and srcY address a single white source pixel.
func Batch(tris []Triangle, srcX, srcY float32, fn func(vs []ebiten.Vertex, is []uint16)) {
	vs := make([]ebiten.Vertex, 0, min(len(tris)*3, maxBatchVertices))
	is := make([]uint16, 0, cap(vs))
	for _, tri := range tris {
		if len(vs)+3 > maxBatchVertices {
			fn(vs, is)
			vs, is = vs[:0], is[:0]
		}
		base := uint16(len(vs))
		for _, v := range tri.V {
			vs = append(vs, ebiten.Vertex{
				DstX: v.X, DstY: v.Y,
				SrcX: srcX, SrcY: srcY,
				ColorR: v.R, ColorG: v.G, ColorB: v.B, ColorA: v.A,
			})
		}
		is = append(is, base, base+1, base+2)
	}
	if len(vs) > 0 {
		fn(vs, is)
	}
}
