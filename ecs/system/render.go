package system

import (
	"image"
	"image/color"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/ecs/render"
)

var clearColor = color.NRGBA{R: 18, G: 18, B: 24, A: 255}

// RenderSystem draws every Mesh through the first Camera3D.
type RenderSystem struct {
	camEntity ecs.Entity
	white     *ebiten.Image
	tris      []render.Triangle
	// warned keeps mesh errors from being logged every frame.
	warned map[ecs.Entity]bool
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{warned: make(map[ecs.Entity]bool)}
}

func (r *RenderSystem) Update(w *ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	screen.Fill(clearColor)

	bounds := screen.Bounds()
	r.tris = r.CollectTriangles(w, float64(bounds.Dx()), float64(bounds.Dy()), r.tris[:0])
	if len(r.tris) == 0 {
		return
	}

	if r.white == nil {
		base := ebiten.NewImage(3, 3)
		base.Fill(color.White)
		r.white = base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	op := &ebiten.DrawTrianglesOptions{ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha}
	render.Batch(r.tris, 1.5, 1.5, func(vs []ebiten.Vertex, is []uint16) {
		screen.DrawTriangles(vs, is, r.white, op)
	})
}

// CollectTriangles projects, shades and sorts every visible mesh triangle
// for a width x height target, appending to dst.
func (r *RenderSystem) CollectTriangles(w *ecs.World, width, height float64, dst []render.Triangle) []render.Triangle {
	if !ecs.IsAlive(w, r.camEntity) || !ecs.Has(w, r.camEntity, component.Camera3DComponent.Kind()) {
		r.camEntity = 0
		if camEntity, ok := ecs.First(w, component.Camera3DComponent.Kind()); ok {
			r.camEntity = camEntity
		}
	}
	camComp, ok := ecs.Get(w, r.camEntity, component.Camera3DComponent.Kind())
	if !ok {
		return dst
	}
	camTransform, ok := ecs.Get(w, r.camEntity, component.TransformComponent.Kind())
	if !ok {
		return dst
	}
	cam := render.NewCamera(*camTransform, *camComp, width, height)
	lighting := sceneLighting(w)

	ecs.ForEach2(w, component.MeshComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, mesh *component.Mesh, t *component.Transform) {
		data, err := render.Tessellate(*mesh)
		if err != nil {
			if !r.warned[e] {
				r.warned[e] = true
				log.Printf("render: entity %v: %v", e, err)
			}
			return
		}
		s := render.Surface{Mesh: data, Transform: *t, Material: component.Material{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}}
		if mat, ok := ecs.Get(w, e, component.MaterialComponent.Kind()); ok {
			s.Material = *mat
		}
		if layer, ok := ecs.Get(w, e, component.RenderLayerComponent.Kind()); ok {
			s.Layer = layer.Index
		}
		dst = render.AppendSurface(dst, cam, lighting, s)
	})
	render.SortTriangles(dst)
	return dst
}

func sceneLighting(w *ecs.World) render.Lighting {
	var l render.Lighting
	if e, ok := ecs.First(w, component.AmbientLightComponent.Kind()); ok {
		if amb, ok := ecs.Get(w, e, component.AmbientLightComponent.Kind()); ok {
			l.Ambient = render.NewAmbient(amb.Color, amb.Brightness)
		}
	} else {
		l.Ambient = mgl64.Vec3{0.1, 0.1, 0.1}
	}
	ecs.ForEach2(w, component.PointLightComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pl *component.PointLight, t *component.Transform) {
		l.Lights = append(l.Lights, render.NewLight(t.Translation, pl.Color, pl.Intensity, pl.Range))
	})
	return l
}
