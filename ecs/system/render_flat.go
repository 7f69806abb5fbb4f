package system

import (
	"log"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/ecs/render"
)

// FlatRenderSystem draws sprites for the flat variant. World +Y is up on
// screen and the Camera2D translation sits at the screen centre.
type FlatRenderSystem struct {
	camEntity ecs.Entity
	warned    map[string]bool
}

func NewFlatRenderSystem() *FlatRenderSystem {
	return &FlatRenderSystem{warned: make(map[string]bool)}
}

func (r *FlatRenderSystem) Update(w *ecs.World) {}

func (r *FlatRenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	screen.Fill(clearColor)

	if !ecs.IsAlive(w, r.camEntity) || !ecs.Has(w, r.camEntity, component.Camera2DComponent.Kind()) {
		r.camEntity = 0
		if camEntity, ok := ecs.First(w, component.Camera2DComponent.Kind()); ok {
			r.camEntity = camEntity
		}
	}
	camX, camY, zoom := 0.0, 0.0, 1.0
	if camTransform, ok := ecs.Get(w, r.camEntity, component.TransformComponent.Kind()); ok {
		camX, camY = camTransform.Translation[0], camTransform.Translation[1]
	}
	if cam, ok := ecs.Get(w, r.camEntity, component.Camera2DComponent.Kind()); ok && cam.Zoom > 0 {
		zoom = cam.Zoom
	}

	bounds := screen.Bounds()
	halfW, halfH := float64(bounds.Dx())/2, float64(bounds.Dy())/2

	for _, e := range r.drawOrder(w) {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		s, _ := ecs.Get(w, e, component.SpriteComponent.Kind())
		if !r.resolve(s) {
			continue
		}

		sx, sy := t.Scale[0], t.Scale[1]
		if sx == 0 {
			sx = 1
		}
		if sy == 0 {
			sy = 1
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-s.OriginX, -s.OriginY)
		op.GeoM.Scale(sx*zoom, sy*zoom)
		x, y := FlatScreenPosition(t.Translation[0], t.Translation[1], camX, camY, zoom, halfW, halfH)
		op.GeoM.Translate(x, y)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(s.Image, op)
	}
}

// drawOrder sorts sprites by layer, then Z, then entity id.
func (r *FlatRenderSystem) drawOrder(w *ecs.World) []ecs.Entity {
	entities := ecs.Query(w, component.TransformComponent.Kind(), component.SpriteComponent.Kind())
	layerOf := func(e ecs.Entity) int {
		if layer, ok := ecs.Get(w, e, component.RenderLayerComponent.Kind()); ok {
			return layer.Index
		}
		return 0
	}
	zOf := func(e ecs.Entity) float64 {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		return t.Translation[2]
	}
	sort.SliceStable(entities, func(i, j int) bool {
		li, lj := layerOf(entities[i]), layerOf(entities[j])
		if li != lj {
			return li < lj
		}
		zi, zj := zOf(entities[i]), zOf(entities[j])
		if zi != zj {
			return zi < zj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})
	return entities
}

// resolve loads the sprite's texture on first draw.
func (r *FlatRenderSystem) resolve(s *component.Sprite) bool {
	if s.Image != nil {
		return true
	}
	if s.Texture == "" {
		return false
	}
	img, err := render.LoadTexture(s.Texture)
	if err != nil {
		if !r.warned[s.Texture] {
			r.warned[s.Texture] = true
			log.Printf("render: sprite texture %q: %v", s.Texture, err)
		}
		return false
	}
	s.Image = img
	if s.CenterOrigin {
		b := img.Bounds()
		s.OriginX, s.OriginY = float64(b.Dx())/2, float64(b.Dy())/2
	}
	return true
}

// FlatScreenPosition maps a world point to screen pixels with the camera
// at the screen centre and world +Y up.
func FlatScreenPosition(x, y, camX, camY, zoom, halfW, halfH float64) (float64, float64) {
	return halfW + (x-camX)*zoom, halfH - (y-camY)*zoom
}
