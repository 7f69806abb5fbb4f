package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/redroom/common"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4

	minimapSize   = 180.0
	minimapMargin = 10.0
	// minimapExtent is the half width of the world area shown, in metres.
	minimapExtent = 12.0
)

var (
	minimapBackground = color.NRGBA{R: 0, G: 0, B: 0, A: 160}
	minimapFloor      = color.NRGBA{R: 90, G: 90, B: 90, A: 200}
	minimapPlayer     = color.NRGBA{R: 255, G: 220, B: 80, A: 255}
)

// DrawPhysicsDebug draws the cp space from above in the top-right corner:
// floor footprints, walls and body outlines, X to the right and Z down.
func DrawPhysicsDebug(ps *PhysicsSystem, w *ecs.World, screen *ebiten.Image) {
	if ps == nil || ps.Space() == nil || w == nil || screen == nil {
		return
	}
	bounds := screen.Bounds()
	drawer := &physicsDebugDrawer{
		screen: screen,
		left:   float64(bounds.Max.X) - minimapSize - minimapMargin,
		top:    minimapMargin,
		scale:  minimapSize / (2 * minimapExtent),
	}
	vector.FillRect(screen, float32(drawer.left), float32(drawer.top), minimapSize, minimapSize, minimapBackground, false)
	for _, bb := range ps.Floors() {
		drawer.drawPolygon([]cp.Vector{{X: bb.L, Y: bb.B}, {X: bb.R, Y: bb.B}, {X: bb.R, Y: bb.T}, {X: bb.L, Y: bb.T}}, minimapFloor)
	}
	cp.DrawSpace(ps.Space(), drawer)

	if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
		if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
			x, y := drawer.toScreen(cp.Vector{X: t.Translation[0], Y: t.Translation[2]})
			vector.FillCircle(screen, float32(x), float32(y), 3, minimapPlayer, true)
		}
	}
}

type physicsDebugDrawer struct {
	screen    *ebiten.Image
	left, top float64
	scale     float64
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, toNRGBA(outline))
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, toNRGBA(outline))
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, toNRGBA(fill))
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, toNRGBA(outline))
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], toNRGBA(outline))
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	x, y := d.toScreen(pos)
	vector.FillRect(d.screen, float32(x-size/2), float32(y-size/2), float32(size), float32(size), toNRGBA(fill), false)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.9, G: 0.9, B: 0.9, A: 0.9}
	}
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr color.NRGBA) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, clr, true)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, clr color.NRGBA) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, clr color.NRGBA) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

// toScreen maps cp coordinates (world X, world Z) into the minimap square,
// clamping to its border.
func (d *physicsDebugDrawer) toScreen(v cp.Vector) (float64, float64) {
	x := common.Clamp(v.X, -minimapExtent, minimapExtent)
	z := common.Clamp(v.Y, -minimapExtent, minimapExtent)
	return d.left + (x+minimapExtent)*d.scale, d.top + (z+minimapExtent)*d.scale
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
