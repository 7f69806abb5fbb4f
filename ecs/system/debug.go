package system

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/redroom/assets"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/prefabs"
	"golang.design/x/clipboard"
	"gopkg.in/yaml.v3"
)

var debugPanelColor = color.NRGBA{A: 150}

// DebugSystem draws the debug overlay and the physics minimap, and copies a
// YAML snapshot of every transform to the clipboard on F9. It also reports
// the latest landing and state change.
type DebugSystem struct {
	Physics *PhysicsSystem

	lastLanding    string
	lastTransition string

	clipboardTried bool
	clipboardOK    bool
}

func NewDebugSystem(physics *PhysicsSystem) *DebugSystem {
	return &DebugSystem{Physics: physics}
}

func (d *DebugSystem) Update(w *ecs.World) {
	if d == nil || w == nil {
		return
	}
	d.observe(w)
	if !inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		return
	}
	if !d.clipboardTried {
		d.clipboardTried = true
		if err := clipboard.Init(); err != nil {
			log.Printf("debug: clipboard unavailable, snapshots disabled: %v", err)
		} else {
			d.clipboardOK = true
		}
	}
	if !d.clipboardOK {
		return
	}
	data, err := TransformSnapshot(w)
	if err != nil {
		log.Printf("debug: snapshot: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	log.Printf("debug: copied %d bytes of transforms to the clipboard", len(data))
}

func (d *DebugSystem) observe(w *ecs.World) {
	w.Events().Each(ecs.EventBodyLanded, func(evt ecs.Event) {
		landed, ok := evt.Data.(ecs.LandedEvent)
		if !ok {
			return
		}
		label := fmt.Sprintf("entity %d", uint64(landed.Entity))
		if n, ok := ecs.Get(w, landed.Entity, component.NameComponent.Kind()); ok {
			label = n.Value
		}
		d.lastLanding = fmt.Sprintf("landed %s at %.2f m/s", label, landed.Speed)
	})
	w.Events().Each(ecs.EventStateChanged, func(evt ecs.Event) {
		if change, ok := evt.Data.(ecs.StateChange); ok {
			d.lastTransition = fmt.Sprintf("%s -> %s", change.From, change.To)
		}
	})
}

// Notes returns the latest landing and state change, when seen.
func (d *DebugSystem) Notes() []string {
	var notes []string
	if d.lastTransition != "" {
		notes = append(notes, "last change "+d.lastTransition)
	}
	if d.lastLanding != "" {
		notes = append(notes, d.lastLanding)
	}
	return notes
}

func (d *DebugSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if d == nil || w == nil || screen == nil {
		return
	}
	lines := append(DebugLines(w), d.Notes()...)
	lines = append([]string{fmt.Sprintf("FPS %.1f  TPS %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())}, lines...)

	face := assets.UIFace()
	lineHeight := face.Metrics().HAscent + face.Metrics().HDescent + 2
	vector.FillRect(screen, 6, 6, 300, float32(lineHeight*float64(len(lines))+8), debugPanelColor, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(10, 10)
	op.LayoutOptions.LineSpacing = lineHeight
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, strings.Join(lines, "\n"), face, op)

	DrawPhysicsDebug(d.Physics, w, screen)
}

// DebugLines describes the game state and the player's body.
func DebugLines(w *ecs.World) []string {
	lines := []string{fmt.Sprintf("state %s  frame %d", w.State().Current(), w.Time().Frame)}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return append(lines, "no player")
	}
	if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
		p := t.Translation
		lines = append(lines, fmt.Sprintf("pos  %6.2f %6.2f %6.2f", p[0], p[1], p[2]))
	}
	if v, ok := ecs.Get(w, player, component.LinearVelocityComponent.Kind()); ok {
		lines = append(lines, fmt.Sprintf("vel  %6.2f %6.2f %6.2f", v.Value[0], v.Value[1], v.Value[2]))
	}
	if gc, ok := ecs.Get(w, player, component.GroundContactComponent.Kind()); ok {
		lines = append(lines, fmt.Sprintf("grounded %v", gc.Grounded))
	}
	return lines
}

type transformSnapshot struct {
	Entity    uint64                         `yaml:"entity"`
	Name      string                         `yaml:"name,omitempty"`
	Transform prefabs.TransformComponentSpec `yaml:"transform"`
}

// TransformSnapshot writes every transform as YAML in the prefab transform
// format, so entries can be pasted back into scene files.
func TransformSnapshot(w *ecs.World) ([]byte, error) {
	var out []transformSnapshot
	ecs.ForEach(w, component.TransformComponent.Kind(), func(e ecs.Entity, t *component.Transform) {
		snap := transformSnapshot{
			Entity: uint64(e),
			Transform: prefabs.TransformComponentSpec{
				Translation: prefabs.Vec3Spec{t.Translation[0], t.Translation[1], t.Translation[2]},
				Rotation:    &prefabs.QuatSpec{X: t.Rotation.V[0], Y: t.Rotation.V[1], Z: t.Rotation.V[2], W: t.Rotation.W},
			},
		}
		if t.Scale != ([3]float64{}) && t.Scale != ([3]float64{1, 1, 1}) {
			snap.Transform.Scale = prefabs.Vec3Spec{t.Scale[0], t.Scale[1], t.Scale[2]}
		}
		if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok {
			snap.Name = n.Value
		}
		out = append(out, snap)
	})
	return yaml.Marshal(out)
}
