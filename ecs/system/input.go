package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/redroom/common"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
)

const (
	stickDeadzone = 0.2
	// touchRadius is the distance from the screen centre, in pixels, at
	// which a touch asks for full speed.
	touchRadius = 200.0
)

// InputSystem reads keyboard, the first gamepad and touches into every
// Input component.
type InputSystem struct {
	// ScreenWidth and ScreenHeight are the logical screen size touches are
	// measured against.
	ScreenWidth, ScreenHeight float64

	touches []ebiten.TouchID
}

func NewInputSystem() *InputSystem {
	return &InputSystem{ScreenWidth: common.BaseWidth, ScreenHeight: common.BaseHeight}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	state := i.poll()
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		*input = state
	})
}

func (i *InputSystem) poll() component.Input {
	moveX, moveY := KeyboardMove(
		ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
	)
	input := component.Input{
		Jump:         ebiten.IsKeyPressed(ebiten.KeySpace),
		JumpPressed:  inpututil.IsKeyJustPressed(ebiten.KeySpace),
		SpawnPressed: inpututil.IsKeyJustPressed(ebiten.KeyE),
		PausePressed: inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	}

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		if x, y, ok := StickMove(
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
			stickDeadzone,
		); ok {
			moveX, moveY = x, y
		}
		input.Jump = input.Jump || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
		input.JumpPressed = input.JumpPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		input.SpawnPressed = input.SpawnPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightTop)
		input.PausePressed = input.PausePressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight)
	}

	i.touches = ebiten.AppendTouchIDs(i.touches[:0])
	if len(i.touches) > 0 {
		tx, ty := ebiten.TouchPosition(i.touches[0])
		moveX, moveY = TouchMove(float64(tx), float64(ty), i.ScreenWidth/2, i.ScreenHeight/2, touchRadius)
	}
	if len(i.touches) > 1 {
		input.Jump = true
		for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
			if id != i.touches[0] {
				input.JumpPressed = true
			}
		}
	}

	input.MoveX, input.MoveY = common.ClampLength(moveX, moveY, 1)
	return input
}

// KeyboardMove turns direction keys into a move vector, forward positive.
// Opposite keys cancel.
func KeyboardMove(left, right, up, down bool) (float64, float64) {
	x, y := 0.0, 0.0
	if left {
		x--
	}
	if right {
		x++
	}
	if up {
		y++
	}
	if down {
		y--
	}
	return common.ClampLength(x, y, 1)
}

// StickMove converts stick axes (down positive) to a move vector. ok is false
// inside the dead zone.
func StickMove(x, y, deadzone float64) (float64, float64, bool) {
	if math.Hypot(x, y) <= deadzone {
		return 0, 0, false
	}
	mx, my := common.ClampLength(x, -y, 1)
	return mx, my, true
}

// TouchMove steers toward a touch relative to the screen centre, reaching
// full length at radius pixels.
func TouchMove(tx, ty, cx, cy, radius float64) (float64, float64) {
	if radius <= 0 {
		return 0, 0
	}
	return common.ClampLength((tx-cx)/radius, (cy-ty)/radius, 1)
}
