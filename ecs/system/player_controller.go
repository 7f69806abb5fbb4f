package system

import (
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
)

const defaultFlatMoveSpeed = 150.0

// PlayerControllerSystem moves flat-mode players linearly, without physics.
type PlayerControllerSystem struct{}

func NewPlayerControllerSystem() *PlayerControllerSystem {
	return &PlayerControllerSystem{}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Time().Delta

	ecs.ForEach3(w,
		component.PlayerComponent.Kind(),
		component.InputComponent.Kind(),
		component.TransformComponent.Kind(),
		func(e ecs.Entity, player *component.Player, input *component.Input, t *component.Transform) {
			if input.MoveX == 0 && input.MoveY == 0 {
				return
			}
			speed := player.MoveSpeed
			if speed <= 0 {
				speed = defaultFlatMoveSpeed
			}
			t.Translation[0] += input.MoveX * speed * dt
			t.Translation[1] += input.MoveY * speed * dt
		})
}
